package handler

import (
	"github.com/gofiber/fiber/v2"

	"docflow/internal/http/middleware"
	"docflow/internal/service"
)

type createDocumentRequest struct {
	TitleEn      string `json:"titleEn" validate:"required,max=255"`
	FileKey      string `json:"fileKey" validate:"required,max=512"`
	FileName     string `json:"fileName" validate:"required,max=255"`
	FileType     string `json:"fileType" validate:"omitempty,max=100"`
	FileSize     int64  `json:"fileSize" validate:"gte=0"`
	CategoryID   int64  `json:"categoryId" validate:"required,gt=0"`
	DepartmentID int64  `json:"departmentId" validate:"required,gt=0"`
}

type translateRequest struct {
	TranslatedTitle string `json:"translatedTitle" validate:"required,max=255"`
}

// CreateDocument godoc
// @Summary Create document metadata
// @Description The caller must be a member of the target department. A document-created event is published.
// @Tags documents
// @Accept json
// @Produce json
// @Param body body createDocumentRequest true "Document"
// @Success 201 {object} model.DocumentView
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/documents [post]
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createDocumentRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		doc, err := svc.Create(c.UserContext(), service.CreateDocumentInput{
			TitleEn:      req.TitleEn,
			FileKey:      req.FileKey,
			FileName:     req.FileName,
			FileType:     req.FileType,
			FileSize:     req.FileSize,
			CategoryID:   req.CategoryID,
			DepartmentID: req.DepartmentID,
		}, middleware.Principal(c))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument godoc
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} model.DocumentView
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		doc, err := svc.Get(c.UserContext(), id, middleware.Principal(c))
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// ListMyDocuments godoc
// @Summary List documents of the caller's departments
// @Tags documents
// @Produce json
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.DocumentListResult
// @Router /api/v1/documents [get]
func ListMyDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := page(c)
		if err != nil {
			return err
		}
		res, err := svc.ListForUser(c.UserContext(), middleware.Principal(c), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

func ListDepartmentDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		limit, offset, err := page(c)
		if err != nil {
			return err
		}
		res, err := svc.ListByDepartment(c.UserContext(), id, middleware.Principal(c), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// ListAllDocuments pages over every document; routed behind the admin role.
func ListAllDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := page(c)
		if err != nil {
			return err
		}
		res, err := svc.ListAll(c.UserContext(), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// TranslateDocument godoc
// @Summary Store the translated title (internal)
// @Tags documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param body body translateRequest true "Translation"
// @Success 200 {object} model.Document
// @Failure 401 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/documents/{id}/translate [patch]
func TranslateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		var req translateRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		doc, err := svc.ApplyTranslation(c.UserContext(), id, req.TranslatedTitle)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document record; routed behind the admin role.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument godoc
// @Summary Get a download link for the stored file
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} model.DownloadLink
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		link, err := svc.DownloadLink(c.UserContext(), id, middleware.Principal(c))
		if err != nil {
			return err
		}
		return c.JSON(link)
	}
}
