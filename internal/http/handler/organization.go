package handler

import (
	"github.com/gofiber/fiber/v2"

	"docflow/internal/http/middleware"
	"docflow/internal/model"
	"docflow/internal/service"
)

type nameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type assignRequest struct {
	UserID string `json:"userId" validate:"required,max=64"`
}

type departmentUsersResponse struct {
	DepartmentID int64    `json:"departmentId"`
	Users        []string `json:"users"`
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags departments
// @Accept json
// @Produce json
// @Param body body nameRequest true "Department"
// @Success 201 {object} model.Department
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/v1/departments [post]
func CreateDepartment(svc service.DepartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req nameRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		d, err := svc.Create(c.UserContext(), req.Name)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(d)
	}
}

// ListDepartments returns every department.
func ListDepartments(svc service.DepartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		if list == nil {
			list = []model.Department{}
		}
		return c.JSON(list)
	}
}

func GetDepartment(svc service.DepartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		d, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

func UpdateDepartment(svc service.DepartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		var req nameRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		d, err := svc.Update(c.UserContext(), id, req.Name)
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

func DeleteDepartment(svc service.DepartmentService) fiber.Handler {
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

// MyDepartments returns the departments the caller belongs to.
func MyDepartments(svc service.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.ListDepartments(c.UserContext(), middleware.Principal(c).ID)
		if err != nil {
			return err
		}
		if list == nil {
			list = []model.Department{}
		}
		return c.JSON(list)
	}
}

// AssignUser godoc
// @Summary Assign a user to a department
// @Description Idempotent: assigning an existing member succeeds.
// @Tags departments
// @Accept json
// @Param id path int true "Department ID"
// @Param body body assignRequest true "Member"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /api/v1/departments/{id}/users [post]
func AssignUser(svc service.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		var req assignRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := svc.Assign(c.UserContext(), req.UserID, id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UnassignUser removes a membership; a missing pair is a 404.
func UnassignUser(svc service.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Unassign(c.UserContext(), c.Params("userId"), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func DepartmentUsers(svc service.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		users, err := svc.ListUsers(c.UserContext(), id)
		if err != nil {
			return err
		}
		if users == nil {
			users = []string{}
		}
		return c.JSON(departmentUsersResponse{DepartmentID: id, Users: users})
	}
}

func CreateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req nameRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		cat, err := svc.Create(c.UserContext(), req.Name)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

func ListCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		if list == nil {
			list = []model.Category{}
		}
		return c.JSON(list)
	}
}

func GetCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		cat, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(cat)
	}
}

func UpdateCategory(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		var req nameRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		cat, err := svc.Update(c.UserContext(), id, req.Name)
		if err != nil {
			return err
		}
		return c.JSON(cat)
	}
}

func DeleteCategory(svc service.CategoryService) fiber.Handler {
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
