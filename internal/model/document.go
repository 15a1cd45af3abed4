package model

import "time"

// Document is the metadata record of a stored file. The file bytes live elsewhere;
// FileKey is the object key in the blob store.
type Document struct {
	ID           int64     `json:"id"`
	TitleEn      string    `json:"titleEn"`
	TitleEs      *string   `json:"titleEs"`
	FileKey      string    `json:"fileKey"`
	FileName     string    `json:"fileName"`
	FileType     string    `json:"fileType,omitempty"`
	FileSize     int64     `json:"fileSize"`
	CategoryID   int64     `json:"categoryId"`
	DepartmentID int64     `json:"departmentId"`
	OwnerUserID  string    `json:"ownerUserId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DocumentView is a document as returned to clients, with its category and
// department names resolved.
type DocumentView struct {
	Document
	CategoryName   string `json:"categoryName"`
	DepartmentName string `json:"departmentName"`
}

// DownloadLink points a client at the stored file of a document.
type DownloadLink struct {
	DocumentID  int64  `json:"documentId"`
	FileKey     string `json:"fileKey"`
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
}
