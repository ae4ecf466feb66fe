package dto

import "github.com/noah-isme/bidportal-archiver/internal/models"

// ArchiveProjectRequest is the optional body of the archive endpoint.
type ArchiveProjectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ArchiveProjectParams binds the project id path parameter.
type ArchiveProjectParams struct {
	ProjectID string `uri:"id" validate:"required,uuid"`
}

// ArchiveResult is the normalized outcome of an archival request.
// Error carries the failure message verbatim for display.
type ArchiveResult struct {
	Success           bool                   `json:"success"`
	Message           string                 `json:"message"`
	ArchivedProjectID string                 `json:"archivedProjectId,omitempty"`
	Stats             *models.ArchiveStats   `json:"stats,omitempty"`
	Error             string                 `json:"error,omitempty"`
	ErrorCode         string                 `json:"errorCode,omitempty"`
	Warnings          []string               `json:"warnings,omitempty"`
	Assets            []models.AssetDeletion `json:"assets,omitempty"`
}

// ArchivedProjectQuery captures list filters from the query string.
type ArchivedProjectQuery struct {
	Page       int    `form:"page" validate:"omitempty,min=1"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Search     string `form:"search" validate:"max=100"`
	ArchivedBy string `form:"archivedBy" validate:"omitempty,uuid"`
}

// ExportQuery selects the export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
