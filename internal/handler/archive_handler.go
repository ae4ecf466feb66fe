package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/bidportal-archiver/internal/dto"
	"github.com/noah-isme/bidportal-archiver/internal/models"
	"github.com/noah-isme/bidportal-archiver/internal/service"
	appErrors "github.com/noah-isme/bidportal-archiver/pkg/errors"
	"github.com/noah-isme/bidportal-archiver/pkg/response"
)

type projectArchiver interface {
	Archive(ctx context.Context, projectID, actorID string) (*service.ArchiveOutcome, error)
}

type archiveQueries interface {
	List(ctx context.Context, query dto.ArchivedProjectQuery) ([]models.ArchivedProject, *models.Pagination, error)
	GetDetail(ctx context.Context, id string) (*models.ArchivedProjectDetail, error)
}

type archiveExporter interface {
	Export(ctx context.Context, archivedProjectID, format string) (*service.ExportFile, error)
}

// ArchiveHandler manages project archival and archive read endpoints.
type ArchiveHandler struct {
	archiver  projectArchiver
	queries   archiveQueries
	exporter  archiveExporter
	validator *validator.Validate
}

// NewArchiveHandler constructs the handler.
func NewArchiveHandler(archiver projectArchiver, queries archiveQueries, exporter archiveExporter, validate *validator.Validate) *ArchiveHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ArchiveHandler{archiver: archiver, queries: queries, exporter: exporter, validator: validate}
}

// ArchiveProject godoc
// @Summary Archive a project
// @Description Snapshots the project graph into the archive schema, removes its files and deletes the live project.
// @Tags Archives
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body dto.ArchiveProjectRequest false "Archive reason"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /projects/{id}/archive [post]
func (h *ArchiveHandler) ArchiveProject(c *gin.Context) {
	var params dto.ArchiveProjectParams
	if err := c.ShouldBindUri(&params); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid project id"))
		return
	}
	if err := h.validator.Struct(params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "project id must be a UUID"))
		return
	}

	var req dto.ArchiveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid archive payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid archive payload"))
		return
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ctx := service.WithArchiveReason(c.Request.Context(), req.Reason)
	outcome, err := h.archiver.Archive(ctx, params.ProjectID, claims.UserID)
	result := service.BuildArchiveResult(outcome, err)
	if err != nil {
		response.ErrorWithData(c, err, result)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List archived projects
// @Tags Archives
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param search query string false "Name contains"
// @Param archivedBy query string false "Archiving user"
// @Success 200 {object} response.Envelope
// @Router /archives/projects [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	var query dto.ArchivedProjectQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	items, pagination, err := h.queries.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get archived project detail
// @Tags Archives
// @Produce json
// @Param id path string true "Archived project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /archives/projects/{id} [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	detail, err := h.queries.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Export godoc
// @Summary Export archived project report
// @Tags Archives
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Archived project ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /archives/projects/{id}/export [get]
func (h *ArchiveHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export format"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf"))
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.FileName, file.ContentType, file.Data)
}
