package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bidportal-archiver/internal/dto"
	"github.com/noah-isme/bidportal-archiver/internal/models"
	appErrors "github.com/noah-isme/bidportal-archiver/pkg/errors"
)

type archiveReader interface {
	GetByID(ctx context.Context, id string) (*models.ArchivedProject, error)
	GetByOriginalProjectID(ctx context.Context, projectID string) (*models.ArchivedProject, error)
	List(ctx context.Context, filter models.ArchivedProjectFilter) ([]models.ArchivedProject, int, error)
	GetDetail(ctx context.Context, id string) (*models.ArchivedProjectDetail, error)
}

// ArchiveQueryService reads the archive schema. Archived rows are write-once so cached
// details never go stale.
type ArchiveQueryService struct {
	repo     archiveReader
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewArchiveQueryService constructs the read side of the archive.
func NewArchiveQueryService(repo archiveReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *ArchiveQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveQueryService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// List returns a page of archived projects, newest first.
func (s *ArchiveQueryService) List(ctx context.Context, query dto.ArchivedProjectQuery) ([]models.ArchivedProject, *models.Pagination, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	items, total, err := s.repo.List(ctx, models.ArchivedProjectFilter{
		ArchivedBy: strings.TrimSpace(query.ArchivedBy),
		Search:     strings.TrimSpace(query.Search),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archived projects")
	}
	if items == nil {
		items = []models.ArchivedProject{}
	}
	return items, &models.Pagination{Page: page, Limit: limit, TotalCount: total}, nil
}

// GetDetail returns the archived project with its categories, tasks, bids, ratings and documents.
func (s *ArchiveQueryService) GetDetail(ctx context.Context, id string) (*models.ArchivedProjectDetail, error) {
	key := archiveDetailCacheKey(id)
	var cached models.ArchivedProjectDetail
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if isMissingRow(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("archived project %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archived project")
	}

	s.cache.Set(ctx, key, detail, s.cacheTTL)
	return detail, nil
}

// FindByOriginalProject resolves the archive of a live project id.
func (s *ArchiveQueryService) FindByOriginalProject(ctx context.Context, projectID string) (*models.ArchivedProject, error) {
	project, err := s.repo.GetByOriginalProjectID(ctx, projectID)
	if err != nil {
		if isMissingRow(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("project %s has not been archived", projectID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archived project")
	}
	return project, nil
}

func archiveDetailCacheKey(id string) string {
	return "archive:detail:" + id
}
