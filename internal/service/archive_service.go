package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/bidportal-archiver/internal/dto"
	"github.com/noah-isme/bidportal-archiver/internal/models"
	"github.com/noah-isme/bidportal-archiver/pkg/database"
	appErrors "github.com/noah-isme/bidportal-archiver/pkg/errors"
	"github.com/noah-isme/bidportal-archiver/pkg/jobs"
)

type archiveReasonKey struct{}

// WithArchiveReason attaches the caller's free-text reason; it is stored in the audit trail.
func WithArchiveReason(ctx context.Context, reason string) context.Context {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ctx
	}
	return context.WithValue(ctx, archiveReasonKey{}, reason)
}

func archiveReason(ctx context.Context) string {
	reason, _ := ctx.Value(archiveReasonKey{}).(string)
	return reason
}

// isMissingRow reports a lookup that found nothing, including ids postgres
// rejects as malformed uuids.
func isMissingRow(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || database.IsInvalidTextRepresentation(err)
}

type archiveProjectSource interface {
	FindByIDForUpdate(ctx context.Context, id string) (*models.Project, error)
	ListCategories(ctx context.Context, projectID string) ([]models.Category, error)
	ListTasksByCategories(ctx context.Context, categoryIDs []string) ([]models.Task, error)
	ListBidsByTasks(ctx context.Context, taskIDs []string) ([]models.Bid, error)
	ListRatingsByTasks(ctx context.Context, taskIDs []string) ([]models.TaskRating, error)
	ListDocumentsByTasks(ctx context.Context, taskIDs []string) ([]models.TaskDocument, error)
	Delete(ctx context.Context, id string) error
}

type archiveSink interface {
	InsertProject(ctx context.Context, project *models.ArchivedProject) error
	InsertCategories(ctx context.Context, categories []models.ArchivedCategory) error
	InsertTasks(ctx context.Context, tasks []models.ArchivedTask) error
	InsertBids(ctx context.Context, bids []models.ArchivedBid) error
	InsertRatings(ctx context.Context, ratings []models.ArchivedRating) error
	InsertDocuments(ctx context.Context, documents []models.ArchivedDocument) error
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type archiveLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

type assetRemover interface {
	Remove(ctx context.Context, bucket, key string) error
}

type cleanupEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// ArchiveDependencies wires the collaborators of ArchiveService.
// Locker, CleanupQueue and Metrics are optional.
type ArchiveDependencies struct {
	Tx           transactor
	Projects     archiveProjectSource
	Archives     archiveSink
	Audit        auditWriter
	Store        assetRemover
	Locker       archiveLocker
	CleanupQueue cleanupEnqueuer
	Metrics      *MetricsService
}

// ArchiveServiceConfig tunes the pipeline.
type ArchiveServiceConfig struct {
	Timeout time.Duration
	LockTTL time.Duration
	Buckets AssetBuckets
}

// ArchiveOutcome describes a committed archival.
type ArchiveOutcome struct {
	ArchivedProject models.ArchivedProject
	Stats           models.ArchiveStats
	Assets          []models.AssetDeletion
	Warnings        []string
}

// ArchiveService moves a live project and its dependency graph into the archive schema.
type ArchiveService struct {
	deps   ArchiveDependencies
	cfg    ArchiveServiceConfig
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewArchiveService constructs the service with defaults.
func NewArchiveService(deps ArchiveDependencies, cfg ArchiveServiceConfig, logger *zap.Logger) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	cfg.Buckets = cfg.Buckets.withDefaults()
	return &ArchiveService{
		deps:     deps,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		inFlight: make(map[string]struct{}),
	}
}

// ArchiveProject runs Archive and folds every outcome, panics included, into an ArchiveResult.
func (s *ArchiveService) ArchiveProject(ctx context.Context, projectID, actorID string) (result dto.ArchiveResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("archive pipeline panicked", zap.String("project_id", projectID), zap.Any("panic", r), zap.Stack("stack"))
			result = BuildArchiveResult(nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("archive aborted: %v", r)))
		}
	}()
	outcome, err := s.Archive(ctx, projectID, actorID)
	return BuildArchiveResult(outcome, err)
}

// BuildArchiveResult converts an Archive return pair into the result shape shown to users.
func BuildArchiveResult(outcome *ArchiveOutcome, err error) dto.ArchiveResult {
	if err != nil {
		return dto.ArchiveResult{
			Success:   false,
			Message:   "Project archival failed.",
			Error:     err.Error(),
			ErrorCode: appErrors.FromError(err).Code,
		}
	}
	if outcome == nil {
		return dto.ArchiveResult{Success: false, Message: "Project archival failed.", Error: "no archive outcome", ErrorCode: appErrors.ErrInternal.Code}
	}
	stats := outcome.Stats
	return dto.ArchiveResult{
		Success:           true,
		Message:           fmt.Sprintf("Project archived successfully. %d file(s) deleted.", stats.FilesDeleted),
		ArchivedProjectID: outcome.ArchivedProject.ID,
		Stats:             &stats,
		Warnings:          outcome.Warnings,
		Assets:            outcome.Assets,
	}
}

// Archive snapshots the project into the archive schema and deletes the live project in one
// transaction, then removes the project's blobs. Blob failures only produce warnings.
func (s *ArchiveService) Archive(ctx context.Context, projectID, actorID string) (*ArchiveOutcome, error) {
	projectID = strings.TrimSpace(projectID)
	actorID = strings.TrimSpace(actorID)
	if projectID == "" || actorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "project id and actor id are required")
	}

	start := time.Now()
	logger := s.logger.With(zap.String("project_id", projectID), zap.String("actor_id", actorID))

	release, err := s.acquire(ctx, projectID, logger)
	if err != nil {
		s.deps.Metrics.ObserveArchive(archiveResultLabel(err), time.Since(start))
		return nil, err
	}
	defer release()

	runCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var plan *archivePlan
	err = s.deps.Tx.WithinTx(runCtx, func(txCtx context.Context) error {
		graph, err := s.loadGraph(txCtx, projectID)
		if err != nil {
			return err
		}
		plan, err = buildArchivePlan(graph, actorID, s.now().UTC(), s.newID, s.cfg.Buckets)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrArchiveWrite.Code, appErrors.ErrArchiveWrite.Status, "build archive plan")
		}
		if err := s.writePlan(txCtx, plan); err != nil {
			return err
		}
		if err := s.recordAudit(txCtx, graph.Project, plan); err != nil {
			return err
		}
		if err := s.deps.Projects.Delete(txCtx, projectID); err != nil {
			if isMissingRow(err) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("project %s not found", projectID))
			}
			return appErrors.Wrap(err, appErrors.ErrArchiveWrite.Code, appErrors.ErrArchiveWrite.Status, "delete live project")
		}
		return nil
	})
	if err != nil {
		err = normalizeArchiveError(err)
		logger.Warn("project archival failed", zap.Error(err))
		s.deps.Metrics.ObserveArchive(archiveResultLabel(err), time.Since(start))
		return nil, err
	}

	// blobs only go once the transaction has committed
	assets, warnings := s.removeAssets(context.WithoutCancel(ctx), plan.assets, logger)
	stats := plan.stats
	for _, a := range assets {
		if a.Status == models.AssetDeleted {
			stats.FilesDeleted++
		}
	}

	logger.Info("project archived",
		zap.String("archived_project_id", plan.project.ID),
		zap.Int("tasks", stats.TotalTasks),
		zap.Int("bids", stats.TotalBids),
		zap.Float64("value", stats.TotalValue),
		zap.Int("files_deleted", stats.FilesDeleted),
		zap.Int("files_failed", len(assets)-stats.FilesDeleted),
		zap.Duration("duration", time.Since(start)),
	)
	s.deps.Metrics.ObserveArchive(ArchiveResultSuccess, time.Since(start))

	return &ArchiveOutcome{
		ArchivedProject: plan.project,
		Stats:           stats,
		Assets:          assets,
		Warnings:        warnings,
	}, nil
}

func (s *ArchiveService) acquire(ctx context.Context, projectID string, logger *zap.Logger) (func(), error) {
	s.mu.Lock()
	if _, busy := s.inFlight[projectID]; busy {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrArchiveInProgress, fmt.Sprintf("project %s is already being archived", projectID))
	}
	s.inFlight[projectID] = struct{}{}
	s.mu.Unlock()

	releaseLocal := func() {
		s.mu.Lock()
		delete(s.inFlight, projectID)
		s.mu.Unlock()
	}
	if s.deps.Locker == nil {
		return releaseLocal, nil
	}

	key := archiveLockKey(projectID)
	token, ok, err := s.deps.Locker.AcquireLock(ctx, key, s.cfg.LockTTL)
	if err != nil {
		// fall back to the in-process guard and the row lock
		logger.Warn("distributed archive lock unavailable", zap.Error(err))
		return releaseLocal, nil
	}
	if !ok {
		releaseLocal()
		return nil, appErrors.Clone(appErrors.ErrArchiveInProgress, fmt.Sprintf("project %s is already being archived", projectID))
	}

	return func() {
		if err := s.deps.Locker.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
			logger.Warn("release archive lock", zap.Error(err))
		}
		releaseLocal()
	}, nil
}

func archiveLockKey(projectID string) string {
	return "archive:lock:" + projectID
}

func (s *ArchiveService) loadGraph(ctx context.Context, projectID string) (*models.ProjectGraph, error) {
	project, err := s.deps.Projects.FindByIDForUpdate(ctx, projectID)
	if err != nil {
		if isMissingRow(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("project %s not found", projectID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load project")
	}
	graph := &models.ProjectGraph{Project: *project}

	if graph.Categories, err = s.deps.Projects.ListCategories(ctx, projectID); err != nil {
		return nil, loadError(err, "categories")
	}
	categoryIDs := make([]string, len(graph.Categories))
	for i, c := range graph.Categories {
		categoryIDs[i] = c.ID
	}

	if graph.Tasks, err = s.deps.Projects.ListTasksByCategories(ctx, categoryIDs); err != nil {
		return nil, loadError(err, "tasks")
	}
	taskIDs := make([]string, len(graph.Tasks))
	for i, t := range graph.Tasks {
		taskIDs[i] = t.ID
	}

	if graph.Bids, err = s.deps.Projects.ListBidsByTasks(ctx, taskIDs); err != nil {
		return nil, loadError(err, "bids")
	}
	if graph.Ratings, err = s.deps.Projects.ListRatingsByTasks(ctx, taskIDs); err != nil {
		return nil, loadError(err, "ratings")
	}
	if graph.Documents, err = s.deps.Projects.ListDocumentsByTasks(ctx, taskIDs); err != nil {
		return nil, loadError(err, "documents")
	}
	return graph, nil
}

func loadError(err error, what string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load project "+what)
}

func (s *ArchiveService) writePlan(ctx context.Context, plan *archivePlan) error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"project", func() error { return s.deps.Archives.InsertProject(ctx, &plan.project) }},
		{"categories", func() error { return s.deps.Archives.InsertCategories(ctx, plan.categories) }},
		{"tasks", func() error { return s.deps.Archives.InsertTasks(ctx, plan.tasks) }},
		{"bids", func() error { return s.deps.Archives.InsertBids(ctx, plan.bids) }},
		{"ratings", func() error { return s.deps.Archives.InsertRatings(ctx, plan.ratings) }},
		{"documents", func() error { return s.deps.Archives.InsertDocuments(ctx, plan.documents) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return appErrors.Wrap(err, appErrors.ErrArchiveWrite.Code, appErrors.ErrArchiveWrite.Status, "archive "+step.name+" failed")
		}
	}
	return nil
}

func (s *ArchiveService) recordAudit(ctx context.Context, project models.Project, plan *archivePlan) error {
	if s.deps.Audit == nil {
		return nil
	}
	oldValues, _ := json.Marshal(map[string]interface{}{
		"name":   project.Name,
		"status": project.Status,
	})
	values := map[string]interface{}{
		"archivedProjectId": plan.project.ID,
		"totalTasks":        plan.stats.TotalTasks,
		"totalBids":         plan.stats.TotalBids,
		"totalValue":        plan.stats.TotalValue,
		"assets":            len(plan.assets),
	}
	if reason := archiveReason(ctx); reason != "" {
		values["reason"] = reason
	}
	newValues, _ := json.Marshal(values)
	actor := plan.project.ArchivedBy
	resourceID := project.ID
	err := s.deps.Audit.Create(ctx, &models.AuditLog{
		UserID:     &actor,
		Action:     models.AuditActionProjectArchive,
		Resource:   models.AuditResourceProject,
		ResourceID: &resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
		CreatedAt:  plan.project.ArchivedAt,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrArchiveWrite.Code, appErrors.ErrArchiveWrite.Status, "record archive audit")
	}
	return nil
}

func (s *ArchiveService) removeAssets(ctx context.Context, keys []models.AssetKey, logger *zap.Logger) ([]models.AssetDeletion, []string) {
	deletions := make([]models.AssetDeletion, 0, len(keys))
	var warnings []string
	for _, key := range keys {
		deletion := models.AssetDeletion{AssetKey: key, Status: models.AssetDeleted}
		if err := s.deps.Store.Remove(ctx, key.Bucket, key.Key); err != nil {
			deletion.Status = models.AssetFailed
			deletion.Reason = err.Error()
			warnings = append(warnings, fmt.Sprintf("failed to delete %s/%s: %v", key.Bucket, key.Key, err))
			logger.Warn("asset deletion failed", zap.String("bucket", key.Bucket), zap.String("key", key.Key), zap.Error(err))
			s.scheduleRetry(key, logger)
		}
		s.deps.Metrics.RecordAssetDeletion(string(deletion.Status))
		deletions = append(deletions, deletion)
	}
	return deletions, warnings
}

func (s *ArchiveService) scheduleRetry(key models.AssetKey, logger *zap.Logger) {
	if s.deps.CleanupQueue == nil {
		return
	}
	err := s.deps.CleanupQueue.TryEnqueue(jobs.Job{
		ID:      key.Bucket + "/" + key.Key,
		Type:    AssetCleanupJobType,
		Payload: key,
	})
	if err != nil {
		logger.Warn("asset cleanup not scheduled", zap.String("key", key.Key), zap.Error(err))
	}
}

func normalizeArchiveError(err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrArchiveWrite.Code, appErrors.ErrArchiveWrite.Status, "archive timed out")
	}
	return appErrors.Wrap(err, appErrors.ErrArchiveWrite.Code, appErrors.ErrArchiveWrite.Status, "archive transaction failed")
}

func archiveResultLabel(err error) string {
	switch {
	case err == nil:
		return ArchiveResultSuccess
	case appErrors.Is(err, appErrors.ErrNotFound):
		return ArchiveResultNotFound
	case appErrors.Is(err, appErrors.ErrArchiveInProgress):
		return ArchiveResultConflict
	default:
		return ArchiveResultFailure
	}
}

// ComputeArchiveStats rolls up task and bid counts and the value of accepted bids.
// Bids without a usable price count as zero. The value is rounded to cents to match
// the NUMERIC(16,2) column it is stored in.
func ComputeArchiveStats(tasks []models.Task, bids []models.Bid) models.ArchiveStats {
	stats := models.ArchiveStats{TotalTasks: len(tasks), TotalBids: len(bids)}
	for _, bid := range bids {
		if bid.Status != models.BidStatusAccepted || bid.Price == nil {
			continue
		}
		price := *bid.Price
		if math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		stats.TotalValue += price
	}
	stats.TotalValue = math.Round(stats.TotalValue*100) / 100
	return stats
}

type archivePlan struct {
	project    models.ArchivedProject
	categories []models.ArchivedCategory
	tasks      []models.ArchivedTask
	bids       []models.ArchivedBid
	ratings    []models.ArchivedRating
	documents  []models.ArchivedDocument
	assets     []models.AssetKey
	stats      models.ArchiveStats
}

// buildArchivePlan assigns archive ids up front and remaps every child to its archived parent.
func buildArchivePlan(graph *models.ProjectGraph, actorID string, now time.Time, newID func() string, buckets AssetBuckets) (*archivePlan, error) {
	p := graph.Project
	stats := ComputeArchiveStats(graph.Tasks, graph.Bids)
	plan := &archivePlan{
		stats: stats,
		project: models.ArchivedProject{
			ID:                newID(),
			OriginalProjectID: p.ID,
			Name:              p.Name,
			Description:       p.Description,
			Status:            p.Status,
			ProjectType:       p.ProjectType,
			StartDate:         p.StartDate,
			EndDate:           p.EndDate,
			CreatedBy:         p.CreatedBy,
			ImageURL:          p.ImageURL,
			GanttChartURL:     p.GanttChartURL,
			TotalTasks:        stats.TotalTasks,
			TotalBids:         stats.TotalBids,
			TotalValue:        stats.TotalValue,
			ArchivedBy:        actorID,
			ArchivedAt:        now,
			OriginalCreatedAt: p.CreatedAt,
			OriginalUpdatedAt: p.UpdatedAt,
		},
	}

	categoryMap := make(map[string]string, len(graph.Categories))
	plan.categories = make([]models.ArchivedCategory, 0, len(graph.Categories))
	for _, c := range graph.Categories {
		id := newID()
		categoryMap[c.ID] = id
		plan.categories = append(plan.categories, models.ArchivedCategory{
			ID:                 id,
			ArchivedProjectID:  plan.project.ID,
			OriginalCategoryID: c.ID,
			Name:               c.Name,
			DisplayOrder:       c.DisplayOrder,
			ArchivedAt:         now,
			OriginalCreatedAt:  c.CreatedAt,
			OriginalUpdatedAt:  c.UpdatedAt,
		})
	}

	taskMap := make(map[string]string, len(graph.Tasks))
	plan.tasks = make([]models.ArchivedTask, 0, len(graph.Tasks))
	for _, t := range graph.Tasks {
		categoryID, ok := categoryMap[t.CategoryID]
		if !ok {
			return nil, fmt.Errorf("task %s references category %s outside the project", t.ID, t.CategoryID)
		}
		id := newID()
		taskMap[t.ID] = id
		plan.tasks = append(plan.tasks, models.ArchivedTask{
			ID:                  id,
			ArchivedCategoryID:  categoryID,
			OriginalTaskID:      t.ID,
			Name:                t.Name,
			Description:         t.Description,
			DetailedDescription: t.DetailedDescription,
			EstimatedPrice:      t.EstimatedPrice,
			MaxPrice:            t.MaxPrice,
			DurationDays:        t.DurationDays,
			Status:              t.Status,
			StartDate:           t.StartDate,
			EndDate:             t.EndDate,
			BidDeadline:         t.BidDeadline,
			ArchivedAt:          now,
			OriginalCreatedAt:   t.CreatedAt,
			OriginalUpdatedAt:   t.UpdatedAt,
		})
	}

	plan.bids = make([]models.ArchivedBid, 0, len(graph.Bids))
	for _, b := range graph.Bids {
		taskID, ok := taskMap[b.TaskID]
		if !ok {
			return nil, fmt.Errorf("bid %s references task %s outside the project", b.ID, b.TaskID)
		}
		plan.bids = append(plan.bids, models.ArchivedBid{
			ID:                newID(),
			ArchivedTaskID:    taskID,
			ArchivedProjectID: plan.project.ID,
			OriginalBidID:     b.ID,
			SubcontractorID:   b.SubcontractorID,
			Price:             b.Price,
			DurationDays:      b.DurationDays,
			Comment:           b.Comment,
			Status:            b.Status,
			ArchivedAt:        now,
			OriginalCreatedAt: b.CreatedAt,
			OriginalUpdatedAt: b.UpdatedAt,
		})
	}

	plan.ratings = make([]models.ArchivedRating, 0, len(graph.Ratings))
	for _, r := range graph.Ratings {
		taskID, ok := taskMap[r.TaskID]
		if !ok {
			return nil, fmt.Errorf("rating %s references task %s outside the project", r.ID, r.TaskID)
		}
		plan.ratings = append(plan.ratings, models.ArchivedRating{
			ID:                newID(),
			ArchivedTaskID:    taskID,
			OriginalRatingID:  r.ID,
			SubcontractorID:   r.SubcontractorID,
			RatedBy:           r.RatedBy,
			Rating:            r.Rating,
			Comment:           r.Comment,
			ArchivedAt:        now,
			OriginalCreatedAt: r.CreatedAt,
		})
	}

	plan.documents = make([]models.ArchivedDocument, 0, len(graph.Documents))
	for _, d := range graph.Documents {
		taskID, ok := taskMap[d.TaskID]
		if !ok {
			return nil, fmt.Errorf("document %s references task %s outside the project", d.ID, d.TaskID)
		}
		plan.documents = append(plan.documents, models.ArchivedDocument{
			ID:                 newID(),
			ArchivedTaskID:     taskID,
			OriginalDocumentID: d.ID,
			FileName:           d.FileName,
			FileURL:            d.FileURL,
			FileType:           d.FileType,
			ArchivedAt:         now,
			OriginalCreatedAt:  d.CreatedAt,
		})
	}

	plan.assets = CollectAssetKeys(p, graph.Documents, buckets)
	return plan, nil
}
