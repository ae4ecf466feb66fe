//go:build integration

package service_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bidportal-archiver/internal/models"
	"github.com/noah-isme/bidportal-archiver/internal/repository"
	"github.com/noah-isme/bidportal-archiver/internal/service"
	"github.com/noah-isme/bidportal-archiver/internal/testutils"
	appErrors "github.com/noah-isme/bidportal-archiver/pkg/errors"
	"github.com/noah-isme/bidportal-archiver/pkg/storage"
)

type failingBids struct {
	*repository.ArchiveRepository
}

func (failingBids) InsertBids(context.Context, []models.ArchivedBid) error {
	return errors.New("disk full")
}

func seedProject(t *testing.T, db *sqlx.DB) string {
	t.Helper()
	var projectID, categoryID, taskID string
	require.NoError(t, db.Get(&projectID, `INSERT INTO projects (name, status, image_url, gantt_chart_url)
		VALUES ('Harbor Tower', 'completed', 'http://files/projects/cover.png', 'http://files/gantt/plan.pdf') RETURNING id`))
	require.NoError(t, db.Get(&categoryID, `INSERT INTO categories (project_id, name, display_order) VALUES ($1, 'Foundations', 1) RETURNING id`, projectID))
	require.NoError(t, db.Get(&taskID, `INSERT INTO tasks (category_id, name, status) VALUES ($1, 'Excavation', 'completed') RETURNING id`, categoryID))
	db.MustExec(`INSERT INTO bids (task_id, subcontractor_id, price, status) VALUES
		($1, gen_random_uuid(), 120.50, 'accepted'),
		($1, gen_random_uuid(), 140.00, 'rejected')`, taskID)
	db.MustExec(`INSERT INTO task_ratings (task_id, subcontractor_id, rated_by, rating) VALUES ($1, gen_random_uuid(), gen_random_uuid(), 8)`, taskID)
	db.MustExec(`INSERT INTO task_documents (task_id, file_name, file_url) VALUES ($1, 'survey.pdf', 'http://files/documents/survey.pdf')`, taskID)
	return projectID
}

func newIntegrationArchiver(t *testing.T, db *sqlx.DB, sink interface {
	InsertProject(ctx context.Context, project *models.ArchivedProject) error
	InsertCategories(ctx context.Context, categories []models.ArchivedCategory) error
	InsertTasks(ctx context.Context, tasks []models.ArchivedTask) error
	InsertBids(ctx context.Context, bids []models.ArchivedBid) error
	InsertRatings(ctx context.Context, ratings []models.ArchivedRating) error
	InsertDocuments(ctx context.Context, documents []models.ArchivedDocument) error
}) (*service.ArchiveService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "http://files")
	require.NoError(t, err)
	require.NoError(t, store.EnsureBuckets(context.Background(), "project-images", "gantt-charts", "task-documents"))
	for bucket, key := range map[string]string{
		"project-images": "projects/cover.png",
		"gantt-charts":   "gantt/plan.pdf",
		"task-documents": "documents/survey.pdf",
	} {
		require.NoError(t, store.Upload(context.Background(), bucket, key, bytes.NewReader([]byte("x")), 1, "application/octet-stream"))
	}

	svc := service.NewArchiveService(service.ArchiveDependencies{
		Tx:       repository.NewTxManager(db),
		Projects: repository.NewProjectRepository(db),
		Archives: sink,
		Audit:    repository.NewAuditRepository(db),
		Store:    store,
	}, service.ArchiveServiceConfig{}, nil)
	return svc, store
}

func count(t *testing.T, db *sqlx.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}

func TestArchiveProjectAgainstPostgres(t *testing.T) {
	db := testutils.SetupPostgres(t)
	projectID := seedProject(t, db)
	svc, store := newIntegrationArchiver(t, db, repository.NewArchiveRepository(db))

	outcome, err := svc.Archive(service.WithArchiveReason(context.Background(), "handover complete"), projectID, "ops-1")
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Stats.TotalTasks)
	assert.Equal(t, 2, outcome.Stats.TotalBids)
	assert.InDelta(t, 120.50, outcome.Stats.TotalValue, 0.001)
	assert.Equal(t, 3, outcome.Stats.FilesDeleted)
	assert.Empty(t, outcome.Warnings)

	assert.Zero(t, count(t, db, `SELECT COUNT(*) FROM projects WHERE id = $1`, projectID))
	assert.Zero(t, count(t, db, `SELECT COUNT(*) FROM bids`))
	assert.Zero(t, count(t, db, `SELECT COUNT(*) FROM task_documents`))

	archivedID := outcome.ArchivedProject.ID
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM archived_projects WHERE id = $1 AND original_project_id = $2`, archivedID, projectID))
	assert.Equal(t, 2, count(t, db, `SELECT COUNT(*) FROM archived_bids WHERE archived_project_id = $1`, archivedID))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM archived_task_ratings`))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM archived_task_documents`))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM audit_logs WHERE action = 'PROJECT_ARCHIVE' AND resource_id = $1`, projectID))

	detail, err := repository.NewArchiveRepository(db).GetDetail(context.Background(), archivedID)
	require.NoError(t, err)
	require.Len(t, detail.Categories, 1)
	require.Len(t, detail.Categories[0].Tasks, 1)
	assert.Len(t, detail.Categories[0].Tasks[0].Bids, 2)

	_, err = store.Open("task-documents", "documents/survey.pdf")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestArchiveProjectRollsBackAgainstPostgres(t *testing.T) {
	db := testutils.SetupPostgres(t)
	projectID := seedProject(t, db)
	svc, store := newIntegrationArchiver(t, db, failingBids{repository.NewArchiveRepository(db)})

	_, err := svc.Archive(context.Background(), projectID, "ops-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrArchiveWrite))

	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM projects WHERE id = $1`, projectID))
	assert.Equal(t, 2, count(t, db, `SELECT COUNT(*) FROM bids`))
	assert.Zero(t, count(t, db, `SELECT COUNT(*) FROM archived_projects WHERE original_project_id = $1`, projectID))
	assert.Zero(t, count(t, db, `SELECT COUNT(*) FROM audit_logs WHERE resource_id = $1`, projectID))

	f, err := store.Open("task-documents", "documents/survey.pdf")
	require.NoError(t, err)
	_ = f.Close()
}
