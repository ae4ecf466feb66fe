package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/bidportal-archiver/internal/models"
)

// ProjectRepository reads the live project graph and removes projects.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository constructs the repository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, description, status, project_type, start_date, end_date, created_by,
       image_url, gantt_chart_url, created_at, updated_at`

// FindByID fetches a project without locking. Returns sql.ErrNoRows when missing.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &project, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id); err != nil {
		return nil, noRowsOnBadID(err)
	}
	return &project, nil
}

// FindByIDForUpdate fetches and row-locks a project. Only meaningful inside a transaction.
func (r *ProjectRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &project, `SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, noRowsOnBadID(err)
	}
	return &project, nil
}

// ListCategories returns categories of a project in display order.
func (r *ProjectRepository) ListCategories(ctx context.Context, projectID string) ([]models.Category, error) {
	const query = `SELECT id, project_id, name, display_order, created_at, updated_at
	FROM categories WHERE project_id = $1 ORDER BY display_order, created_at`
	var categories []models.Category
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &categories, query, projectID); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListTasksByCategories returns tasks for the given categories.
func (r *ProjectRepository) ListTasksByCategories(ctx context.Context, categoryIDs []string) ([]models.Task, error) {
	if len(categoryIDs) == 0 {
		return []models.Task{}, nil
	}
	const query = `SELECT id, category_id, name, description, detailed_description, estimated_price, max_price,
       duration_days, status, start_date, end_date, bid_deadline, created_at, updated_at
	FROM tasks WHERE category_id = ANY($1) ORDER BY created_at`
	var tasks []models.Task
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &tasks, query, pq.Array(categoryIDs)); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListBidsByTasks returns bids for the given tasks.
func (r *ProjectRepository) ListBidsByTasks(ctx context.Context, taskIDs []string) ([]models.Bid, error) {
	if len(taskIDs) == 0 {
		return []models.Bid{}, nil
	}
	const query = `SELECT id, task_id, subcontractor_id, price, duration_days, comment, status, created_at, updated_at
	FROM bids WHERE task_id = ANY($1) ORDER BY created_at`
	var bids []models.Bid
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &bids, query, pq.Array(taskIDs)); err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return bids, nil
}

// ListRatingsByTasks returns ratings for the given tasks.
func (r *ProjectRepository) ListRatingsByTasks(ctx context.Context, taskIDs []string) ([]models.TaskRating, error) {
	if len(taskIDs) == 0 {
		return []models.TaskRating{}, nil
	}
	const query = `SELECT id, task_id, subcontractor_id, rated_by, rating, comment, created_at
	FROM task_ratings WHERE task_id = ANY($1) ORDER BY created_at`
	var ratings []models.TaskRating
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &ratings, query, pq.Array(taskIDs)); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

// ListDocumentsByTasks returns document metadata for the given tasks.
func (r *ProjectRepository) ListDocumentsByTasks(ctx context.Context, taskIDs []string) ([]models.TaskDocument, error) {
	if len(taskIDs) == 0 {
		return []models.TaskDocument{}, nil
	}
	const query = `SELECT id, task_id, file_name, file_url, file_type, created_at
	FROM task_documents WHERE task_id = ANY($1) ORDER BY created_at`
	var documents []models.TaskDocument
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &documents, query, pq.Array(taskIDs)); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// Delete removes the project. Cascading foreign keys remove its descendants.
// Returns sql.ErrNoRows when nothing was deleted.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", noRowsOnBadID(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete project: %w", sql.ErrNoRows)
	}
	return nil
}
