package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/bidportal-archiver/internal/models"
)

// ArchiveRepository writes and reads the archive schema.
// Writes are insert-only; archived rows are never updated.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository constructs the repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

const archivedProjectColumns = `id, original_project_id, name, description, status, project_type, start_date, end_date,
       created_by, image_url, gantt_chart_url, total_tasks, total_bids, total_value, archived_by, archived_at,
       original_created_at, original_updated_at`

// InsertProject stores the archived project snapshot.
func (r *ArchiveRepository) InsertProject(ctx context.Context, project *models.ArchivedProject) error {
	const query = `INSERT INTO archived_projects (` + archivedProjectColumns + `)
	VALUES (:id, :original_project_id, :name, :description, :status, :project_type, :start_date, :end_date,
	        :created_by, :image_url, :gantt_chart_url, :total_tasks, :total_bids, :total_value, :archived_by, :archived_at,
	        :original_created_at, :original_updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, project); err != nil {
		return fmt.Errorf("insert archived project: %w", err)
	}
	return nil
}

// InsertCategories bulk inserts archived categories.
func (r *ArchiveRepository) InsertCategories(ctx context.Context, categories []models.ArchivedCategory) error {
	if len(categories) == 0 {
		return nil
	}
	const query = `INSERT INTO archived_categories
	(id, archived_project_id, original_category_id, name, display_order, archived_at, original_created_at, original_updated_at)
	VALUES (:id, :archived_project_id, :original_category_id, :name, :display_order, :archived_at, :original_created_at, :original_updated_at)`
	if err := namedInsertBatch(ctx, executor(ctx, r.db), query, categories); err != nil {
		return fmt.Errorf("insert archived categories: %w", err)
	}
	return nil
}

// InsertTasks bulk inserts archived tasks.
func (r *ArchiveRepository) InsertTasks(ctx context.Context, tasks []models.ArchivedTask) error {
	if len(tasks) == 0 {
		return nil
	}
	const query = `INSERT INTO archived_tasks
	(id, archived_category_id, original_task_id, name, description, detailed_description, estimated_price, max_price,
	 duration_days, status, start_date, end_date, bid_deadline, archived_at, original_created_at, original_updated_at)
	VALUES (:id, :archived_category_id, :original_task_id, :name, :description, :detailed_description, :estimated_price, :max_price,
	 :duration_days, :status, :start_date, :end_date, :bid_deadline, :archived_at, :original_created_at, :original_updated_at)`
	if err := namedInsertBatch(ctx, executor(ctx, r.db), query, tasks); err != nil {
		return fmt.Errorf("insert archived tasks: %w", err)
	}
	return nil
}

// InsertBids bulk inserts archived bids.
func (r *ArchiveRepository) InsertBids(ctx context.Context, bids []models.ArchivedBid) error {
	if len(bids) == 0 {
		return nil
	}
	const query = `INSERT INTO archived_bids
	(id, archived_task_id, archived_project_id, original_bid_id, subcontractor_id, price, duration_days, comment, status,
	 archived_at, original_created_at, original_updated_at)
	VALUES (:id, :archived_task_id, :archived_project_id, :original_bid_id, :subcontractor_id, :price, :duration_days, :comment, :status,
	 :archived_at, :original_created_at, :original_updated_at)`
	if err := namedInsertBatch(ctx, executor(ctx, r.db), query, bids); err != nil {
		return fmt.Errorf("insert archived bids: %w", err)
	}
	return nil
}

// InsertRatings bulk inserts archived task ratings.
func (r *ArchiveRepository) InsertRatings(ctx context.Context, ratings []models.ArchivedRating) error {
	if len(ratings) == 0 {
		return nil
	}
	const query = `INSERT INTO archived_task_ratings
	(id, archived_task_id, original_rating_id, subcontractor_id, rated_by, rating, comment, archived_at, original_created_at)
	VALUES (:id, :archived_task_id, :original_rating_id, :subcontractor_id, :rated_by, :rating, :comment, :archived_at, :original_created_at)`
	if err := namedInsertBatch(ctx, executor(ctx, r.db), query, ratings); err != nil {
		return fmt.Errorf("insert archived ratings: %w", err)
	}
	return nil
}

// InsertDocuments bulk inserts archived document metadata.
func (r *ArchiveRepository) InsertDocuments(ctx context.Context, documents []models.ArchivedDocument) error {
	if len(documents) == 0 {
		return nil
	}
	const query = `INSERT INTO archived_task_documents
	(id, archived_task_id, original_document_id, file_name, file_url, file_type, archived_at, original_created_at)
	VALUES (:id, :archived_task_id, :original_document_id, :file_name, :file_url, :file_type, :archived_at, :original_created_at)`
	if err := namedInsertBatch(ctx, executor(ctx, r.db), query, documents); err != nil {
		return fmt.Errorf("insert archived documents: %w", err)
	}
	return nil
}

// GetByID retrieves one archived project. Returns sql.ErrNoRows when missing.
func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*models.ArchivedProject, error) {
	var project models.ArchivedProject
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &project, `SELECT `+archivedProjectColumns+` FROM archived_projects WHERE id = $1`, id); err != nil {
		return nil, noRowsOnBadID(err)
	}
	return &project, nil
}

// GetByOriginalProjectID finds the most recent archive of a live project id.
func (r *ArchiveRepository) GetByOriginalProjectID(ctx context.Context, projectID string) (*models.ArchivedProject, error) {
	var project models.ArchivedProject
	query := `SELECT ` + archivedProjectColumns + ` FROM archived_projects WHERE original_project_id = $1 ORDER BY archived_at DESC LIMIT 1`
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &project, query, projectID); err != nil {
		return nil, noRowsOnBadID(err)
	}
	return &project, nil
}

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// List returns archived projects, newest first, and the unpaged total.
func (r *ArchiveRepository) List(ctx context.Context, filter models.ArchivedProjectFilter) ([]models.ArchivedProject, int, error) {
	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.ArchivedBy != "" {
		args = append(args, filter.ArchivedBy)
		conditions = append(conditions, fmt.Sprintf("archived_by = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(filter.Search))+"%")
		conditions = append(conditions, fmt.Sprintf(`LOWER(name) LIKE $%d ESCAPE '\'`, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &total, "SELECT COUNT(*) FROM archived_projects"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count archived projects: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf("SELECT %s FROM archived_projects%s ORDER BY archived_at DESC LIMIT $%d OFFSET $%d",
		archivedProjectColumns, where, len(args)-1, len(args))

	var projects []models.ArchivedProject
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &projects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list archived projects: %w", err)
	}
	return projects, total, nil
}

// GetDetail loads the archived project with its full archived ownership graph.
func (r *ArchiveRepository) GetDetail(ctx context.Context, id string) (*models.ArchivedProjectDetail, error) {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ext := executor(ctx, r.db)

	var categories []models.ArchivedCategory
	if err := sqlx.SelectContext(ctx, ext, &categories, `SELECT id, archived_project_id, original_category_id, name, display_order,
       archived_at, original_created_at, original_updated_at
	FROM archived_categories WHERE archived_project_id = $1 ORDER BY display_order, original_created_at`, id); err != nil {
		return nil, fmt.Errorf("load archived categories: %w", err)
	}

	detail := &models.ArchivedProjectDetail{ArchivedProject: *project, Categories: make([]models.ArchivedCategoryDetail, 0, len(categories))}
	if len(categories) == 0 {
		return detail, nil
	}

	categoryIDs := make([]string, len(categories))
	for i, c := range categories {
		categoryIDs[i] = c.ID
	}
	var tasks []models.ArchivedTask
	if err := sqlx.SelectContext(ctx, ext, &tasks, `SELECT id, archived_category_id, original_task_id, name, description, detailed_description,
       estimated_price, max_price, duration_days, status, start_date, end_date, bid_deadline, archived_at,
       original_created_at, original_updated_at
	FROM archived_tasks WHERE archived_category_id = ANY($1) ORDER BY original_created_at`, pq.Array(categoryIDs)); err != nil {
		return nil, fmt.Errorf("load archived tasks: %w", err)
	}

	taskIDs := make([]string, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}

	var (
		bids      []models.ArchivedBid
		ratings   []models.ArchivedRating
		documents []models.ArchivedDocument
	)
	if len(taskIDs) > 0 {
		if err := sqlx.SelectContext(ctx, ext, &bids, `SELECT id, archived_task_id, archived_project_id, original_bid_id, subcontractor_id,
       price, duration_days, comment, status, archived_at, original_created_at, original_updated_at
	FROM archived_bids WHERE archived_task_id = ANY($1) ORDER BY original_created_at`, pq.Array(taskIDs)); err != nil {
			return nil, fmt.Errorf("load archived bids: %w", err)
		}
		if err := sqlx.SelectContext(ctx, ext, &ratings, `SELECT id, archived_task_id, original_rating_id, subcontractor_id, rated_by, rating,
       comment, archived_at, original_created_at
	FROM archived_task_ratings WHERE archived_task_id = ANY($1) ORDER BY original_created_at`, pq.Array(taskIDs)); err != nil {
			return nil, fmt.Errorf("load archived ratings: %w", err)
		}
		if err := sqlx.SelectContext(ctx, ext, &documents, `SELECT id, archived_task_id, original_document_id, file_name, file_url, file_type,
       archived_at, original_created_at
	FROM archived_task_documents WHERE archived_task_id = ANY($1) ORDER BY original_created_at`, pq.Array(taskIDs)); err != nil {
			return nil, fmt.Errorf("load archived documents: %w", err)
		}
	}

	return assembleDetail(detail, categories, tasks, bids, ratings, documents), nil
}

func assembleDetail(
	detail *models.ArchivedProjectDetail,
	categories []models.ArchivedCategory,
	tasks []models.ArchivedTask,
	bids []models.ArchivedBid,
	ratings []models.ArchivedRating,
	documents []models.ArchivedDocument,
) *models.ArchivedProjectDetail {
	taskDetails := make(map[string]*models.ArchivedTaskDetail, len(tasks))
	tasksByCategory := make(map[string][]string, len(categories))
	for _, t := range tasks {
		taskDetails[t.ID] = &models.ArchivedTaskDetail{
			ArchivedTask: t,
			Bids:         []models.ArchivedBid{},
			Ratings:      []models.ArchivedRating{},
			Documents:    []models.ArchivedDocument{},
		}
		tasksByCategory[t.ArchivedCategoryID] = append(tasksByCategory[t.ArchivedCategoryID], t.ID)
	}
	for _, b := range bids {
		if td, ok := taskDetails[b.ArchivedTaskID]; ok {
			td.Bids = append(td.Bids, b)
		}
	}
	for _, rt := range ratings {
		if td, ok := taskDetails[rt.ArchivedTaskID]; ok {
			td.Ratings = append(td.Ratings, rt)
		}
	}
	for _, d := range documents {
		if td, ok := taskDetails[d.ArchivedTaskID]; ok {
			td.Documents = append(td.Documents, d)
		}
	}

	for _, c := range categories {
		cd := models.ArchivedCategoryDetail{ArchivedCategory: c, Tasks: []models.ArchivedTaskDetail{}}
		for _, id := range tasksByCategory[c.ID] {
			cd.Tasks = append(cd.Tasks, *taskDetails[id])
		}
		detail.Categories = append(detail.Categories, cd)
	}
	return detail
}
