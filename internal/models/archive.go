package models

import "time"

// ArchivedProject is the write-once snapshot of a project and its rollups.
type ArchivedProject struct {
	ID                string     `db:"id" json:"id"`
	OriginalProjectID string     `db:"original_project_id" json:"originalProjectId"`
	Name              string     `db:"name" json:"name"`
	Description       *string    `db:"description" json:"description,omitempty"`
	Status            string     `db:"status" json:"status"`
	ProjectType       *string    `db:"project_type" json:"projectType,omitempty"`
	StartDate         *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate           *time.Time `db:"end_date" json:"endDate,omitempty"`
	CreatedBy         *string    `db:"created_by" json:"createdBy,omitempty"`
	ImageURL          *string    `db:"image_url" json:"imageUrl,omitempty"`
	GanttChartURL     *string    `db:"gantt_chart_url" json:"ganttChartUrl,omitempty"`
	TotalTasks        int        `db:"total_tasks" json:"totalTasks"`
	TotalBids         int        `db:"total_bids" json:"totalBids"`
	TotalValue        float64    `db:"total_value" json:"totalValue"`
	ArchivedBy        string     `db:"archived_by" json:"archivedBy"`
	ArchivedAt        time.Time  `db:"archived_at" json:"archivedAt"`
	OriginalCreatedAt time.Time  `db:"original_created_at" json:"originalCreatedAt"`
	OriginalUpdatedAt time.Time  `db:"original_updated_at" json:"originalUpdatedAt"`
}

// ArchivedCategory belongs to an ArchivedProject.
type ArchivedCategory struct {
	ID                 string    `db:"id" json:"id"`
	ArchivedProjectID  string    `db:"archived_project_id" json:"archivedProjectId"`
	OriginalCategoryID string    `db:"original_category_id" json:"originalCategoryId"`
	Name               string    `db:"name" json:"name"`
	DisplayOrder       int       `db:"display_order" json:"displayOrder"`
	ArchivedAt         time.Time `db:"archived_at" json:"archivedAt"`
	OriginalCreatedAt  time.Time `db:"original_created_at" json:"originalCreatedAt"`
	OriginalUpdatedAt  time.Time `db:"original_updated_at" json:"originalUpdatedAt"`
}

// ArchivedTask belongs to an ArchivedCategory.
type ArchivedTask struct {
	ID                  string     `db:"id" json:"id"`
	ArchivedCategoryID  string     `db:"archived_category_id" json:"archivedCategoryId"`
	OriginalTaskID      string     `db:"original_task_id" json:"originalTaskId"`
	Name                string     `db:"name" json:"name"`
	Description         *string    `db:"description" json:"description,omitempty"`
	DetailedDescription *string    `db:"detailed_description" json:"detailedDescription,omitempty"`
	EstimatedPrice      *float64   `db:"estimated_price" json:"estimatedPrice,omitempty"`
	MaxPrice            *float64   `db:"max_price" json:"maxPrice,omitempty"`
	DurationDays        *int       `db:"duration_days" json:"durationDays,omitempty"`
	Status              string     `db:"status" json:"status"`
	StartDate           *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate             *time.Time `db:"end_date" json:"endDate,omitempty"`
	BidDeadline         *time.Time `db:"bid_deadline" json:"bidDeadline,omitempty"`
	ArchivedAt          time.Time  `db:"archived_at" json:"archivedAt"`
	OriginalCreatedAt   time.Time  `db:"original_created_at" json:"originalCreatedAt"`
	OriginalUpdatedAt   time.Time  `db:"original_updated_at" json:"originalUpdatedAt"`
}

// ArchivedBid belongs to an ArchivedTask and also points straight at its ArchivedProject.
type ArchivedBid struct {
	ID                string    `db:"id" json:"id"`
	ArchivedTaskID    string    `db:"archived_task_id" json:"archivedTaskId"`
	ArchivedProjectID string    `db:"archived_project_id" json:"archivedProjectId"`
	OriginalBidID     string    `db:"original_bid_id" json:"originalBidId"`
	SubcontractorID   string    `db:"subcontractor_id" json:"subcontractorId"`
	Price             *float64  `db:"price" json:"price,omitempty"`
	DurationDays      *int      `db:"duration_days" json:"durationDays,omitempty"`
	Comment           *string   `db:"comment" json:"comment,omitempty"`
	Status            BidStatus `db:"status" json:"status"`
	ArchivedAt        time.Time `db:"archived_at" json:"archivedAt"`
	OriginalCreatedAt time.Time `db:"original_created_at" json:"originalCreatedAt"`
	OriginalUpdatedAt time.Time `db:"original_updated_at" json:"originalUpdatedAt"`
}

// ArchivedRating belongs to an ArchivedTask.
type ArchivedRating struct {
	ID                string    `db:"id" json:"id"`
	ArchivedTaskID    string    `db:"archived_task_id" json:"archivedTaskId"`
	OriginalRatingID  string    `db:"original_rating_id" json:"originalRatingId"`
	SubcontractorID   string    `db:"subcontractor_id" json:"subcontractorId"`
	RatedBy           string    `db:"rated_by" json:"ratedBy"`
	Rating            int       `db:"rating" json:"rating"`
	Comment           *string   `db:"comment" json:"comment,omitempty"`
	ArchivedAt        time.Time `db:"archived_at" json:"archivedAt"`
	OriginalCreatedAt time.Time `db:"original_created_at" json:"originalCreatedAt"`
}

// ArchivedDocument keeps document metadata after the blob itself is removed.
type ArchivedDocument struct {
	ID                 string    `db:"id" json:"id"`
	ArchivedTaskID     string    `db:"archived_task_id" json:"archivedTaskId"`
	OriginalDocumentID string    `db:"original_document_id" json:"originalDocumentId"`
	FileName           string    `db:"file_name" json:"fileName"`
	FileURL            string    `db:"file_url" json:"fileUrl"`
	FileType           *string   `db:"file_type" json:"fileType,omitempty"`
	ArchivedAt         time.Time `db:"archived_at" json:"archivedAt"`
	OriginalCreatedAt  time.Time `db:"original_created_at" json:"originalCreatedAt"`
}

// ArchivedTaskDetail nests the rows owned by an archived task.
type ArchivedTaskDetail struct {
	ArchivedTask
	Bids      []ArchivedBid      `json:"bids"`
	Ratings   []ArchivedRating   `json:"ratings"`
	Documents []ArchivedDocument `json:"documents"`
}

// ArchivedCategoryDetail nests archived tasks under their category.
type ArchivedCategoryDetail struct {
	ArchivedCategory
	Tasks []ArchivedTaskDetail `json:"tasks"`
}

// ArchivedProjectDetail is the full archive-side ownership graph of a project.
type ArchivedProjectDetail struct {
	ArchivedProject
	Categories []ArchivedCategoryDetail `json:"categories"`
}

// ArchivedProjectFilter narrows archived project listings.
type ArchivedProjectFilter struct {
	ArchivedBy string
	Search     string
	Limit      int
	Offset     int
}

// ArchiveStats are the rollups stored on the archived project.
type ArchiveStats struct {
	TotalTasks   int     `json:"totalTasks"`
	TotalBids    int     `json:"totalBids"`
	TotalValue   float64 `json:"totalValue"`
	FilesDeleted int     `json:"filesDeleted"`
}

// AssetKind identifies which bucket and prefix an asset lives under.
type AssetKind string

const (
	AssetKindProjectImage AssetKind = "project_image"
	AssetKindGanttChart   AssetKind = "gantt_chart"
	AssetKindDocument     AssetKind = "document"
)

// AssetKey locates one blob in the object store.
type AssetKey struct {
	Kind   AssetKind `json:"kind"`
	Bucket string    `json:"bucket"`
	Key    string    `json:"key"`
}

// AssetDeletionStatus tags the outcome of removing one blob.
type AssetDeletionStatus string

const (
	AssetDeleted AssetDeletionStatus = "deleted"
	AssetFailed  AssetDeletionStatus = "failed"
)

// AssetDeletion records what happened to one asset during cleanup.
type AssetDeletion struct {
	AssetKey
	Status AssetDeletionStatus `json:"status"`
	Reason string              `json:"reason,omitempty"`
}
