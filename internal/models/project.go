package models

import "time"

// BidStatus captures the lifecycle of a subcontractor proposal.
type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

// Project is the root of the live bidding graph.
type Project struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Status        string     `db:"status" json:"status"`
	ProjectType   *string    `db:"project_type" json:"projectType,omitempty"`
	StartDate     *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate       *time.Time `db:"end_date" json:"endDate,omitempty"`
	CreatedBy     *string    `db:"created_by" json:"createdBy,omitempty"`
	ImageURL      *string    `db:"image_url" json:"imageUrl,omitempty"`
	GanttChartURL *string    `db:"gantt_chart_url" json:"ganttChartUrl,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// Category groups tasks inside a project.
type Category struct {
	ID           string    `db:"id" json:"id"`
	ProjectID    string    `db:"project_id" json:"projectId"`
	Name         string    `db:"name" json:"name"`
	DisplayOrder int       `db:"display_order" json:"displayOrder"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Task is a unit of work subcontractors bid on.
type Task struct {
	ID                  string     `db:"id" json:"id"`
	CategoryID          string     `db:"category_id" json:"categoryId"`
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
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
}

// Bid is a subcontractor proposal for a task.
type Bid struct {
	ID              string    `db:"id" json:"id"`
	TaskID          string    `db:"task_id" json:"taskId"`
	SubcontractorID string    `db:"subcontractor_id" json:"subcontractorId"`
	Price           *float64  `db:"price" json:"price,omitempty"`
	DurationDays    *int      `db:"duration_days" json:"durationDays,omitempty"`
	Comment         *string   `db:"comment" json:"comment,omitempty"`
	Status          BidStatus `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// TaskRating scores a subcontractor's work on a task (1-10).
type TaskRating struct {
	ID              string    `db:"id" json:"id"`
	TaskID          string    `db:"task_id" json:"taskId"`
	SubcontractorID string    `db:"subcontractor_id" json:"subcontractorId"`
	RatedBy         string    `db:"rated_by" json:"ratedBy"`
	Rating          int       `db:"rating" json:"rating"`
	Comment         *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// TaskDocument references an uploaded file in object storage.
type TaskDocument struct {
	ID        string    `db:"id" json:"id"`
	TaskID    string    `db:"task_id" json:"taskId"`
	FileName  string    `db:"file_name" json:"fileName"`
	FileURL   string    `db:"file_url" json:"fileUrl"`
	FileType  *string   `db:"file_type" json:"fileType,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ProjectGraph is a live project with every row that depends on it.
type ProjectGraph struct {
	Project    Project
	Categories []Category
	Tasks      []Task
	Bids       []Bid
	Ratings    []TaskRating
	Documents  []TaskDocument
}
