package domain

import (
	"errors"
	"time"
)

// ProjectStatus represents where a project is in its lifecycle.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
)

// ProjectPriority ranks projects against each other.
type ProjectPriority string

const (
	PriorityLow    ProjectPriority = "low"
	PriorityMedium ProjectPriority = "medium"
	PriorityHigh   ProjectPriority = "high"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidProject  = errors.New("invalid project")
)

// Project is an internal initiative tracked by coordinators.
type Project struct {
	ID          int64           `json:"id" bson:"_id"`
	Title       string          `json:"title" bson:"title"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
	Status      ProjectStatus   `json:"status" bson:"status"`
	Priority    ProjectPriority `json:"priority" bson:"priority"`
	DueDate     string          `json:"due_date,omitempty" bson:"due_date,omitempty"`
	AssignedTo  *int64          `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	Category    string          `json:"category,omitempty" bson:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}
