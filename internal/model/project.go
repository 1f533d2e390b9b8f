package model

import "time"

// ProjectStatus is the lifecycle state of a Project.
type ProjectStatus string

const (
	StatusInProgress ProjectStatus = "in-progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusPending    ProjectStatus = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusPending:
		return true
	}
	return false
}

// Project is a user's site built from a Template.
//
// UserID is always the authenticated creator; TemplateID must reference an
// existing template (enforced by a foreign key). Every project starts
// StatusInProgress and no API operation changes it.
type Project struct {
	ID         int64         `json:"projectId"`
	TemplateID string        `json:"templateId"`
	UserID     string        `json:"userId"`
	Title      string        `json:"title"`
	Slug       string        `json:"slug"`
	Status     ProjectStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
}
