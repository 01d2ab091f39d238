package models

import "time"

// AnnouncementType scopes an announcement system-wide or to one subject.
type AnnouncementType string

const (
	AnnouncementSystem AnnouncementType = "system"
	AnnouncementCourse AnnouncementType = "course"
)

// Announcement represents a persisted announcement row. SubjectID is set
// exactly when Type is course.
type Announcement struct {
	ID        string           `db:"id"`
	Title     string           `db:"title"`
	Content   string           `db:"content"`
	Type      AnnouncementType `db:"announcement_type"`
	SubjectID *string          `db:"subject_id"`
	CreatedBy string           `db:"created_by"`
	IsActive  bool             `db:"is_active"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// AnnouncementDetail adds subject and author names for display.
type AnnouncementDetail struct {
	Announcement
	SubjectCode *string `db:"subject_code"`
	SubjectName *string `db:"subject_name"`
	AuthorName  string  `db:"author_name"`
}

// AnnouncementRequest is the create/edit form.
type AnnouncementRequest struct {
	Title     string `form:"title" validate:"required,max=200"`
	Content   string `form:"content" validate:"required"`
	Type      string `form:"announcement_type" label:"type" validate:"required,oneof=system course"`
	SubjectID string `form:"subject" label:"subject" validate:"omitempty,uuid"`
	IsActive  string `form:"is_active"`
}

// Active reports whether the checkbox was ticked.
func (r AnnouncementRequest) Active() bool {
	return r.IsActive == "on" || r.IsActive == "true"
}
