package models

import "time"

// Semester identifies the term a subject is offered in.
type Semester string

const (
	SemesterFirst  Semester = "1"
	SemesterSecond Semester = "2"
	SemesterSummer Semester = "summer"
)

// Label returns the display name of the semester.
func (s Semester) Label() string {
	switch s {
	case SemesterFirst:
		return "First Semester"
	case SemesterSecond:
		return "Second Semester"
	case SemesterSummer:
		return "Summer"
	default:
		return string(s)
	}
}

// Subject is a unit of study within a course.
type Subject struct {
	ID           string    `db:"id"`
	Code         string    `db:"code"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	CourseID     string    `db:"course_id"`
	Units        int       `db:"units"`
	Semester     Semester  `db:"semester"`
	InstructorID *string   `db:"instructor_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// OwnedBy reports whether userID is the assigned instructor.
func (s *Subject) OwnedBy(userID string) bool {
	return s.InstructorID != nil && *s.InstructorID == userID
}

// SubjectDetail joins a subject with its course, instructor and enrollment count.
type SubjectDetail struct {
	Subject
	CourseCode     string  `db:"course_code"`
	CourseName     string  `db:"course_name"`
	InstructorName *string `db:"instructor_name"`
	EnrolledCount  int     `db:"enrolled_count"`
}

// CreateSubjectRequest is the admin form for a new subject.
type CreateSubjectRequest struct {
	Code         string `form:"code" validate:"required,max=20"`
	Name         string `form:"name" validate:"required,max=200"`
	Description  string `form:"description"`
	CourseID     string `form:"course_id" label:"course" validate:"required,uuid"`
	Units        int    `form:"units" validate:"min=1,max=6"`
	Semester     string `form:"semester" validate:"required,oneof=1 2 summer"`
	InstructorID string `form:"instructor_id" label:"instructor" validate:"omitempty,uuid"`
}

// AssignInstructorRequest sets or clears a subject's instructor.
type AssignInstructorRequest struct {
	InstructorID string `form:"instructor_id" label:"instructor" validate:"omitempty,uuid"`
}

// SubjectFilter narrows subject listings. Empty fields are ignored.
type SubjectFilter struct {
	CourseID     string
	InstructorID string
	StudentID    string
}
