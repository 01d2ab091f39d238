package models

import "time"

// EnrollmentStatus tracks a student's standing in a subject.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Enrollment links a student to a subject. At most one per pair.
type Enrollment struct {
	ID         string           `db:"id"`
	StudentID  string           `db:"student_id"`
	SubjectID  string           `db:"subject_id"`
	Status     EnrollmentStatus `db:"status"`
	EnrolledAt time.Time        `db:"enrolled_at"`
	UpdatedAt  time.Time        `db:"updated_at"`
}

// EnrollmentDetail joins an enrollment with subject and student data.
type EnrollmentDetail struct {
	Enrollment
	SubjectCode     string   `db:"subject_code"`
	SubjectName     string   `db:"subject_name"`
	Units           int      `db:"units"`
	Semester        Semester `db:"semester"`
	CourseName      string   `db:"course_name"`
	InstructorName  *string  `db:"instructor_name"`
	StudentUsername string   `db:"student_username"`
	StudentName     string   `db:"student_name"`
	StudentNumber   *string  `db:"student_number"`
}

// CreateEnrollmentRequest is the admin form enrolling a student.
type CreateEnrollmentRequest struct {
	StudentID string `form:"student_id" label:"student" validate:"required,uuid"`
	SubjectID string `form:"subject_id" label:"subject" validate:"required,uuid"`
}

// UpdateEnrollmentStatusRequest changes an enrollment's status.
type UpdateEnrollmentStatusRequest struct {
	Status string `form:"status" validate:"required,oneof=enrolled dropped completed"`
}

// EnrollmentFilter narrows enrollment listings. Empty fields are ignored.
type EnrollmentFilter struct {
	StudentID    string
	SubjectID    string
	InstructorID string
	Status       EnrollmentStatus
	Limit        int
}
