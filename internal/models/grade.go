package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Failing letter grade; anything else with a computed average is a pass.
const FailingLetterGrade = "5.00"

// Grade stores the component scores and derived results for one enrollment.
// WeightedAverage, LetterGrade and GradePoint are always written together and
// are NULL until all three components are present.
type Grade struct {
	ID              string              `db:"id"`
	EnrollmentID    string              `db:"enrollment_id"`
	PrelimGrade     decimal.NullDecimal `db:"prelim_grade"`
	MidtermGrade    decimal.NullDecimal `db:"midterm_grade"`
	FinalGrade      decimal.NullDecimal `db:"final_grade"`
	PrelimWeight    decimal.Decimal     `db:"prelim_weight"`
	MidtermWeight   decimal.Decimal     `db:"midterm_weight"`
	FinalWeight     decimal.Decimal     `db:"final_weight"`
	WeightedAverage decimal.NullDecimal `db:"weighted_average"`
	LetterGrade     *string             `db:"letter_grade"`
	GradePoint      decimal.NullDecimal `db:"grade_point"`
	Remarks         string              `db:"remarks"`
	CreatedAt       time.Time           `db:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at"`
}

// Completed reports whether a weighted average has been computed.
func (g *Grade) Completed() bool {
	return g.WeightedAverage.Valid
}

// Failed reports whether the computed letter grade is failing.
func (g *Grade) Failed() bool {
	return g.LetterGrade != nil && *g.LetterGrade == FailingLetterGrade
}

// GradeDetail joins a grade with its enrollment, subject and student.
type GradeDetail struct {
	Grade
	StudentID        string           `db:"student_id"`
	SubjectID        string           `db:"subject_id"`
	EnrollmentStatus EnrollmentStatus `db:"enrollment_status"`
	EnrolledAt       time.Time        `db:"enrolled_at"`
	SubjectCode      string           `db:"subject_code"`
	SubjectName      string           `db:"subject_name"`
	Units            int              `db:"units"`
	Semester         Semester         `db:"semester"`
	CourseName       string           `db:"course_name"`
	InstructorID     *string          `db:"instructor_id"`
	InstructorName   *string          `db:"instructor_name"`
	StudentName      string           `db:"student_name"`
	StudentNumber    *string          `db:"student_number"`
}

// UpdateGradeRequest is the instructor's grade form. Blank components clear
// the stored value; blank weights keep the stored weights.
type UpdateGradeRequest struct {
	PrelimGrade   string `form:"prelim_grade"`
	MidtermGrade  string `form:"midterm_grade"`
	FinalGrade    string `form:"final_grade"`
	PrelimWeight  string `form:"prelim_weight"`
	MidtermWeight string `form:"midterm_weight"`
	FinalWeight   string `form:"final_weight"`
	Remarks       string `form:"remarks"`
}

// GradeSummary aggregates a student's grades for the all-grades page.
type GradeSummary struct {
	Grades        []GradeDetail
	TotalSubjects int
	Passed        int
	Failed        int
	Incomplete    int
	GPA           decimal.Decimal
}

// SubjectStudent pairs an enrolled student with their grade row.
type SubjectStudent struct {
	Enrollment EnrollmentDetail
	Grade      Grade
}
