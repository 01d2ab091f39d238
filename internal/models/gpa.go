package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GPARecord is the persisted GPA for one student, semester and academic year.
type GPARecord struct {
	ID           string          `db:"id"`
	StudentID    string          `db:"student_id"`
	Semester     Semester        `db:"semester"`
	AcademicYear string          `db:"academic_year"`
	GPA          decimal.Decimal `db:"gpa"`
	TotalUnits   int             `db:"total_units"`
	ComputedAt   time.Time       `db:"computed_at"`
}

// GPARecordDetail adds the student's name for listings.
type GPARecordDetail struct {
	GPARecord
	StudentName string `db:"student_name"`
}

// GPAEntry is one graded subject contributing to a GPA.
type GPAEntry struct {
	GradePoint decimal.NullDecimal `db:"grade_point"`
	Units      int                 `db:"units"`
}

// ComputeGPARequest triggers GPA computation for a student and term.
type ComputeGPARequest struct {
	StudentID    string `form:"student_id" label:"student" validate:"required,uuid"`
	Semester     string `form:"semester" validate:"required,oneof=1 2 summer"`
	AcademicYear string `form:"academic_year" label:"academic year" validate:"required,len=9"`
}
