package models

import "github.com/shopspring/decimal"

// StudentDashboard is the student landing page.
type StudentDashboard struct {
	Enrollments      []EnrollmentDetail   `json:"enrollments"`
	RecentGrades     []GradeDetail        `json:"recent_grades"`
	GPA              decimal.Decimal      `json:"gpa"`
	Announcements    []AnnouncementDetail `json:"announcements"`
	TotalEnrollments int                  `json:"total_enrollments"`
}

// InstructorDashboard is the instructor landing page.
type InstructorDashboard struct {
	Subjects      []SubjectDetail      `json:"subjects"`
	TotalSubjects int                  `json:"total_subjects"`
	TotalStudents int                  `json:"total_students"`
	Announcements []AnnouncementDetail `json:"announcements"`
}

// AdminOverview lists the catalog for maintenance.
type AdminOverview struct {
	Courses     []Course
	Subjects    []SubjectDetail
	Enrollments []EnrollmentDetail
	GPARecords  []GPARecordDetail
	Students    []User
	Instructors []User
}
