package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records/internal/models"
)

// EnrollmentUniqueConstraint guards one enrollment per student and subject.
const EnrollmentUniqueConstraint = "enrollments_student_subject_key"

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

var enrollmentDetailSelect = `SELECT e.id, e.student_id, e.subject_id, e.status, e.enrolled_at, e.updated_at,
s.code AS subject_code, s.name AS subject_name, s.units, s.semester, c.name AS course_name,
CASE WHEN i.id IS NULL THEN NULL ELSE ` + fullNameSQL("i") + ` END AS instructor_name,
u.username AS student_username, ` + fullNameSQL("u") + ` AS student_name, sp.student_id AS student_number
FROM enrollments e
JOIN subjects s ON s.id = e.subject_id
JOIN courses c ON c.id = s.course_id
JOIN users u ON u.id = e.student_id
LEFT JOIN users i ON i.id = s.instructor_id
LEFT JOIN student_profiles sp ON sp.user_id = e.student_id`

// List returns enrollments filtered by the provided criteria, newest first.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var where whereBuilder
	if filter.StudentID != "" {
		where.add("e.student_id = $%d", filter.StudentID)
	}
	if filter.SubjectID != "" {
		where.add("e.subject_id = $%d", filter.SubjectID)
	}
	if filter.InstructorID != "" {
		where.add("s.instructor_id = $%d", filter.InstructorID)
	}
	if filter.Status != "" {
		where.add("e.status = $%d", filter.Status)
	}

	query := enrollmentDetailSelect + where.clause() + " ORDER BY e.enrolled_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, where.args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by identifier.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, subject_id, status, enrolled_at, updated_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// Exists reports whether the student is already enrolled in the subject.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, subjectID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND subject_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, subjectID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// Create inserts an enrollment. A duplicate pair surfaces as a unique violation
// on EnrollmentUniqueConstraint.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentEnrolled
	}
	const query = `INSERT INTO enrollments (id, student_id, subject_id, status, enrolled_at, updated_at) VALUES (:id, :student_id, :subject_id, :status, :enrolled_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus sets the status of an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountStudentsByInstructor counts distinct students currently enrolled in
// subjects taught by instructorID.
func (r *EnrollmentRepository) CountStudentsByInstructor(ctx context.Context, instructorID string) (int, error) {
	const query = `SELECT COUNT(DISTINCT e.student_id) FROM enrollments e JOIN subjects s ON s.id = e.subject_id WHERE s.instructor_id = $1 AND e.status = 'enrolled'`
	var total int
	if err := r.db.GetContext(ctx, &total, query, instructorID); err != nil {
		return 0, fmt.Errorf("count instructor students: %w", err)
	}
	return total, nil
}
