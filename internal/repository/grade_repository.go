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

// GradeOrder selects the ordering of student grade listings.
type GradeOrder string

const (
	// GradeOrderRecent orders by grade creation, newest first.
	GradeOrderRecent GradeOrder = "recent"
	// GradeOrderEnrollment orders by enrollment date, newest first.
	GradeOrderEnrollment GradeOrder = "enrollment"
)

const gradeColumns = `g.id, g.enrollment_id, g.prelim_grade, g.midterm_grade, g.final_grade, g.prelim_weight, g.midterm_weight, g.final_weight, g.weighted_average, g.letter_grade, g.grade_point, g.remarks, g.created_at, g.updated_at`

var gradeDetailSelect = `SELECT ` + gradeColumns + `,
e.student_id, e.subject_id, e.status AS enrollment_status, e.enrolled_at,
s.code AS subject_code, s.name AS subject_name, s.units, s.semester, c.name AS course_name, s.instructor_id,
CASE WHEN i.id IS NULL THEN NULL ELSE ` + fullNameSQL("i") + ` END AS instructor_name,
` + fullNameSQL("u") + ` AS student_name, sp.student_id AS student_number
FROM grades g
JOIN enrollments e ON e.id = g.enrollment_id
JOIN subjects s ON s.id = e.subject_id
JOIN courses c ON c.id = s.course_id
JOIN users u ON u.id = e.student_id
LEFT JOIN users i ON i.id = s.instructor_id
LEFT JOIN student_profiles sp ON sp.user_id = e.student_id`

// GradeRepository persists grade rows.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindDetail returns a grade with its enrollment, subject and student context.
func (r *GradeRepository) FindDetail(ctx context.Context, id string) (*models.GradeDetail, error) {
	query := gradeDetailSelect + ` WHERE g.id = $1`
	var detail models.GradeDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grade: %w", err)
	}
	return &detail, nil
}

// GetOrCreate returns the grade of an enrollment, inserting a blank row with
// default weights when none exists. Concurrent callers converge on one row.
func (r *GradeRepository) GetOrCreate(ctx context.Context, enrollmentID string) (*models.Grade, error) {
	now := time.Now().UTC()
	const insert = `INSERT INTO grades (id, enrollment_id, created_at, updated_at) VALUES ($1, $2, $3, $3) ON CONFLICT (enrollment_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), enrollmentID, now); err != nil {
		return nil, fmt.Errorf("ensure grade: %w", err)
	}

	query := `SELECT ` + gradeColumns + ` FROM grades g WHERE g.enrollment_id = $1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("load grade: %w", err)
	}
	return &grade, nil
}

// Update writes component scores, weights, remarks and derived results in one statement.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET prelim_grade = :prelim_grade, midterm_grade = :midterm_grade, final_grade = :final_grade,
prelim_weight = :prelim_weight, midterm_weight = :midterm_weight, final_weight = :final_weight,
weighted_average = :weighted_average, letter_grade = :letter_grade, grade_point = :grade_point,
remarks = :remarks, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByStudent returns grades of a student. limit <= 0 returns all rows.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string, order GradeOrder, limit int) ([]models.GradeDetail, error) {
	orderBy := " ORDER BY g.created_at DESC"
	if order == GradeOrderEnrollment {
		orderBy = " ORDER BY e.enrolled_at DESC"
	}
	query := gradeDetailSelect + ` WHERE e.student_id = $1` + orderBy
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// CompletedEntries returns grade points and units of completed enrollments with
// a computed grade point.
func (r *GradeRepository) CompletedEntries(ctx context.Context, studentID string) ([]models.GPAEntry, error) {
	const query = `SELECT g.grade_point, s.units FROM grades g
JOIN enrollments e ON e.id = g.enrollment_id
JOIN subjects s ON s.id = e.subject_id
WHERE e.student_id = $1 AND e.status = 'completed' AND g.grade_point IS NOT NULL`
	var entries []models.GPAEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list completed grade entries: %w", err)
	}
	return entries, nil
}

// TermEntries is CompletedEntries restricted to a semester and an enrollment window [from, to).
func (r *GradeRepository) TermEntries(ctx context.Context, studentID string, semester models.Semester, from, to time.Time) ([]models.GPAEntry, error) {
	const query = `SELECT g.grade_point, s.units FROM grades g
JOIN enrollments e ON e.id = g.enrollment_id
JOIN subjects s ON s.id = e.subject_id
WHERE e.student_id = $1 AND e.status = 'completed' AND g.grade_point IS NOT NULL
AND s.semester = $2 AND e.enrolled_at >= $3 AND e.enrolled_at < $4`
	var entries []models.GPAEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID, semester, from, to); err != nil {
		return nil, fmt.Errorf("list term grade entries: %w", err)
	}
	return entries, nil
}
