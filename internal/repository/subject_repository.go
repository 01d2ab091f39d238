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

// SubjectCodeConstraint is raised on a duplicate subject code.
const SubjectCodeConstraint = "subjects_code_key"

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

var subjectDetailSelect = `SELECT s.id, s.code, s.name, s.description, s.course_id, s.units, s.semester, s.instructor_id, s.created_at, s.updated_at,
c.code AS course_code, c.name AS course_name,
CASE WHEN i.id IS NULL THEN NULL ELSE ` + fullNameSQL("i") + ` END AS instructor_name,
(SELECT COUNT(*) FROM enrollments en WHERE en.subject_id = s.id AND en.status = 'enrolled') AS enrolled_count
FROM subjects s
JOIN courses c ON c.id = s.course_id
LEFT JOIN users i ON i.id = s.instructor_id`

// List returns subjects matching filter ordered by course, semester and code.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, error) {
	var where whereBuilder
	if filter.CourseID != "" {
		where.add("s.course_id = $%d", filter.CourseID)
	}
	if filter.InstructorID != "" {
		where.add("s.instructor_id = $%d", filter.InstructorID)
	}
	if filter.StudentID != "" {
		where.add("EXISTS (SELECT 1 FROM enrollments se WHERE se.subject_id = s.id AND se.student_id = $%d)", filter.StudentID)
	}

	query := subjectDetailSelect + where.clause() + " ORDER BY c.code, s.semester, s.code"
	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, where.args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by identifier.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, code, name, description, course_id, units, semester, instructor_id, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return &subject, nil
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	const query = `INSERT INTO subjects (id, code, name, description, course_id, units, semester, instructor_id, created_at, updated_at) VALUES (:id, :code, :name, :description, :course_id, :units, :semester, :instructor_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// UpdateInstructor assigns or clears the instructor of a subject.
func (r *SubjectRepository) UpdateInstructor(ctx context.Context, id string, instructorID *string) error {
	const query = `UPDATE subjects SET instructor_id = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, instructorID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update subject instructor: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
