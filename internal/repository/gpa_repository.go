package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records/internal/models"
)

// GPARepository persists computed GPA records.
type GPARepository struct {
	db *sqlx.DB
}

// NewGPARepository constructs the repository.
func NewGPARepository(db *sqlx.DB) *GPARepository {
	return &GPARepository{db: db}
}

// Upsert stores the record, replacing any existing row for the same student,
// semester and academic year. The stored id is written back to record.
func (r *GPARepository) Upsert(ctx context.Context, record *models.GPARecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.ComputedAt = time.Now().UTC()
	const query = `INSERT INTO gpa_records (id, student_id, semester, academic_year, gpa, total_units, computed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (student_id, semester, academic_year)
DO UPDATE SET gpa = EXCLUDED.gpa, total_units = EXCLUDED.total_units, computed_at = EXCLUDED.computed_at
RETURNING id`
	var id string
	if err := r.db.QueryRowxContext(ctx, query, record.ID, record.StudentID, record.Semester, record.AcademicYear, record.GPA, record.TotalUnits, record.ComputedAt).Scan(&id); err != nil {
		return fmt.Errorf("upsert gpa record: %w", err)
	}
	record.ID = id
	return nil
}

// List returns all GPA records, latest academic year first.
func (r *GPARepository) List(ctx context.Context) ([]models.GPARecordDetail, error) {
	query := `SELECT g.id, g.student_id, g.semester, g.academic_year, g.gpa, g.total_units, g.computed_at, ` + fullNameSQL("u") + ` AS student_name
FROM gpa_records g JOIN users u ON u.id = g.student_id
ORDER BY g.academic_year DESC, g.semester DESC, student_name`
	var records []models.GPARecordDetail
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list gpa records: %w", err)
	}
	return records, nil
}
