package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records/internal/models"
)

// Constraint names raised on profile inserts.
const (
	StudentNumberConstraint   = "student_profiles_student_id_key"
	StudentUserConstraint     = "student_profiles_user_id_key"
	EmployeeNumberConstraint  = "instructor_profiles_employee_id_key"
	InstructorUserConstraint  = "instructor_profiles_user_id_key"
	employeeNumberPattern     = `^INST-[0-9]+$`
	employeeNumberDigitOffset = 6
)

// ProfileRepository stores the role specific student and instructor profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindStudentProfile returns the student profile of userID with its program name.
func (r *ProfileRepository) FindStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	const query = `SELECT sp.id, sp.user_id, sp.student_id, sp.program_id, c.name AS program_name, sp.enrolled_date
FROM student_profiles sp
LEFT JOIN courses c ON c.id = sp.program_id
WHERE sp.user_id = $1 LIMIT 1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student profile: %w", err)
	}
	return &profile, nil
}

// FindInstructorProfile returns the instructor profile of userID.
func (r *ProfileRepository) FindInstructorProfile(ctx context.Context, userID string) (*models.InstructorProfile, error) {
	const query = `SELECT id, user_id, employee_id, hire_date FROM instructor_profiles WHERE user_id = $1 LIMIT 1`
	var profile models.InstructorProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find instructor profile: %w", err)
	}
	return &profile, nil
}

// CountStudentProfiles returns the number of student profiles.
func (r *ProfileRepository) CountStudentProfiles(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM student_profiles`); err != nil {
		return 0, fmt.Errorf("count student profiles: %w", err)
	}
	return total, nil
}

// MaxEmployeeNumber returns the highest numeric suffix among INST-NNN ids, or 0.
func (r *ProfileRepository) MaxEmployeeNumber(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(SUBSTRING(employee_id FROM %d)::int), 0) FROM instructor_profiles WHERE employee_id ~ '%s'`,
		employeeNumberDigitOffset, employeeNumberPattern)
	var last int
	if err := r.db.GetContext(ctx, &last, query); err != nil {
		return 0, fmt.Errorf("max employee number: %w", err)
	}
	return last, nil
}

// CreateStudentProfile inserts a student profile. Unique violations are
// returned wrapped so callers can inspect the constraint.
func (r *ProfileRepository) CreateStudentProfile(ctx context.Context, profile *models.StudentProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	const query = `INSERT INTO student_profiles (id, user_id, student_id, program_id, enrolled_date) VALUES (:id, :user_id, :student_id, :program_id, :enrolled_date)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	return nil
}

// CreateInstructorProfile inserts an instructor profile.
func (r *ProfileRepository) CreateInstructorProfile(ctx context.Context, profile *models.InstructorProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	const query = `INSERT INTO instructor_profiles (id, user_id, employee_id, hire_date) VALUES (:id, :user_id, :employee_id, :hire_date)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create instructor profile: %w", err)
	}
	return nil
}
