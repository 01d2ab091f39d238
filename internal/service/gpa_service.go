package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/validation"
)

type termEntryReader interface {
	TermEntries(ctx context.Context, studentID string, semester models.Semester, from, to time.Time) ([]models.GPAEntry, error)
}

type gpaRecordRepository interface {
	Upsert(ctx context.Context, record *models.GPARecord) error
}

// GPAService computes and stores per-term GPA records.
type GPAService struct {
	grades    termEntryReader
	records   gpaRecordRepository
	users     userReader
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGPAService constructs a GPAService.
func NewGPAService(grades termEntryReader, records gpaRecordRepository, users userReader, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *GPAService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GPAService{grades: grades, records: records, users: users, audit: audit, validator: validate, logger: logger}
}

// ComputeRecord computes the GPA of a student for one semester of an academic
// year and stores it, replacing an earlier record for the same term.
func (s *GPAService) ComputeRecord(ctx context.Context, actor *models.CurrentUser, req models.ComputeGPARequest) (*models.GPARecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}
	from, to, err := AcademicYearWindow(req.AcademicYear)
	if err != nil {
		return nil, err
	}
	student, err := s.users.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "select a valid student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gpa records are kept for students only")
	}

	semester := models.Semester(req.Semester)
	entries, err := s.grades.TermEntries(ctx, student.ID, semester, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term grades")
	}
	gpa, units := ComputeGPA(entries)

	record := &models.GPARecord{
		StudentID:    student.ID,
		Semester:     semester,
		AcademicYear: req.AcademicYear,
		GPA:          gpa,
		TotalUnits:   units,
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store gpa record")
	}
	s.logger.Info("gpa record computed",
		zap.String("student_id", record.StudentID),
		zap.String("semester", string(record.Semester)),
		zap.String("academic_year", record.AcademicYear),
		zap.String("gpa", record.GPA.StringFixed(2)),
	)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionCatalogChange, "gpa_record", record.ID,
		map[string]interface{}{"gpa": record.GPA, "total_units": record.TotalUnits})
	return record, nil
}
