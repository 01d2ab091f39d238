package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/internal/repository"
	"github.com/noah-isme/school-records/pkg/database"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/validation"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, subjectID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// EnrollmentService orchestrates enrollment workflows.
type EnrollmentService struct {
	repo      enrollmentRepository
	users     userReader
	subjects  subjectReader
	audit     auditWriter
	cache     CacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, users userReader, subjects subjectReader, audit auditWriter, cache CacheInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &EnrollmentService{repo: repo, users: users, subjects: subjects, audit: audit, cache: cache, validator: validate, logger: logger}
}

// List returns enrollments matching filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Enroll registers a student in a subject. A student is enrolled in a subject
// at most once, whatever the status of the earlier enrollment.
func (s *EnrollmentService) Enroll(ctx context.Context, actor *models.CurrentUser, req models.CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}
	student, err := s.users.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "select a valid student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only students can be enrolled")
	}
	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "select a valid subject")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	exists, err := s.repo.Exists(ctx, student.ID, subject.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if exists {
		return nil, duplicateEnrollment()
	}

	enrollment := &models.Enrollment{StudentID: student.ID, SubjectID: subject.ID, Status: models.EnrollmentEnrolled}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		// A concurrent enrollment can still win the race past Exists.
		if constraint, ok := database.UniqueViolation(err); ok && constraint == repository.EnrollmentUniqueConstraint {
			return nil, duplicateEnrollment()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.invalidate(ctx, enrollment.StudentID, subject)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionCatalogChange, "enrollment", enrollment.ID,
		map[string]string{"student_id": enrollment.StudentID, "subject_id": enrollment.SubjectID})
	return enrollment, nil
}

// UpdateStatus moves an enrollment between enrolled, dropped and completed.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, actor *models.CurrentUser, id string, req models.UpdateEnrollmentStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	status := models.EnrollmentStatus(req.Status)
	if err := s.repo.UpdateStatus(ctx, enrollment.ID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}

	subject, err := s.subjects.FindByID(ctx, enrollment.SubjectID)
	if err != nil {
		s.logger.Warn("failed to load subject for cache invalidation", zap.String("subject_id", enrollment.SubjectID), zap.Error(err))
		subject = nil
	}
	s.invalidate(ctx, enrollment.StudentID, subject)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionCatalogChange, "enrollment", enrollment.ID,
		map[string]string{"status": req.Status})
	return nil
}

func (s *EnrollmentService) invalidate(ctx context.Context, studentID string, subject *models.Subject) {
	s.cache.InvalidateStudent(ctx, studentID)
	if subject != nil && subject.InstructorID != nil {
		s.cache.InvalidateInstructor(ctx, *subject.InstructorID)
	}
}

func duplicateEnrollment() error {
	return appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this subject")
}
