package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/internal/repository"
	"github.com/noah-isme/school-records/pkg/database"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/validation"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
}

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	UpdateInstructor(ctx context.Context, id string, instructorID *string) error
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type enrollmentLister interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
}

type gradeProvisioner interface {
	GetOrCreate(ctx context.Context, enrollmentID string) (*models.Grade, error)
}

type gpaLister interface {
	List(ctx context.Context) ([]models.GPARecordDetail, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CatalogService maintains courses and subjects and serves subject rosters.
type CatalogService struct {
	courses     courseRepository
	subjects    subjectRepository
	users       userDirectory
	enrollments enrollmentLister
	grades      gradeProvisioner
	gpa         gpaLister
	audit       auditWriter
	cache       CacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// CatalogServiceParams groups constructor dependencies.
type CatalogServiceParams struct {
	Courses     courseRepository
	Subjects    subjectRepository
	Users       userDirectory
	Enrollments enrollmentLister
	Grades      gradeProvisioner
	GPA         gpaLister
	Audit       auditWriter
	Cache       CacheInvalidator
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(params CatalogServiceParams) *CatalogService {
	validate := params.Validator
	if validate == nil {
		validate = validation.Default()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := params.Cache
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &CatalogService{
		courses:     params.Courses,
		subjects:    params.Subjects,
		users:       params.Users,
		enrollments: params.Enrollments,
		grades:      params.Grades,
		gpa:         params.GPA,
		audit:       params.Audit,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// ListCourses returns every program.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// CreateCourse adds a program. Codes are unique.
func (s *CatalogService) CreateCourse(ctx context.Context, actor *models.CurrentUser, req models.CreateCourseRequest) (*models.Course, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}
	course := &models.Course{Code: req.Code, Name: req.Name, Description: strings.TrimSpace(req.Description)}
	if err := s.courses.Create(ctx, course); err != nil {
		if constraint, ok := database.UniqueViolation(err); ok && constraint == repository.CourseCodeConstraint {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a course with this code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.record(ctx, actor, "course", course.ID, map[string]string{"code": course.Code, "name": course.Name})
	return course, nil
}

// ListSubjects returns subjects matching filter.
func (s *CatalogService) ListSubjects(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, error) {
	subjects, err := s.subjects.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// SubjectsFor lists the subjects an instructor teaches or a student is enrolled in.
func (s *CatalogService) SubjectsFor(ctx context.Context, user *models.CurrentUser) ([]models.SubjectDetail, error) {
	switch {
	case user.IsInstructor():
		return s.ListSubjects(ctx, models.SubjectFilter{InstructorID: user.ID})
	case user.IsStudent():
		return s.ListSubjects(ctx, models.SubjectFilter{StudentID: user.ID})
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
}

// CreateSubject adds a subject to a course, optionally assigning an instructor.
func (s *CatalogService) CreateSubject(ctx context.Context, actor *models.CurrentUser, req models.CreateSubjectRequest) (*models.Subject, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "select a valid course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	instructorID, err := s.resolveInstructor(ctx, req.InstructorID)
	if err != nil {
		return nil, err
	}

	subject := &models.Subject{
		Code:         req.Code,
		Name:         req.Name,
		Description:  strings.TrimSpace(req.Description),
		CourseID:     req.CourseID,
		Units:        req.Units,
		Semester:     models.Semester(req.Semester),
		InstructorID: instructorID,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		if constraint, ok := database.UniqueViolation(err); ok && constraint == repository.SubjectCodeConstraint {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a subject with this code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	if instructorID != nil {
		s.cache.InvalidateInstructor(ctx, *instructorID)
	}
	s.record(ctx, actor, "subject", subject.ID, map[string]string{"code": subject.Code, "course_id": subject.CourseID})
	return subject, nil
}

// AssignInstructor sets the instructor of a subject. A blank id clears it.
func (s *CatalogService) AssignInstructor(ctx context.Context, actor *models.CurrentUser, subjectID string, req models.AssignInstructorRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}
	subject, err := s.loadSubject(ctx, subjectID)
	if err != nil {
		return err
	}
	instructorID, err := s.resolveInstructor(ctx, req.InstructorID)
	if err != nil {
		return err
	}
	if err := s.subjects.UpdateInstructor(ctx, subject.ID, instructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign instructor")
	}

	affected := make([]string, 0, 2)
	if subject.InstructorID != nil {
		affected = append(affected, *subject.InstructorID)
	}
	if instructorID != nil {
		affected = append(affected, *instructorID)
	}
	s.cache.InvalidateInstructor(ctx, affected...)
	s.record(ctx, actor, "subject", subject.ID, map[string]string{"instructor_id": req.InstructorID})
	return nil
}

// SubjectStudents returns the enrolled students of a subject taught by user,
// creating blank grade rows for enrollments that have none.
func (s *CatalogService) SubjectStudents(ctx context.Context, user *models.CurrentUser, subjectID string) (*models.Subject, []models.SubjectStudent, error) {
	subject, err := s.loadSubject(ctx, subjectID)
	if err != nil {
		return nil, nil, err
	}
	if !subject.OwnedBy(user.ID) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "you can only view students of your own subjects")
	}

	enrollments, err := s.enrollments.List(ctx, models.EnrollmentFilter{SubjectID: subject.ID, Status: models.EnrollmentEnrolled})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled students")
	}
	students := make([]models.SubjectStudent, 0, len(enrollments))
	for _, enrollment := range enrollments {
		grade, err := s.grades.GetOrCreate(ctx, enrollment.ID)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
		}
		students = append(students, models.SubjectStudent{Enrollment: enrollment, Grade: *grade})
	}
	return subject, students, nil
}

// AdminOverview gathers the catalog, enrollments, GPA records and users for
// the admin page.
func (s *CatalogService) AdminOverview(ctx context.Context) (*models.AdminOverview, error) {
	var (
		overview models.AdminOverview
		err      error
	)
	if overview.Courses, err = s.courses.List(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if overview.Subjects, err = s.subjects.List(ctx, models.SubjectFilter{}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if overview.Enrollments, err = s.enrollments.List(ctx, models.EnrollmentFilter{}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if overview.GPARecords, err = s.gpa.List(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list gpa records")
	}
	if overview.Students, err = s.users.ListByRole(ctx, models.RoleStudent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if overview.Instructors, err = s.users.ListByRole(ctx, models.RoleInstructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return &overview, nil
}

func (s *CatalogService) loadSubject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// resolveInstructor checks id belongs to an instructor. Blank resolves to nil.
func (s *CatalogService) resolveInstructor(ctx context.Context, id string) (*string, error) {
	if id == "" {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "select a valid instructor")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if user.Role != models.RoleInstructor {
		return nil, appErrors.Clone(appErrors.ErrValidation, "selected user is not an instructor")
	}
	return &user.ID, nil
}

func (s *CatalogService) record(ctx context.Context, actor *models.CurrentUser, resource, resourceID string, values map[string]string) {
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionCatalogChange, resource, resourceID, values)
}

// recordAudit writes an audit row, logging instead of failing the request.
func recordAudit(ctx context.Context, w auditWriter, logger *zap.Logger, actor *models.CurrentUser, action, resource, resourceID string, values interface{}) {
	if w == nil {
		return
	}
	payload, err := json.Marshal(values)
	if err != nil {
		logger.Warn("failed to encode audit values", zap.String("action", action), zap.Error(err))
		payload = nil
	}
	log := &models.AuditLog{Action: action, Resource: resource, NewValues: string(payload)}
	if actor != nil {
		log.UserID = &actor.ID
	}
	if resourceID != "" {
		log.ResourceID = &resourceID
	}
	if err := w.CreateAuditLog(ctx, log); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.String("resource", resource), zap.Error(err))
	}
}
