package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

type studentGradeReader interface {
	Recent(ctx context.Context, studentID string) ([]models.GradeDetail, error)
	StudentGPA(ctx context.Context, studentID string) (decimal.Decimal, error)
}

type announcementFeed interface {
	ListForStudent(ctx context.Context, studentID string, limit int) ([]models.AnnouncementDetail, error)
	ListMine(ctx context.Context, user *models.CurrentUser, limit int) ([]models.AnnouncementDetail, error)
}

type instructorStudentCounter interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	CountStudentsByInstructor(ctx context.Context, instructorID string) (int, error)
}

type subjectLister interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the student and instructor landing pages.
type DashboardService struct {
	enrollments   instructorStudentCounter
	subjects      subjectLister
	grades        studentGradeReader
	announcements announcementFeed
	cache         *CacheService
	logger        *zap.Logger
	cfg           DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Enrollments   instructorStudentCounter
	Subjects      subjectLister
	Grades        studentGradeReader
	Announcements announcementFeed
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		enrollments:   params.Enrollments,
		subjects:      params.Subjects,
		grades:        params.Grades,
		announcements: params.Announcements,
		cache:         params.Cache,
		logger:        logger,
		cfg:           cfg,
	}
}

// Student returns the dashboard of a student and whether it came from cache.
func (s *DashboardService) Student(ctx context.Context, user *models.CurrentUser) (*models.StudentDashboard, bool, error) {
	if !user.IsStudent() {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	key := studentDashboardKey(user.ID)
	var cached models.StudentDashboard
	if s.tryCache(ctx, key, &cached) {
		return &cached, true, nil
	}

	enrollments, err := s.enrollments.List(ctx, models.EnrollmentFilter{StudentID: user.ID, Status: models.EnrollmentEnrolled})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	grades, err := s.grades.Recent(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	gpa, err := s.grades.StudentGPA(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	announcements, err := s.announcements.ListForStudent(ctx, user.ID, dashboardAnnouncementsLimit)
	if err != nil {
		return nil, false, err
	}

	dashboard := &models.StudentDashboard{
		Enrollments:      enrollments,
		RecentGrades:     grades,
		GPA:              gpa,
		Announcements:    announcements,
		TotalEnrollments: len(enrollments),
	}
	s.persistCache(ctx, key, dashboard)
	return dashboard, false, nil
}

// Instructor returns the dashboard of an instructor and whether it came from cache.
func (s *DashboardService) Instructor(ctx context.Context, user *models.CurrentUser) (*models.InstructorDashboard, bool, error) {
	if !user.IsInstructor() {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	key := instructorDashboardKey(user.ID)
	var cached models.InstructorDashboard
	if s.tryCache(ctx, key, &cached) {
		return &cached, true, nil
	}

	subjects, err := s.subjects.List(ctx, models.SubjectFilter{InstructorID: user.ID})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	students, err := s.enrollments.CountStudentsByInstructor(ctx, user.ID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	announcements, err := s.announcements.ListMine(ctx, user, dashboardAnnouncementsLimit)
	if err != nil {
		return nil, false, err
	}

	dashboard := &models.InstructorDashboard{
		Subjects:      subjects,
		TotalSubjects: len(subjects),
		TotalStudents: students,
		Announcements: announcements,
	}
	s.persistCache(ctx, key, dashboard)
	return dashboard, false, nil
}

// tryCache loads key into dest. Cache failures degrade to a miss.
func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		return false
	}
	return hit
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
