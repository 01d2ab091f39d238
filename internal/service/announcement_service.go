package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/validation"
)

// dashboardAnnouncementsLimit is the number of announcements shown on dashboards.
const dashboardAnnouncementsLimit = 5

type announcementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
	ListByCreator(ctx context.Context, userID string, limit int) ([]models.AnnouncementDetail, error)
	ListVisibleToStudent(ctx context.Context, studentID string, limit int) ([]models.AnnouncementDetail, error)
}

type subjectCatalog interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, error)
}

// AnnouncementService manages system and subject announcements.
type AnnouncementService struct {
	repo      announcementRepository
	subjects  subjectCatalog
	cache     CacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs AnnouncementService.
func NewAnnouncementService(repo announcementRepository, subjects subjectCatalog, cache CacheInvalidator, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &AnnouncementService{repo: repo, subjects: subjects, cache: cache, validator: validate, logger: logger}
}

// SubjectOptions lists the subjects user may attach announcements to.
func (s *AnnouncementService) SubjectOptions(ctx context.Context, user *models.CurrentUser) ([]models.SubjectDetail, error) {
	filter := models.SubjectFilter{}
	switch {
	case user.IsInstructor():
		filter.InstructorID = user.ID
	case user.IsAdmin():
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only instructors and administrators can manage announcements")
	}
	subjects, err := s.subjects.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Create publishes an announcement. Course announcements need a subject and
// system announcements must not carry one.
func (s *AnnouncementService) Create(ctx context.Context, user *models.CurrentUser, req models.AnnouncementRequest) (*models.Announcement, error) {
	if !user.HasRole(models.RoleInstructor, models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only instructors and administrators can create announcements")
	}
	req = trimAnnouncement(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}

	announcement := &models.Announcement{
		Title:     req.Title,
		Content:   req.Content,
		Type:      models.AnnouncementType(req.Type),
		CreatedBy: user.ID,
		IsActive:  req.Active(),
	}
	switch announcement.Type {
	case models.AnnouncementSystem:
		if req.SubjectID != "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "system-wide announcements should not have a subject selected")
		}
	case models.AnnouncementCourse:
		if req.SubjectID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "course-specific announcements must have a subject selected")
		}
		subjectID, err := s.resolveSubject(ctx, user, req.SubjectID)
		if err != nil {
			return nil, err
		}
		announcement.SubjectID = &subjectID
	}

	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	s.cache.InvalidateDashboards(ctx)
	return announcement, nil
}

// Get loads an announcement that user may edit.
func (s *AnnouncementService) Get(ctx context.Context, user *models.CurrentUser, id string) (*models.Announcement, error) {
	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	if announcement.CreatedBy != user.ID && !user.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only manage your own announcements")
	}
	return announcement, nil
}

// Update edits an announcement. Switching to system clears the subject; a
// course announcement without a newly chosen subject keeps its current one.
func (s *AnnouncementService) Update(ctx context.Context, user *models.CurrentUser, id string, req models.AnnouncementRequest) (*models.Announcement, error) {
	announcement, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	req = trimAnnouncement(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}

	announcement.Title = req.Title
	announcement.Content = req.Content
	announcement.Type = models.AnnouncementType(req.Type)
	announcement.IsActive = req.Active()
	switch announcement.Type {
	case models.AnnouncementSystem:
		announcement.SubjectID = nil
	case models.AnnouncementCourse:
		if req.SubjectID != "" {
			subjectID, err := s.resolveSubject(ctx, user, req.SubjectID)
			if err != nil {
				return nil, err
			}
			announcement.SubjectID = &subjectID
		}
		if announcement.SubjectID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "course-specific announcements must have a subject selected")
		}
	}

	if err := s.repo.Update(ctx, announcement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	s.cache.InvalidateDashboards(ctx)
	return announcement, nil
}

// Delete removes an announcement owned by user, or any announcement for admins.
func (s *AnnouncementService) Delete(ctx context.Context, user *models.CurrentUser, id string) error {
	announcement, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, announcement.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	s.cache.InvalidateDashboards(ctx)
	return nil
}

// ListMine returns announcements created by user. limit <= 0 returns all.
func (s *AnnouncementService) ListMine(ctx context.Context, user *models.CurrentUser, limit int) ([]models.AnnouncementDetail, error) {
	announcements, err := s.repo.ListByCreator(ctx, user.ID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, nil
}

// ListForStudent returns active system announcements and active announcements
// of subjects the student is enrolled in. limit <= 0 returns all.
func (s *AnnouncementService) ListForStudent(ctx context.Context, studentID string, limit int) ([]models.AnnouncementDetail, error) {
	announcements, err := s.repo.ListVisibleToStudent(ctx, studentID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, nil
}

// resolveSubject checks the subject exists and, for instructors, that they teach it.
func (s *AnnouncementService) resolveSubject(ctx context.Context, user *models.CurrentUser, subjectID string) (string, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrValidation, "invalid subject selected")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if user.IsInstructor() && !subject.OwnedBy(user.ID) {
		return "", appErrors.Clone(appErrors.ErrForbidden, "you can only create announcements for your own subjects")
	}
	return subject.ID, nil
}

func trimAnnouncement(req models.AnnouncementRequest) models.AnnouncementRequest {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	return req
}
