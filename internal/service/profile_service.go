package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/internal/repository"
	"github.com/noah-isme/school-records/pkg/database"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/validation"
)

// maxIdentifierAttempts bounds the insert-with-retry loops for generated ids.
const maxIdentifierAttempts = 5

type profileRepository interface {
	FindStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error)
	FindInstructorProfile(ctx context.Context, userID string) (*models.InstructorProfile, error)
	CountStudentProfiles(ctx context.Context) (int, error)
	MaxEmployeeNumber(ctx context.Context) (int, error)
	CreateStudentProfile(ctx context.Context, profile *models.StudentProfile) error
	CreateInstructorProfile(ctx context.Context, profile *models.InstructorProfile) error
}

type profileUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateProfilePicture(ctx context.Context, id string, picture *string) error
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type mediaStorage interface {
	SaveStream(name string, r io.Reader, limit int64) (string, error)
	Delete(name string) error
	Path(name string) (string, error)
}

// MediaConfig limits accepted profile pictures.
type MediaConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// ProfileService manages profile fields, pictures and role profile completion.
type ProfileService struct {
	profiles  profileRepository
	users     profileUserRepository
	courses   courseReader
	media     mediaStorage
	validator *validator.Validate
	logger    *zap.Logger
	cfg       MediaConfig
	now       func() time.Time
}

// NewProfileService constructs a ProfileService.
func NewProfileService(profiles profileRepository, users profileUserRepository, courses courseReader, media mediaStorage, cfg MediaConfig, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 2 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	return &ProfileService{
		profiles:  profiles,
		users:     users,
		courses:   courses,
		media:     media,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// User returns the stored account of the current user.
func (s *ProfileService) User(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// StudentProfile returns the student profile of userID.
func (s *ProfileService) StudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	profile, err := s.profiles.FindStudentProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return profile, nil
}

// InstructorProfile returns the instructor profile of userID.
func (s *ProfileService) InstructorProfile(ctx context.Context, userID string) (*models.InstructorProfile, error) {
	profile, err := s.profiles.FindInstructorProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor profile")
	}
	return profile, nil
}

// CompleteStudentProfile records the chosen program and assigns a student id
// of the form {year}{sequence:06d}.
func (s *ProfileService) CompleteStudentProfile(ctx context.Context, user *models.CurrentUser, req models.CompleteStudentProfileRequest) (*models.StudentProfile, error) {
	if !user.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}
	if err := s.ensureNoStudentProfile(ctx, user.ID); err != nil {
		return nil, err
	}

	course, err := s.courses.FindByID(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "select a valid program")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	count, err := s.profiles.CountStudentProfiles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}

	today := s.now().UTC()
	profile := &models.StudentProfile{
		UserID:       user.ID,
		ProgramID:    &course.ID,
		ProgramName:  &course.Name,
		EnrolledDate: today,
	}
	for attempt := 1; attempt <= maxIdentifierAttempts; attempt++ {
		profile.ID = ""
		profile.StudentID = fmt.Sprintf("%d%06d", today.Year(), count+attempt)
		err = s.profiles.CreateStudentProfile(ctx, profile)
		if err == nil {
			return profile, nil
		}
		constraint, unique := database.UniqueViolation(err)
		if !unique {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student profile")
		}
		if constraint == repository.StudentUserConstraint {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student profile already completed")
		}
		s.logger.Info("student id taken, retrying", zap.String("student_id", profile.StudentID), zap.Int("attempt", attempt))
	}
	return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "could not allocate a student id, please try again")
}

// CompleteInstructorProfile assigns an employee id INST-NNN and today's hire date.
func (s *ProfileService) CompleteInstructorProfile(ctx context.Context, user *models.CurrentUser) (*models.InstructorProfile, error) {
	if !user.IsInstructor() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if _, err := s.profiles.FindInstructorProfile(ctx, user.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "instructor profile already completed")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor profile")
	}

	last, err := s.profiles.MaxEmployeeNumber(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read employee ids")
	}

	now := s.now().UTC()
	profile := &models.InstructorProfile{
		UserID:   user.ID,
		HireDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	for attempt := 1; attempt <= maxIdentifierAttempts; attempt++ {
		profile.ID = ""
		profile.EmployeeID = fmt.Sprintf("INST-%03d", last+attempt)
		err = s.profiles.CreateInstructorProfile(ctx, profile)
		if err == nil {
			return profile, nil
		}
		constraint, unique := database.UniqueViolation(err)
		if !unique {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor profile")
		}
		if constraint == repository.InstructorUserConstraint {
			return nil, appErrors.Clone(appErrors.ErrConflict, "instructor profile already completed")
		}
		s.logger.Info("employee id taken, retrying", zap.String("employee_id", profile.EmployeeID), zap.Int("attempt", attempt))
	}
	return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "could not allocate an employee id, please try again")
}

// UpdateProfile saves the editable profile fields of the current user.
func (s *ProfileService) UpdateProfile(ctx context.Context, current *models.CurrentUser, req models.UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, validation.Message(err))
	}
	user, err := s.User(ctx, current.ID)
	if err != nil {
		return nil, err
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Email = strings.TrimSpace(req.Email)
	user.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	user.Address = strings.TrimSpace(req.Address)
	user.DateOfBirth = nil
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date of birth must be a valid date")
		}
		user.DateOfBirth = &dob
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return user, nil
}

// UpdatePicture stores an uploaded image and replaces the previous picture.
func (s *ProfileService) UpdatePicture(ctx context.Context, current *models.CurrentUser, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "choose an image to upload")
	}
	if file.Size > s.cfg.MaxFileSizeBytes {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image must be at most %d KB", s.cfg.MaxFileSizeBytes/1024))
	}

	src, err := file.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer src.Close() //nolint:errcheck

	mime, err := mimetype.DetectReader(src)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	if !s.allowedMIME(mime.String()) {
		return "", appErrors.Clone(appErrors.ErrValidation, "upload a valid image (jpeg, png, gif or webp)")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}

	user, err := s.User(ctx, current.ID)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("profile/%s/%s%s", user.ID, uuid.NewString(), mime.Extension())
	stored, err := s.media.SaveStream(name, src, s.cfg.MaxFileSizeBytes)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store picture")
	}
	if err := s.users.UpdateProfilePicture(ctx, user.ID, &stored); err != nil {
		_ = s.media.Delete(stored)
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update picture")
	}
	if user.ProfilePicture != nil && *user.ProfilePicture != stored {
		s.removeFile(*user.ProfilePicture)
	}
	return stored, nil
}

// RemovePicture clears the picture of the current user. It reports whether a
// picture was removed.
func (s *ProfileService) RemovePicture(ctx context.Context, current *models.CurrentUser) (bool, error) {
	user, err := s.User(ctx, current.ID)
	if err != nil {
		return false, err
	}
	if user.ProfilePicture == nil {
		return false, nil
	}
	if err := s.users.UpdateProfilePicture(ctx, user.ID, nil); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove picture")
	}
	s.removeFile(*user.ProfilePicture)
	return true, nil
}

// PicturePath returns the on-disk path of a user's stored picture.
func (s *ProfileService) PicturePath(ctx context.Context, userID string) (string, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ProfilePicture == nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no profile picture")
	}
	path, err := s.media.Path(*user.ProfilePicture)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no profile picture")
	}
	return path, nil
}

func (s *ProfileService) ensureNoStudentProfile(ctx context.Context, userID string) error {
	_, err := s.profiles.FindStudentProfile(ctx, userID)
	if err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "student profile already completed")
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
}

func (s *ProfileService) allowedMIME(detected string) bool {
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, detected) {
			return true
		}
	}
	return false
}

func (s *ProfileService) removeFile(name string) {
	if err := s.media.Delete(name); err != nil {
		s.logger.Warn("failed to delete stored picture", zap.String("name", name), zap.Error(err))
	}
}
