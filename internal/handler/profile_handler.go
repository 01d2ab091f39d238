package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/response"
)

const (
	profilePath           = "/accounts/profile"
	studentProfilePath    = "/accounts/profile/student"
	instructorProfilePath = "/accounts/profile/instructor"
)

// Profile form actions.
const (
	actionUpdateProfile  = "update_profile"
	actionRemovePhoto    = "remove_photo"
	actionChangePassword = "change_password"
	actionDeleteAccount  = "delete_account"
)

type profileService interface {
	User(ctx context.Context, userID string) (*models.User, error)
	StudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error)
	InstructorProfile(ctx context.Context, userID string) (*models.InstructorProfile, error)
	CompleteStudentProfile(ctx context.Context, user *models.CurrentUser, req models.CompleteStudentProfileRequest) (*models.StudentProfile, error)
	CompleteInstructorProfile(ctx context.Context, user *models.CurrentUser) (*models.InstructorProfile, error)
	UpdateProfile(ctx context.Context, current *models.CurrentUser, req models.UpdateProfileRequest) (*models.User, error)
	UpdatePicture(ctx context.Context, current *models.CurrentUser, file *multipart.FileHeader) (string, error)
	RemovePicture(ctx context.Context, current *models.CurrentUser) (bool, error)
	PicturePath(ctx context.Context, userID string) (string, error)
}

type accountService interface {
	ChangePassword(ctx context.Context, current *models.CurrentUser, req models.ChangePasswordRequest, meta models.RequestMeta) error
	DeleteAccount(ctx context.Context, current *models.CurrentUser, req models.DeleteAccountRequest, meta models.RequestMeta) error
}

type courseLister interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// ProfileHandler serves the profile page and role profile completion.
type ProfileHandler struct {
	profiles profileService
	accounts accountService
	courses  courseLister
	session  middleware.SessionConfig
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(profiles profileService, accounts accountService, courses courseLister, session middleware.SessionConfig) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, accounts: accounts, courses: courses, session: session}
}

// Show godoc
// @Summary Profile page
// @Tags Accounts
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /accounts/profile [get]
func (h *ProfileHandler) Show(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	account, err := h.profiles.User(ctx, user.ID)
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}

	data := gin.H{"Profile": account}
	switch user.Role {
	case models.RoleStudent:
		profile, err := h.profiles.StudentProfile(ctx, user.ID)
		if err != nil && !errors.Is(err, appErrors.ErrNotFound) {
			response.Internal(c, err)
			return
		}
		if profile != nil {
			data["StudentProfile"] = profile
		} else {
			data["NeedsCompletion"] = true
			data["CompletionURL"] = studentProfilePath
		}
	case models.RoleInstructor:
		profile, err := h.profiles.InstructorProfile(ctx, user.ID)
		if err != nil && !errors.Is(err, appErrors.ErrNotFound) {
			response.Internal(c, err)
			return
		}
		if profile != nil {
			data["InstructorProfile"] = profile
		} else {
			data["NeedsCompletion"] = true
			data["CompletionURL"] = instructorProfilePath
		}
	}
	render(c, "profile.html", "My profile", data)
}

// Update godoc
// @Summary Profile actions
// @Description Dispatches on action: update_profile, remove_photo, change_password, delete_account
// @Tags Accounts
// @Accept multipart/form-data
// @Param action formData string true "Action"
// @Param profile_picture formData file false "New profile picture"
// @Success 302 {string} string "Redirect"
// @Router /accounts/profile [post]
func (h *ProfileHandler) Update(c *gin.Context) {
	switch c.PostForm("action") {
	case actionUpdateProfile:
		h.updateProfile(c)
	case actionRemovePhoto:
		h.removePhoto(c)
	case actionChangePassword:
		h.changePassword(c)
	case actionDeleteAccount:
		h.deleteAccount(c)
	default:
		response.Redirect(c, profilePath)
	}
}

func (h *ProfileHandler) updateProfile(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	if file, err := c.FormFile("profile_picture"); err == nil {
		if _, err := h.profiles.UpdatePicture(ctx, user, file); err != nil {
			response.Fail(c, err, profilePath)
			return
		}
		response.Success(c, profilePath, "Profile picture updated successfully!")
		return
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		response.Fail(c, appErrors.Clone(appErrors.ErrValidation, "upload could not be read"), profilePath)
		return
	}

	if _, ok := c.GetPostForm("first_name"); !ok {
		response.Redirect(c, profilePath)
		return
	}
	var req models.UpdateProfileRequest
	if !bindForm(c, &req, profilePath) {
		return
	}
	if _, err := h.profiles.UpdateProfile(ctx, user, req); err != nil {
		response.Fail(c, err, profilePath)
		return
	}
	response.Success(c, profilePath, "Profile updated successfully!")
}

func (h *ProfileHandler) removePhoto(c *gin.Context) {
	removed, err := h.profiles.RemovePicture(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Fail(c, err, profilePath)
		return
	}
	if removed {
		response.Success(c, profilePath, "Profile picture removed successfully!")
		return
	}
	response.Redirect(c, profilePath)
}

func (h *ProfileHandler) changePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bindForm(c, &req, profilePath) {
		return
	}
	if err := h.accounts.ChangePassword(c.Request.Context(), currentUser(c), req, requestMeta(c)); err != nil {
		response.Fail(c, err, profilePath)
		return
	}
	response.Success(c, profilePath, "Password changed successfully!")
}

func (h *ProfileHandler) deleteAccount(c *gin.Context) {
	var req models.DeleteAccountRequest
	if !bindForm(c, &req, profilePath) {
		return
	}
	if err := h.accounts.DeleteAccount(c.Request.Context(), currentUser(c), req, requestMeta(c)); err != nil {
		response.Fail(c, err, profilePath)
		return
	}
	middleware.ClearSessionCookie(c, h.session)
	response.Success(c, loginPath, "Your account has been deleted")
}

// StudentCompletionPage godoc
// @Summary Student profile completion form
// @Tags Accounts
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /accounts/profile/student [get]
func (h *ProfileHandler) StudentCompletionPage(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)
	if done, err := h.hasStudentProfile(ctx, user.ID); err != nil {
		response.Internal(c, err)
		return
	} else if done {
		response.Redirect(c, middleware.DashboardPath)
		return
	}

	courses, err := h.courses.ListCourses(ctx)
	if err != nil {
		response.Internal(c, err)
		return
	}
	render(c, "complete_student_profile.html", "Complete profile", gin.H{"Courses": courses})
}

// CompleteStudent godoc
// @Summary Complete student profile
// @Description Stores the chosen program and generates the student ID
// @Tags Accounts
// @Accept x-www-form-urlencoded
// @Param program formData string true "Course ID"
// @Success 302 {string} string "Redirect to the dashboard"
// @Router /accounts/profile/student [post]
func (h *ProfileHandler) CompleteStudent(c *gin.Context) {
	var req models.CompleteStudentProfileRequest
	if !bindForm(c, &req, studentProfilePath) {
		return
	}
	profile, err := h.profiles.CompleteStudentProfile(c.Request.Context(), currentUser(c), req)
	if err != nil {
		response.Fail(c, err, studentProfilePath)
		return
	}
	response.Success(c, middleware.DashboardPath, "Profile completed successfully! Your Student ID is: "+profile.StudentID)
}

// InstructorCompletionPage godoc
// @Summary Instructor profile completion form
// @Tags Accounts
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /accounts/profile/instructor [get]
func (h *ProfileHandler) InstructorCompletionPage(c *gin.Context) {
	_, err := h.profiles.InstructorProfile(c.Request.Context(), currentUser(c).ID)
	switch {
	case err == nil:
		response.Redirect(c, middleware.DashboardPath)
	case errors.Is(err, appErrors.ErrNotFound):
		render(c, "complete_instructor_profile.html", "Complete profile", nil)
	default:
		response.Internal(c, err)
	}
}

// CompleteInstructor godoc
// @Summary Complete instructor profile
// @Description Generates the employee ID and hire date
// @Tags Accounts
// @Success 302 {string} string "Redirect to the dashboard"
// @Router /accounts/profile/instructor [post]
func (h *ProfileHandler) CompleteInstructor(c *gin.Context) {
	profile, err := h.profiles.CompleteInstructorProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Fail(c, err, instructorProfilePath)
		return
	}
	response.Success(c, middleware.DashboardPath, "Profile completed! Your Employee ID is: "+profile.EmployeeID)
}

// Picture godoc
// @Summary Profile picture
// @Tags Accounts
// @Produce image/png
// @Param id path string true "User ID"
// @Success 200 {file} file "Image"
// @Router /media/profile/{id} [get]
func (h *ProfileHandler) Picture(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	path, err := h.profiles.PicturePath(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.File(path)
}

func (h *ProfileHandler) hasStudentProfile(ctx context.Context, userID string) (bool, error) {
	_, err := h.profiles.StudentProfile(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, appErrors.ErrNotFound) {
		return false, nil
	}
	return false, err
}
