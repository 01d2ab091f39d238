package models

import (
	"strings"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instructor"
	RoleStudent    UserRole = "student"
)

// Label returns the display name of the role.
func (r UserRole) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleInstructor:
		return "Instructor"
	case RoleStudent:
		return "Student"
	default:
		return string(r)
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID             string     `db:"id"`
	Username       string     `db:"username"`
	Email          string     `db:"email"`
	PasswordHash   string     `db:"password_hash"`
	FirstName      string     `db:"first_name"`
	LastName       string     `db:"last_name"`
	Role           UserRole   `db:"role"`
	PhoneNumber    string     `db:"phone_number"`
	ProfilePicture *string    `db:"profile_picture"`
	DateOfBirth    *time.Time `db:"date_of_birth"`
	Address        string     `db:"address"`
	Active         bool       `db:"active"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	return displayName(u.FirstName, u.LastName, u.Username)
}

// StudentProfile holds the student number and chosen program.
type StudentProfile struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	StudentID    string    `db:"student_id"`
	ProgramID    *string   `db:"program_id"`
	ProgramName  *string   `db:"program_name"`
	EnrolledDate time.Time `db:"enrolled_date"`
}

// InstructorProfile holds the employee number and hire date.
type InstructorProfile struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	EmployeeID string    `db:"employee_id"`
	HireDate   time.Time `db:"hire_date"`
}

// CurrentUser is the authenticated identity attached to a request.
type CurrentUser struct {
	ID             string
	Username       string
	Email          string
	FirstName      string
	LastName       string
	Role           UserRole
	ProfilePicture *string
	SessionID      string
}

// NewCurrentUser projects a stored user into a request identity.
func NewCurrentUser(u *User, sessionID string) *CurrentUser {
	return &CurrentUser{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		SessionID:      sessionID,
	}
}

func (c *CurrentUser) IsAdmin() bool      { return c != nil && c.Role == RoleAdmin }
func (c *CurrentUser) IsInstructor() bool { return c != nil && c.Role == RoleInstructor }
func (c *CurrentUser) IsStudent() bool    { return c != nil && c.Role == RoleStudent }

// HasRole reports whether the user holds any of roles.
func (c *CurrentUser) HasRole(roles ...UserRole) bool {
	if c == nil {
		return false
	}
	for _, role := range roles {
		if c.Role == role {
			return true
		}
	}
	return false
}

// FullName joins first and last name, falling back to the username.
func (c *CurrentUser) FullName() string {
	return displayName(c.FirstName, c.LastName, c.Username)
}

// RegisterRequest is the self sign-up form.
type RegisterRequest struct {
	Username        string   `form:"username" validate:"required,max=150,username"`
	Email           string   `form:"email" validate:"omitempty,email,max=254"`
	FirstName       string   `form:"first_name" label:"first name" validate:"max=150"`
	LastName        string   `form:"last_name" label:"last name" validate:"max=150"`
	Role            UserRole `form:"role" validate:"required,oneof=student instructor"`
	Password        string   `form:"password" validate:"required,min=8"`
	PasswordConfirm string   `form:"password_confirm" label:"password confirmation" validate:"required"`
}

// UpdateProfileRequest edits the basic profile fields.
type UpdateProfileRequest struct {
	FirstName   string `form:"first_name" label:"first name" validate:"max=150"`
	LastName    string `form:"last_name" label:"last name" validate:"max=150"`
	Email       string `form:"email" validate:"omitempty,email,max=254"`
	PhoneNumber string `form:"phone_number" label:"Phone number" validate:"omitempty,phone"`
	Address     string `form:"address"`
	DateOfBirth string `form:"date_of_birth" label:"date of birth" validate:"omitempty,datetime=2006-01-02"`
}

// CompleteStudentProfileRequest selects the student's program.
type CompleteStudentProfileRequest struct {
	ProgramID string `form:"program" label:"program" validate:"required,uuid"`
}

func displayName(first, last, fallback string) string {
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return fallback
	}
	return name
}
