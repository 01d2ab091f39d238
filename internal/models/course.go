package models

import "time"

// Course is a degree program such as "BS Computer Science".
type Course struct {
	ID          string    `db:"id"`
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CreateCourseRequest is the admin form for a new program.
type CreateCourseRequest struct {
	Code        string `form:"code" validate:"required,max=20"`
	Name        string `form:"name" validate:"required,max=200"`
	Description string `form:"description"`
}
