package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Records",
        "description": "Server rendered school records site: accounts, subjects, grades, GPA and announcements",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Accounts",
            "description": "Registration and sessions"
        },
        {
            "name": "Profile",
            "description": "Profile maintenance and completion"
        },
        {
            "name": "Dashboard",
            "description": "Role landing pages"
        },
        {
            "name": "Subjects",
            "description": "Subject listings and rosters"
        },
        {
            "name": "Grades",
            "description": "Grade entry, listing and transcript export"
        },
        {
            "name": "Announcements",
            "description": "System and course announcements"
        },
        {
            "name": "Admin",
            "description": "Catalog maintenance"
        },
        {
            "name": "Ops",
            "description": "Liveness, readiness and metrics"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Health check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Readiness check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Database unavailable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "Metrics exposition"
                    }
                }
            }
        },
        "/accounts/login": {
            "get": {
                "tags": [
                    "Accounts"
                ],
                "summary": "Login form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "next",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "produces": [
                    "text/html"
                ]
            },
            "post": {
                "tags": [
                    "Accounts"
                ],
                "summary": "Log in",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "username",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "password",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "next",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/accounts/register": {
            "get": {
                "tags": [
                    "Accounts"
                ],
                "summary": "Registration form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            },
            "post": {
                "tags": [
                    "Accounts"
                ],
                "summary": "Create a student or instructor account",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "username",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "first_name",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "last_name",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "role",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "password",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "password_confirm",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/accounts/logout": {
            "post": {
                "tags": [
                    "Accounts"
                ],
                "summary": "Log out",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                }
            }
        },
        "/accounts/profile": {
            "get": {
                "tags": [
                    "Profile"
                ],
                "summary": "Profile page",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            },
            "post": {
                "tags": [
                    "Profile"
                ],
                "summary": "Update profile, picture, password or delete the account",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "action",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "profile_picture",
                        "in": "formData",
                        "type": "file"
                    },
                    {
                        "name": "first_name",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "last_name",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "phone_number",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "address",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "date_of_birth",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "old_password",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "new_password",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "confirm_password",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "password_confirm",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    }
                ],
                "consumes": [
                    "multipart/form-data",
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/accounts/profile/student": {
            "get": {
                "tags": [
                    "Profile"
                ],
                "summary": "Student profile completion form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            },
            "post": {
                "tags": [
                    "Profile"
                ],
                "summary": "Complete the student profile",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "program",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/accounts/profile/instructor": {
            "get": {
                "tags": [
                    "Profile"
                ],
                "summary": "Instructor profile completion form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            },
            "post": {
                "tags": [
                    "Profile"
                ],
                "summary": "Complete the instructor profile",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                }
            }
        },
        "/media/profile/{id}": {
            "get": {
                "tags": [
                    "Profile"
                ],
                "summary": "Profile picture",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "User ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Image"
                    },
                    "404": {
                        "description": "No picture"
                    }
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Role based dashboard redirect",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                }
            }
        },
        "/dashboard/student": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Student dashboard",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            }
        },
        "/dashboard/instructor": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Instructor dashboard",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            }
        },
        "/accounts/grades": {
            "get": {
                "tags": [
                    "Grades"
                ],
                "summary": "All grades of the current student",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            }
        },
        "/accounts/grades/export": {
            "get": {
                "tags": [
                    "Grades"
                ],
                "summary": "Export the transcript",
                "responses": {
                    "302": {
                        "description": "Redirect to the signed download"
                    }
                },
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf"
                        ]
                    }
                ]
            }
        },
        "/downloads/{token}": {
            "get": {
                "tags": [
                    "Grades"
                ],
                "summary": "Download a signed export",
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Signed token"
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "responses": {
                    "200": {
                        "description": "File"
                    },
                    "404": {
                        "description": "Invalid or expired token"
                    }
                }
            }
        },
        "/accounts/announcements": {
            "get": {
                "tags": [
                    "Announcements"
                ],
                "summary": "Announcements visible to the student",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            }
        },
        "/courses/subjects": {
            "get": {
                "tags": [
                    "Subjects"
                ],
                "summary": "Taught or enrolled subjects",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            }
        },
        "/courses/subject/{id}/students": {
            "get": {
                "tags": [
                    "Subjects"
                ],
                "summary": "Students enrolled in a subject",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Subject ID"
                    }
                ],
                "produces": [
                    "text/html"
                ]
            }
        },
        "/grades/edit/{id}": {
            "get": {
                "tags": [
                    "Grades"
                ],
                "summary": "Grade edit form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Grade ID"
                    }
                ],
                "produces": [
                    "text/html"
                ]
            },
            "post": {
                "tags": [
                    "Grades"
                ],
                "summary": "Save grade components",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Grade ID"
                    },
                    {
                        "name": "prelim_grade",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "midterm_grade",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "final_grade",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "prelim_weight",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "midterm_weight",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "final_weight",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "remarks",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/announcements/create": {
            "get": {
                "tags": [
                    "Announcements"
                ],
                "summary": "New announcement form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            },
            "post": {
                "tags": [
                    "Announcements"
                ],
                "summary": "Create an announcement",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "title",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "content",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "announcement_type",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "subject",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "is_active",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/announcements/mine": {
            "get": {
                "tags": [
                    "Announcements"
                ],
                "summary": "Own announcements",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            }
        },
        "/announcements/edit/{id}": {
            "get": {
                "tags": [
                    "Announcements"
                ],
                "summary": "Edit announcement form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Announcement ID"
                    }
                ],
                "produces": [
                    "text/html"
                ]
            },
            "post": {
                "tags": [
                    "Announcements"
                ],
                "summary": "Update an announcement",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Announcement ID"
                    },
                    {
                        "name": "title",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "content",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "announcement_type",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "subject",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "is_active",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/announcements/delete/{id}": {
            "post": {
                "tags": [
                    "Announcements"
                ],
                "summary": "Delete an announcement",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Announcement ID"
                    }
                ]
            }
        },
        "/admin": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Catalog overview",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "produces": [
                    "text/html"
                ]
            }
        },
        "/admin/courses": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Create a course",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "code",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "name",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "description",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/admin/subjects": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Create a subject",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "code",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "name",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "description",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "course_id",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "units",
                        "in": "formData",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "semester",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "instructor_id",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/admin/subjects/{id}/instructor": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Assign or clear the subject instructor",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Subject ID"
                    },
                    {
                        "name": "instructor_id",
                        "in": "formData",
                        "type": "string",
                        "required": false
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/admin/enrollments": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Enroll a student",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "student_id",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "subject_id",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/admin/enrollments/{id}/status": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Change an enrollment status",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Enrollment ID"
                    },
                    {
                        "name": "status",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/admin/gpa": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Compute and store a term GPA",
                "responses": {
                    "302": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "student_id",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "semester",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "academic_year",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
