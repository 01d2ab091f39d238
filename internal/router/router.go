// Package router assembles the gin engine serving the school records site.
package router

import (
	"context"
	"html/template"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/handler"
	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/internal/service"
	"github.com/noah-isme/school-records/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-records/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-records/pkg/middleware/requestid"
	"github.com/noah-isme/school-records/pkg/response"
)

// flashSessionName is the cookie holding flashed messages.
const flashSessionName = "records_flash"

// Authenticator resolves a session cookie into the current user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.CurrentUser, error)
}

// Config carries everything the router wires together.
type Config struct {
	Templates    *template.Template
	Logger       *zap.Logger
	Metrics      *service.MetricsService
	Auth         Authenticator
	Session      middleware.SessionConfig
	FlashSecret  string
	AllowOrigins []string
	EnableDocs   bool

	AuthHandler         *handler.AuthHandler
	ProfileHandler      *handler.ProfileHandler
	DashboardHandler    *handler.DashboardHandler
	SubjectHandler      *handler.SubjectHandler
	GradeHandler        *handler.GradeHandler
	ExportHandler       *handler.ExportHandler
	AnnouncementHandler *handler.AnnouncementHandler
	AdminHandler        *handler.AdminHandler
	MetricsHandler      *handler.MetricsHandler
}

// New builds the engine with the shared middleware chain and every route.
func New(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	if cfg.Templates != nil {
		r.SetHTMLTemplate(cfg.Templates)
	}

	// Ops endpoints skip the session chain.
	if cfg.MetricsHandler != nil {
		r.GET("/health", cfg.MetricsHandler.Health)
		r.GET("/ready", cfg.MetricsHandler.Ready)
		r.GET("/metrics", cfg.MetricsHandler.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	store := cookie.NewStore([]byte(cfg.FlashSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, Secure: cfg.Session.Secure})
	site := r.Group("/")
	site.Use(sessions.Sessions(flashSessionName, store))
	if cfg.Auth != nil {
		site.Use(middleware.Session(cfg.Auth, cfg.Session, cfg.Logger))
	}

	r.NoRoute(sessions.Sessions(flashSessionName, store), func(c *gin.Context) {
		response.NotFound(c, "")
	})

	site.GET("/", func(c *gin.Context) {
		response.Redirect(c, middleware.DashboardPath)
	})

	registerAccountRoutes(site, cfg)
	registerCourseRoutes(site, cfg)
	registerAdminRoutes(site, cfg)

	return r
}

func registerAccountRoutes(site *gin.RouterGroup, cfg Config) {
	if h := cfg.AuthHandler; h != nil {
		anonymous := site.Group("/accounts", middleware.RedirectAuthenticated())
		anonymous.GET("/login", h.LoginPage)
		anonymous.POST("/login", h.Login)
		anonymous.GET("/register", h.RegisterPage)
		anonymous.POST("/register", h.Register)

		site.POST("/accounts/logout", middleware.RequireLogin(), h.Logout)
	}

	authed := site.Group("/", middleware.RequireLogin())
	student := site.Group("/", middleware.RequireRoles(models.RoleStudent))
	instructor := site.Group("/", middleware.RequireRoles(models.RoleInstructor))

	if h := cfg.DashboardHandler; h != nil {
		authed.GET("/dashboard", h.Index)
		student.GET("/dashboard/student", h.Student)
		instructor.GET("/dashboard/instructor", h.Instructor)
	}

	if h := cfg.ProfileHandler; h != nil {
		authed.GET("/accounts/profile", h.Show)
		authed.POST("/accounts/profile", h.Update)
		authed.GET("/media/profile/:id", h.Picture)
		student.GET("/accounts/profile/student", h.StudentCompletionPage)
		student.POST("/accounts/profile/student", h.CompleteStudent)
		instructor.GET("/accounts/profile/instructor", h.InstructorCompletionPage)
		instructor.POST("/accounts/profile/instructor", h.CompleteInstructor)
	}

	if h := cfg.GradeHandler; h != nil {
		student.GET("/accounts/grades", h.All)
	}
	if h := cfg.ExportHandler; h != nil {
		student.GET("/accounts/grades/export", h.Transcript)
		authed.GET("/downloads/:token", h.Download)
	}
	if h := cfg.AnnouncementHandler; h != nil {
		student.GET("/accounts/announcements", h.StudentFeed)
	}
}

func registerCourseRoutes(site *gin.RouterGroup, cfg Config) {
	instructor := site.Group("/", middleware.RequireRoles(models.RoleInstructor))
	staff := site.Group("/announcements", middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin))

	if h := cfg.SubjectHandler; h != nil {
		site.GET("/courses/subjects", middleware.RequireRoles(models.RoleInstructor, models.RoleStudent), h.List)
		instructor.GET("/courses/subject/:id/students", h.Students)
	}

	if h := cfg.GradeHandler; h != nil {
		instructor.GET("/grades/edit/:id", h.Edit)
		instructor.POST("/grades/edit/:id", h.Update)
	}

	if h := cfg.AnnouncementHandler; h != nil {
		staff.GET("/create", h.CreatePage)
		staff.POST("/create", h.Create)
		staff.GET("/mine", h.Mine)
		staff.GET("/edit/:id", h.EditPage)
		staff.POST("/edit/:id", h.Update)
		staff.POST("/delete/:id", h.Delete)
	}
}

func registerAdminRoutes(site *gin.RouterGroup, cfg Config) {
	h := cfg.AdminHandler
	if h == nil {
		return
	}
	admin := site.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("", h.Overview)
	admin.POST("/courses", h.CreateCourse)
	admin.POST("/subjects", h.CreateSubject)
	admin.POST("/subjects/:id/instructor", h.AssignInstructor)
	admin.POST("/enrollments", h.Enroll)
	admin.POST("/enrollments/:id/status", h.UpdateEnrollmentStatus)
	admin.POST("/gpa", h.ComputeGPA)
}
