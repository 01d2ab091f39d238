package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/export"
	"github.com/noah-isme/school-records/pkg/storage"
)

// Transcript formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var transcriptHeaders = []string{"Code", "Subject", "Units", "Semester", "Status", "Prelim", "Midterm", "Final", "Average", "Grade", "Point", "Remarks"}

type gradeSummaryReader interface {
	Summary(ctx context.Context, studentID string) (*models.GradeSummary, error)
}

type studentProfileReader interface {
	FindStudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error)
}

type exportStorage interface {
	Save(name string, data []byte) (string, error)
	Path(name string) (string, error)
}

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportResult captures a stored export and its download token.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       string
	ExpiresAt    time.Time
}

// Download describes a stored export resolved from a token.
type Download struct {
	Path        string
	Filename    string
	ContentType string
}

// ExportService renders transcripts and serves them through signed links.
type ExportService struct {
	grades    gradeSummaryReader
	profiles  studentProfileReader
	storage   exportStorage
	signer    *storage.SignedURLSigner
	renderers map[string]renderer
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(grades gradeSummaryReader, profiles studentProfileReader, files exportStorage, signer *storage.SignedURLSigner, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		grades:   grades,
		profiles: profiles,
		storage:  files,
		signer:   signer,
		renderers: map[string]renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Transcript renders the grades of the current student, stores the file and
// returns a signed download link bound to that student.
func (s *ExportService) Transcript(ctx context.Context, user *models.CurrentUser, format string) (*ExportResult, error) {
	if !user.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can export transcripts")
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	summary, err := s.grades.Summary(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	dataset, err := s.transcriptDataset(ctx, user, summary)
	if err != nil {
		return nil, err
	}

	payload, err := r.Render(dataset, "Academic Transcript")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}
	name := fmt.Sprintf("transcripts/%s/transcript_%s.%s", user.ID, s.now().UTC().Format("20060102_150405"), r.Extension())
	relPath, err := s.storage.Save(name, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store transcript")
	}
	token, expiresAt, err := s.signer.Generate(user.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}

	s.metrics.RecordExport(format)
	s.logger.Info("transcript exported", zap.String("user_id", user.ID), zap.String("format", format), zap.String("path", relPath))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          "/downloads/" + token,
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Resolve validates a download token for user and locates the stored file.
// Only the owner of the export or an admin may download it.
func (s *ExportService) Resolve(user *models.CurrentUser, token string) (*Download, error) {
	owner, relPath, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "download link has expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "download link is invalid")
	}
	if owner != user.ID && !user.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only download your own exports")
	}
	fullPath, err := s.storage.Path(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "download link is invalid")
	}
	if _, err := os.Stat(fullPath); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}

	download := &Download{Path: fullPath, Filename: path.Base(relPath), ContentType: "application/octet-stream"}
	if r, ok := s.renderers[trimDot(path.Ext(relPath))]; ok {
		download.ContentType = r.ContentType()
	}
	return download, nil
}

func (s *ExportService) transcriptDataset(ctx context.Context, user *models.CurrentUser, summary *models.GradeSummary) (export.Dataset, error) {
	studentNumber := "-"
	program := "-"
	profile, err := s.profiles.FindStudentProfile(ctx, user.ID)
	switch {
	case err == nil:
		studentNumber = profile.StudentID
		if profile.ProgramName != nil {
			program = *profile.ProgramName
		}
	case !errors.Is(err, sql.ErrNoRows):
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	rows := make([]map[string]string, 0, len(summary.Grades))
	for _, g := range summary.Grades {
		letter := "-"
		if g.LetterGrade != nil {
			letter = *g.LetterGrade
		}
		rows = append(rows, map[string]string{
			"Code":     g.SubjectCode,
			"Subject":  g.SubjectName,
			"Units":    fmt.Sprintf("%d", g.Units),
			"Semester": g.Semester.Label(),
			"Status":   string(g.EnrollmentStatus),
			"Prelim":   formatScore(g.PrelimGrade),
			"Midterm":  formatScore(g.MidtermGrade),
			"Final":    formatScore(g.FinalGrade),
			"Average":  formatScore(g.WeightedAverage),
			"Grade":    letter,
			"Point":    formatScore(g.GradePoint),
			"Remarks":  g.Remarks,
		})
	}
	return export.Dataset{
		Headers: transcriptHeaders,
		Rows:    rows,
		Summary: []string{
			fmt.Sprintf("Student: %s (%s)", user.FullName(), studentNumber),
			fmt.Sprintf("Program: %s", program),
			fmt.Sprintf("GPA: %s", summary.GPA.StringFixed(2)),
			fmt.Sprintf("Subjects: %d  Passed: %d  Failed: %d  Incomplete: %d", summary.TotalSubjects, summary.Passed, summary.Failed, summary.Incomplete),
		},
	}, nil
}

func formatScore(v decimal.NullDecimal) string {
	if !v.Valid {
		return "-"
	}
	return v.Decimal.StringFixed(2)
}

func trimDot(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
