package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/internal/repository"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

// recentGradesLimit is the number of grades shown on the student dashboard.
const recentGradesLimit = 5

type gradeRepository interface {
	FindDetail(ctx context.Context, id string) (*models.GradeDetail, error)
	Update(ctx context.Context, grade *models.Grade) error
	ListByStudent(ctx context.Context, studentID string, order repository.GradeOrder, limit int) ([]models.GradeDetail, error)
	CompletedEntries(ctx context.Context, studentID string) ([]models.GPAEntry, error)
}

// GradeService edits grade rows and derives their results.
type GradeService struct {
	repo    gradeRepository
	audit   auditWriter
	cache   CacheInvalidator
	metrics *MetricsService
	logger  *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(repo gradeRepository, audit auditWriter, cache CacheInvalidator, metrics *MetricsService, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &GradeService{repo: repo, audit: audit, cache: cache, metrics: metrics, logger: logger}
}

// Edit loads a grade for editing by the instructor of its subject.
func (s *GradeService) Edit(ctx context.Context, user *models.CurrentUser, gradeID string) (*models.GradeDetail, error) {
	detail, err := s.repo.FindDetail(ctx, gradeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if !user.IsInstructor() || detail.InstructorID == nil || *detail.InstructorID != user.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only edit grades of your own subjects")
	}
	return detail, nil
}

// Update saves component scores, weights and remarks and recomputes the
// derived results in the same write. Blank components clear the stored score
// and blank weights keep the stored weights. Invalid input writes nothing.
func (s *GradeService) Update(ctx context.Context, user *models.CurrentUser, gradeID string, req models.UpdateGradeRequest) (*models.GradeDetail, error) {
	detail, err := s.Edit(ctx, user, gradeID)
	if err != nil {
		return nil, err
	}
	grade := detail.Grade

	var components GradeComponents
	if components.Prelim, err = parseOptionalScore("prelim grade", req.PrelimGrade); err != nil {
		return nil, err
	}
	if components.Midterm, err = parseOptionalScore("midterm grade", req.MidtermGrade); err != nil {
		return nil, err
	}
	if components.Final, err = parseOptionalScore("final grade", req.FinalGrade); err != nil {
		return nil, err
	}

	weights := GradeWeights{Prelim: grade.PrelimWeight, Midterm: grade.MidtermWeight, Final: grade.FinalWeight}
	if weights.Prelim, err = parseWeight("prelim weight", req.PrelimWeight, weights.Prelim); err != nil {
		return nil, err
	}
	if weights.Midterm, err = parseWeight("midterm weight", req.MidtermWeight, weights.Midterm); err != nil {
		return nil, err
	}
	if weights.Final, err = parseWeight("final weight", req.FinalWeight, weights.Final); err != nil {
		return nil, err
	}

	result, err := ComputeResult(components, weights)
	if err != nil {
		return nil, err
	}

	grade.PrelimGrade = components.Prelim
	grade.MidtermGrade = components.Midterm
	grade.FinalGrade = components.Final
	grade.PrelimWeight = weights.Prelim
	grade.MidtermWeight = weights.Midterm
	grade.FinalWeight = weights.Final
	grade.Remarks = strings.TrimSpace(req.Remarks)
	applyResult(&grade, result)

	if err := s.repo.Update(ctx, &grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grade")
	}
	detail.Grade = grade

	s.metrics.RecordGradeUpdate(result != nil)
	s.cache.InvalidateStudent(ctx, detail.StudentID)
	recordAudit(ctx, s.audit, s.logger, user, models.AuditActionGradeUpdate, "grade", grade.ID, gradeAuditValues(&grade))
	return detail, nil
}

// Recent returns the latest grades of a student.
func (s *GradeService) Recent(ctx context.Context, studentID string) ([]models.GradeDetail, error) {
	grades, err := s.repo.ListByStudent(ctx, studentID, repository.GradeOrderRecent, recentGradesLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// StudentGPA returns the GPA over a student's completed enrollments.
func (s *GradeService) StudentGPA(ctx context.Context, studentID string) (decimal.Decimal, error) {
	entries, err := s.repo.CompletedEntries(ctx, studentID)
	if err != nil {
		return decimal.Zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute gpa")
	}
	gpa, _ := ComputeGPA(entries)
	return gpa, nil
}

// Summary returns every grade of a student with pass, fail and incomplete
// totals and the GPA.
func (s *GradeService) Summary(ctx context.Context, studentID string) (*models.GradeSummary, error) {
	grades, err := s.repo.ListByStudent(ctx, studentID, repository.GradeOrderEnrollment, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	summary := &models.GradeSummary{Grades: grades, TotalSubjects: len(grades)}
	for i := range grades {
		switch {
		case !grades[i].Completed():
			summary.Incomplete++
		case grades[i].Failed():
			summary.Failed++
		default:
			summary.Passed++
		}
	}
	if summary.GPA, err = s.StudentGPA(ctx, studentID); err != nil {
		return nil, err
	}
	return summary, nil
}

// applyResult writes the derived columns, clearing all three when absent.
func applyResult(grade *models.Grade, result *GradeResult) {
	if result == nil {
		grade.WeightedAverage = decimal.NullDecimal{}
		grade.LetterGrade = nil
		grade.GradePoint = decimal.NullDecimal{}
		return
	}
	letter := result.LetterGrade
	grade.WeightedAverage = decimal.NewNullDecimal(result.WeightedAverage)
	grade.LetterGrade = &letter
	grade.GradePoint = decimal.NewNullDecimal(result.GradePoint)
}

// parseWeight parses a weight, keeping current when raw is blank.
func parseWeight(field, raw string, current decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return current, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a number", field))
	}
	return value, nil
}

func gradeAuditValues(grade *models.Grade) map[string]interface{} {
	values := map[string]interface{}{
		"prelim_grade":  grade.PrelimGrade,
		"midterm_grade": grade.MidtermGrade,
		"final_grade":   grade.FinalGrade,
		"weights":       []decimal.Decimal{grade.PrelimWeight, grade.MidtermWeight, grade.FinalWeight},
	}
	if grade.Completed() {
		values["weighted_average"] = grade.WeightedAverage
		values["letter_grade"] = *grade.LetterGrade
	}
	return values
}
