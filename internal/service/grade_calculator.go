package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

// gradeScale is the number of decimal places kept for scores and results.
const gradeScale int32 = 2

var (
	hundred      = decimal.NewFromInt(100)
	failingPoint = decimal.Zero
)

var letterThresholds = []struct {
	min    decimal.Decimal
	letter string
}{
	{decimal.NewFromInt(97), "1.00"},
	{decimal.NewFromInt(94), "1.25"},
	{decimal.NewFromInt(91), "1.50"},
	{decimal.NewFromInt(88), "1.75"},
	{decimal.NewFromInt(85), "2.00"},
	{decimal.NewFromInt(82), "2.25"},
	{decimal.NewFromInt(79), "2.50"},
	{decimal.NewFromInt(76), "2.75"},
	{decimal.NewFromInt(75), "3.00"},
}

var gradePoints = map[string]decimal.Decimal{
	"1.00":                    decimal.RequireFromString("4.00"),
	"1.25":                    decimal.RequireFromString("3.75"),
	"1.50":                    decimal.RequireFromString("3.50"),
	"1.75":                    decimal.RequireFromString("3.25"),
	"2.00":                    decimal.RequireFromString("3.00"),
	"2.25":                    decimal.RequireFromString("2.75"),
	"2.50":                    decimal.RequireFromString("2.50"),
	"2.75":                    decimal.RequireFromString("2.25"),
	"3.00":                    decimal.RequireFromString("2.00"),
	models.FailingLetterGrade: failingPoint,
}

// GradeComponents are the three period scores of an enrollment.
type GradeComponents struct {
	Prelim  decimal.NullDecimal
	Midterm decimal.NullDecimal
	Final   decimal.NullDecimal
}

// GradeWeights are percentage weights of the three periods.
type GradeWeights struct {
	Prelim  decimal.Decimal
	Midterm decimal.Decimal
	Final   decimal.Decimal
}

// GradeResult holds the derived values of a fully graded enrollment.
type GradeResult struct {
	WeightedAverage decimal.Decimal
	LetterGrade     string
	GradePoint      decimal.Decimal
}

// DefaultWeights returns the 30/30/40 split applied to new grade rows.
func DefaultWeights() GradeWeights {
	return GradeWeights{
		Prelim:  decimal.NewFromInt(30),
		Midterm: decimal.NewFromInt(30),
		Final:   decimal.NewFromInt(40),
	}
}

// ValidateWeights checks every weight is a valid percentage and that they
// total exactly 100.
func ValidateWeights(w GradeWeights) error {
	for _, field := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"prelim weight", w.Prelim},
		{"midterm weight", w.Midterm},
		{"final weight", w.Final},
	} {
		if err := ValidateScore(field.name, field.value); err != nil {
			return err
		}
	}
	if !w.Prelim.Add(w.Midterm).Add(w.Final).Equal(hundred) {
		return appErrors.Clone(appErrors.ErrInvalidWeights, "")
	}
	return nil
}

// ValidateScore checks value lies in [0,100] with at most two decimal places.
func ValidateScore(field string, value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThan(hundred) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be between 0 and 100", field))
	}
	if !value.Equal(value.Round(gradeScale)) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must have at most 2 decimal places", field))
	}
	return nil
}

// ComputeResult derives the weighted average, letter grade and grade point.
// It returns nil without error when any component is absent.
func ComputeResult(c GradeComponents, w GradeWeights) (*GradeResult, error) {
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}
	if !c.Prelim.Valid || !c.Midterm.Valid || !c.Final.Valid {
		return nil, nil
	}

	average := c.Prelim.Decimal.Mul(w.Prelim).
		Add(c.Midterm.Decimal.Mul(w.Midterm)).
		Add(c.Final.Decimal.Mul(w.Final)).
		Div(hundred).
		RoundBank(gradeScale)

	letter := LetterGrade(average)
	return &GradeResult{
		WeightedAverage: average,
		LetterGrade:     letter,
		GradePoint:      GradePoint(letter),
	}, nil
}

// LetterGrade maps a weighted average onto the 1.00 to 5.00 scale.
func LetterGrade(average decimal.Decimal) string {
	for _, threshold := range letterThresholds {
		if average.GreaterThanOrEqual(threshold.min) {
			return threshold.letter
		}
	}
	return models.FailingLetterGrade
}

// GradePoint returns the 4-point equivalent of a letter grade. Unknown
// letters score zero.
func GradePoint(letter string) decimal.Decimal {
	if point, ok := gradePoints[letter]; ok {
		return point
	}
	return failingPoint
}

// ComputeGPA returns the unit weighted mean of the entries with a grade point,
// rounded to two places, and the units counted. No units yields zero.
func ComputeGPA(entries []models.GPAEntry) (decimal.Decimal, int) {
	weighted := decimal.Zero
	units := 0
	for _, entry := range entries {
		if !entry.GradePoint.Valid || entry.Units <= 0 {
			continue
		}
		weighted = weighted.Add(entry.GradePoint.Decimal.Mul(decimal.NewFromInt(int64(entry.Units))))
		units += entry.Units
	}
	if units == 0 {
		return decimal.Zero, 0
	}
	return weighted.Div(decimal.NewFromInt(int64(units))).RoundBank(gradeScale), units
}

// AcademicYearWindow parses "YYYY-YYYY" into the enrollment window
// [June 1 of the first year, June 1 of the second year).
func AcademicYearWindow(academicYear string) (time.Time, time.Time, error) {
	parts := strings.Split(academicYear, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 4 {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "academic year must look like 2024-2025")
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "academic year must look like 2024-2025")
	}
	second, err := strconv.Atoi(parts[1])
	if err != nil || second != first+1 {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "academic year must span two consecutive years")
	}
	from := time.Date(first, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(second, time.June, 1, 0, 0, 0, 0, time.UTC)
	return from, to, nil
}

// parseOptionalScore turns a form value into a score. Blank is absent.
func parseOptionalScore(field, raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a number", field))
	}
	if err := ValidateScore(field, value); err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(value), nil
}
