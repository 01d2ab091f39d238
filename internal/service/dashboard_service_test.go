package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

type dashboardFixture struct {
	svc         *DashboardService
	cache       *memoryCache
	enrollments *fakeEnrollmentRepo
	grades      *fakeGradeRepo
}

func newDashboardFixture(withCache bool) *dashboardFixture {
	subjects := newFakeSubjectRepo(models.Subject{ID: subjectID, Code: "CS101", Units: 3, InstructorID: strPtr(instructorID)})
	enrollments := newFakeEnrollmentRepo(subjects)
	gradeRepo := newFakeGradeRepo()
	grades := NewGradeService(gradeRepo, nil, nil, nil, nil)
	announcements := NewAnnouncementService(newFakeAnnouncementRepo(), subjects, nil, nil, nil)

	memory := newMemoryCache()
	var cache *CacheService
	if withCache {
		cache = NewCacheService(memory, nil, time.Minute, nil, true)
	}
	svc := NewDashboardService(DashboardServiceParams{
		Enrollments:   enrollments,
		Subjects:      subjects,
		Grades:        grades,
		Announcements: announcements,
		Cache:         cache,
	})
	return &dashboardFixture{svc: svc, cache: memory, enrollments: enrollments, grades: gradeRepo}
}

var studentUser = &models.CurrentUser{ID: studentID, Role: models.RoleStudent}

func TestDashboardStudent(t *testing.T) {
	f := newDashboardFixture(false)
	f.enrollments.add(studentID, subjectID, models.EnrollmentEnrolled)
	f.enrollments.add(studentID, "dropped-subject", models.EnrollmentDropped)
	for i := 0; i < 7; i++ {
		f.grades.addDetail(models.GradeDetail{StudentID: studentID, SubjectCode: string(rune('A' + i))})
	}
	f.grades.entries = []models.GPAEntry{{GradePoint: decimal.NewNullDecimal(decimal.RequireFromString("3.50")), Units: 3}}

	dashboard, cached, err := f.svc.Student(context.Background(), studentUser)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, dashboard.TotalEnrollments)
	assert.Len(t, dashboard.RecentGrades, recentGradesLimit)
	assert.True(t, dashboard.GPA.Equal(decimal.RequireFromString("3.5")))
}

func TestDashboardStudentServedFromCache(t *testing.T) {
	f := newDashboardFixture(true)
	f.enrollments.add(studentID, subjectID, models.EnrollmentEnrolled)
	ctx := context.Background()

	_, cached, err := f.svc.Student(ctx, studentUser)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Contains(t, f.cache.items, studentDashboardKey(studentID))

	f.enrollments.add(studentID, "another-subject", models.EnrollmentEnrolled)
	dashboard, cached, err := f.svc.Student(ctx, studentUser)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, dashboard.TotalEnrollments)
}

func TestDashboardInstructor(t *testing.T) {
	f := newDashboardFixture(false)
	f.enrollments.add(studentID, subjectID, models.EnrollmentEnrolled)
	f.enrollments.add("second-student", subjectID, models.EnrollmentEnrolled)
	f.enrollments.add("third-student", subjectID, models.EnrollmentDropped)

	dashboard, _, err := f.svc.Instructor(context.Background(), ownerInstructor)
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.TotalSubjects)
	assert.Equal(t, 2, dashboard.TotalStudents)
}

func TestDashboardRoleChecks(t *testing.T) {
	f := newDashboardFixture(false)

	_, _, err := f.svc.Student(context.Background(), ownerInstructor)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, _, err = f.svc.Instructor(context.Background(), studentUser)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
