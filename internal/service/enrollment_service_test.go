package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

func newEnrollmentFixture() (*EnrollmentService, *fakeEnrollmentRepo, *recordingInvalidator) {
	subjects := newFakeSubjectRepo(models.Subject{ID: subjectID, Code: "CS101", CourseID: courseID, Units: 3, Semester: models.SemesterFirst, InstructorID: strPtr(instructorID)})
	users := newFakeUserDirectory(
		models.User{ID: instructorID, Role: models.RoleInstructor},
		models.User{ID: studentID, Role: models.RoleStudent},
	)
	repo := newFakeEnrollmentRepo(subjects)
	cache := &recordingInvalidator{}
	return NewEnrollmentService(repo, users, subjects, &fakeAuditLog{}, cache, nil, nil), repo, cache
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	svc, repo, cache := newEnrollmentFixture()

	enrollment, err := svc.Enroll(context.Background(), adminUser, models.CreateEnrollmentRequest{StudentID: studentID, SubjectID: subjectID})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentEnrolled, enrollment.Status)
	assert.Len(t, repo.enrollments, 1)
	assert.Equal(t, []string{studentID}, cache.students)
	assert.Equal(t, []string{instructorID}, cache.instructors)
}

func TestEnrollmentServiceDuplicateIsConflict(t *testing.T) {
	svc, repo, _ := newEnrollmentFixture()
	repo.add(studentID, subjectID, models.EnrollmentDropped)

	_, err := svc.Enroll(context.Background(), adminUser, models.CreateEnrollmentRequest{StudentID: studentID, SubjectID: subjectID})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Zero(t, repo.creates)
}

func TestEnrollmentServiceConcurrentDuplicateIsConflict(t *testing.T) {
	svc, repo, _ := newEnrollmentFixture()
	repo.add(studentID, subjectID, models.EnrollmentEnrolled)
	repo.skipExists = true

	_, err := svc.Enroll(context.Background(), adminUser, models.CreateEnrollmentRequest{StudentID: studentID, SubjectID: subjectID})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, 1, repo.creates)
	assert.Len(t, repo.enrollments, 1)
}

func TestEnrollmentServiceRejectsNonStudents(t *testing.T) {
	svc, _, _ := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), adminUser, models.CreateEnrollmentRequest{StudentID: instructorID, SubjectID: subjectID})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Enroll(context.Background(), adminUser, models.CreateEnrollmentRequest{StudentID: studentID, SubjectID: "8e8e8e8e-8e8e-4e8e-8e8e-8e8e8e8e8e8e"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Enroll(context.Background(), adminUser, models.CreateEnrollmentRequest{StudentID: "nope", SubjectID: subjectID})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestEnrollmentServiceUpdateStatus(t *testing.T) {
	svc, repo, cache := newEnrollmentFixture()
	enrollment := repo.add(studentID, subjectID, models.EnrollmentEnrolled)

	err := svc.UpdateStatus(context.Background(), adminUser, enrollment.ID, models.UpdateEnrollmentStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, repo.enrollments[enrollment.ID].Status)
	assert.Contains(t, cache.students, studentID)

	err = svc.UpdateStatus(context.Background(), adminUser, enrollment.ID, models.UpdateEnrollmentStatusRequest{Status: "graduated"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = svc.UpdateStatus(context.Background(), adminUser, "missing", models.UpdateEnrollmentStatusRequest{Status: "dropped"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
