package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

const otherSubjectID = "6a6a6a6a-6a6a-4a6a-8a6a-6a6a6a6a6a6a"

func newAnnouncementFixture() (*AnnouncementService, *fakeAnnouncementRepo, *recordingInvalidator) {
	subjects := newFakeSubjectRepo(
		models.Subject{ID: subjectID, Code: "CS101", InstructorID: strPtr(instructorID)},
		models.Subject{ID: otherSubjectID, Code: "CS201", InstructorID: strPtr("someone-else")},
	)
	repo := newFakeAnnouncementRepo()
	cache := &recordingInvalidator{}
	return NewAnnouncementService(repo, subjects, cache, nil, nil), repo, cache
}

func TestAnnouncementCreateSystemAndCourse(t *testing.T) {
	svc, repo, cache := newAnnouncementFixture()
	ctx := context.Background()

	system, err := svc.Create(ctx, adminUser, models.AnnouncementRequest{Title: "Enrollment", Content: "Opens Monday", Type: "system", IsActive: "on"})
	require.NoError(t, err)
	assert.Nil(t, system.SubjectID)
	assert.True(t, system.IsActive)

	course, err := svc.Create(ctx, ownerInstructor, models.AnnouncementRequest{Title: "Quiz", Content: "Chapter 2", Type: "course", SubjectID: subjectID})
	require.NoError(t, err)
	require.NotNil(t, course.SubjectID)
	assert.Equal(t, subjectID, *course.SubjectID)
	assert.False(t, course.IsActive)

	assert.Len(t, repo.announcements, 2)
	assert.Equal(t, 2, cache.all)
}

func TestAnnouncementTypeSubjectPairing(t *testing.T) {
	svc, repo, _ := newAnnouncementFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, adminUser, models.AnnouncementRequest{Title: "t", Content: "c", Type: "system", SubjectID: subjectID})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, adminUser, models.AnnouncementRequest{Title: "t", Content: "c", Type: "course"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.Empty(t, repo.announcements)
}

func TestAnnouncementCreateRules(t *testing.T) {
	svc, repo, _ := newAnnouncementFixture()
	ctx := context.Background()
	student := &models.CurrentUser{ID: studentID, Role: models.RoleStudent}

	_, err := svc.Create(ctx, student, models.AnnouncementRequest{Title: "t", Content: "c", Type: "system"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Create(ctx, ownerInstructor, models.AnnouncementRequest{Title: "t", Content: "c", Type: "course", SubjectID: otherSubjectID})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Create(ctx, ownerInstructor, models.AnnouncementRequest{Title: "  ", Content: "c", Type: "system"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, ownerInstructor, models.AnnouncementRequest{Title: "t", Content: "c", Type: "urgent"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, adminUser, models.AnnouncementRequest{Title: "t", Content: "c", Type: "course", SubjectID: "7b7b7b7b-7b7b-4b7b-8b7b-7b7b7b7b7b7b"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	// Admins may attach any subject.
	_, err = svc.Create(ctx, adminUser, models.AnnouncementRequest{Title: "t", Content: "c", Type: "course", SubjectID: otherSubjectID})
	require.NoError(t, err)
	assert.Len(t, repo.announcements, 1)
}

func TestAnnouncementUpdate(t *testing.T) {
	svc, repo, _ := newAnnouncementFixture()
	ctx := context.Background()
	created, err := svc.Create(ctx, ownerInstructor, models.AnnouncementRequest{Title: "Quiz", Content: "c", Type: "course", SubjectID: subjectID, IsActive: "on"})
	require.NoError(t, err)

	// Course without a new subject keeps the current one.
	updated, err := svc.Update(ctx, ownerInstructor, created.ID, models.AnnouncementRequest{Title: "Quiz moved", Content: "c", Type: "course", IsActive: "on"})
	require.NoError(t, err)
	assert.Equal(t, subjectID, *updated.SubjectID)
	assert.Equal(t, "Quiz moved", repo.announcements[created.ID].Title)

	// Switching to system clears the subject.
	updated, err = svc.Update(ctx, ownerInstructor, created.ID, models.AnnouncementRequest{Title: "Quiz", Content: "c", Type: "system", SubjectID: subjectID})
	require.NoError(t, err)
	assert.Nil(t, updated.SubjectID)
	assert.False(t, repo.announcements[created.ID].IsActive)

	// Back to course with no subject on record is rejected.
	_, err = svc.Update(ctx, ownerInstructor, created.ID, models.AnnouncementRequest{Title: "Quiz", Content: "c", Type: "course"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Update(ctx, ownerInstructor, created.ID, models.AnnouncementRequest{Title: "Quiz", Content: "c", Type: "course", SubjectID: otherSubjectID})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestAnnouncementOwnership(t *testing.T) {
	svc, repo, _ := newAnnouncementFixture()
	ctx := context.Background()
	created, err := svc.Create(ctx, ownerInstructor, models.AnnouncementRequest{Title: "t", Content: "c", Type: "system"})
	require.NoError(t, err)
	stranger := &models.CurrentUser{ID: "someone-else", Role: models.RoleInstructor}

	_, err = svc.Update(ctx, stranger, created.ID, models.AnnouncementRequest{Title: "x", Content: "c", Type: "system"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, stranger, created.ID), appErrors.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, adminUser, created.ID))
	assert.Empty(t, repo.announcements)
	assert.ErrorIs(t, svc.Delete(ctx, adminUser, created.ID), appErrors.ErrNotFound)
}

func TestAnnouncementLists(t *testing.T) {
	svc, _, _ := newAnnouncementFixture()
	ctx := context.Background()
	_, err := svc.Create(ctx, ownerInstructor, models.AnnouncementRequest{Title: "visible", Content: "c", Type: "system", IsActive: "on"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ownerInstructor, models.AnnouncementRequest{Title: "hidden", Content: "c", Type: "system"})
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, ownerInstructor, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	visible, err := svc.ListForStudent(ctx, studentID, dashboardAnnouncementsLimit)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "visible", visible[0].Title)

	options, err := svc.SubjectOptions(ctx, ownerInstructor)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, subjectID, options[0].ID)

	all, err := svc.SubjectOptions(ctx, adminUser)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
