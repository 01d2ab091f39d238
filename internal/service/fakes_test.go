package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/internal/repository"
)

func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint}
}

type fakeCourseRepo struct {
	courses map[string]*models.Course
}

func newFakeCourseRepo(courses ...models.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: map[string]*models.Course{}}
	for i := range courses {
		repo.courses[courses[i].ID] = &courses[i]
	}
	return repo
}

func (f *fakeCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(f.courses))
	for _, c := range f.courses {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	for _, c := range f.courses {
		if c.Code == course.Code {
			return uniqueViolation(repository.CourseCodeConstraint)
		}
	}
	course.ID = uuid.NewString()
	copied := *course
	f.courses[course.ID] = &copied
	return nil
}

type fakeSubjectRepo struct {
	subjects map[string]*models.Subject
	students map[string][]string
}

func newFakeSubjectRepo(subjects ...models.Subject) *fakeSubjectRepo {
	repo := &fakeSubjectRepo{subjects: map[string]*models.Subject{}, students: map[string][]string{}}
	for i := range subjects {
		repo.subjects[subjects[i].ID] = &subjects[i]
	}
	return repo
}

func (f *fakeSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, error) {
	var out []models.SubjectDetail
	for _, s := range f.subjects {
		if filter.CourseID != "" && s.CourseID != filter.CourseID {
			continue
		}
		if filter.InstructorID != "" && !s.OwnedBy(filter.InstructorID) {
			continue
		}
		if filter.StudentID != "" && !contains(f.students[s.ID], filter.StudentID) {
			continue
		}
		out = append(out, models.SubjectDetail{Subject: *s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakeSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := f.subjects[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	for _, s := range f.subjects {
		if s.Code == subject.Code {
			return uniqueViolation(repository.SubjectCodeConstraint)
		}
	}
	subject.ID = uuid.NewString()
	copied := *subject
	f.subjects[subject.ID] = &copied
	return nil
}

func (f *fakeSubjectRepo) UpdateInstructor(ctx context.Context, id string, instructorID *string) error {
	s, ok := f.subjects[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.InstructorID = instructorID
	return nil
}

type fakeUserDirectory struct {
	users map[string]*models.User
}

func newFakeUserDirectory(users ...models.User) *fakeUserDirectory {
	dir := &fakeUserDirectory{users: map[string]*models.User{}}
	for i := range users {
		dir.users[users[i].ID] = &users[i]
	}
	return dir
}

func (f *fakeUserDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserDirectory) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeEnrollmentRepo struct {
	enrollments map[string]*models.Enrollment
	subjects    *fakeSubjectRepo
	// skipExists simulates a concurrent insert winning between Exists and Create.
	skipExists bool
	creates    int
}

func newFakeEnrollmentRepo(subjects *fakeSubjectRepo) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrollments: map[string]*models.Enrollment{}, subjects: subjects}
}

func (f *fakeEnrollmentRepo) add(studentID, subjectID string, status models.EnrollmentStatus) *models.Enrollment {
	e := &models.Enrollment{ID: uuid.NewString(), StudentID: studentID, SubjectID: subjectID, Status: status, EnrolledAt: time.Now().UTC()}
	f.enrollments[e.ID] = e
	if f.subjects != nil {
		f.subjects.students[subjectID] = append(f.subjects.students[subjectID], studentID)
	}
	return e
}

func (f *fakeEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, e := range f.enrollments {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != "" && e.SubjectID != filter.SubjectID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, models.EnrollmentDetail{Enrollment: *e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (f *fakeEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := f.enrollments[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) Exists(ctx context.Context, studentID, subjectID string) (bool, error) {
	if f.skipExists {
		return false, nil
	}
	return f.find(studentID, subjectID) != nil, nil
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	f.creates++
	if f.find(enrollment.StudentID, enrollment.SubjectID) != nil {
		return uniqueViolation(repository.EnrollmentUniqueConstraint)
	}
	created := f.add(enrollment.StudentID, enrollment.SubjectID, enrollment.Status)
	enrollment.ID = created.ID
	return nil
}

func (f *fakeEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	e, ok := f.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Status = status
	return nil
}

func (f *fakeEnrollmentRepo) CountStudentsByInstructor(ctx context.Context, instructorID string) (int, error) {
	seen := map[string]bool{}
	for _, e := range f.enrollments {
		subject, ok := f.subjects.subjects[e.SubjectID]
		if ok && subject.OwnedBy(instructorID) && e.Status == models.EnrollmentEnrolled {
			seen[e.StudentID] = true
		}
	}
	return len(seen), nil
}

func (f *fakeEnrollmentRepo) find(studentID, subjectID string) *models.Enrollment {
	for _, e := range f.enrollments {
		if e.StudentID == studentID && e.SubjectID == subjectID {
			return e
		}
	}
	return nil
}

type fakeGradeRepo struct {
	details      map[string]*models.GradeDetail
	byEnrollment map[string]*models.Grade
	entries      []models.GPAEntry
	updates      int
	termArgs     []interface{}
}

func newFakeGradeRepo() *fakeGradeRepo {
	return &fakeGradeRepo{details: map[string]*models.GradeDetail{}, byEnrollment: map[string]*models.Grade{}}
}

func (f *fakeGradeRepo) addDetail(detail models.GradeDetail) *models.GradeDetail {
	if detail.ID == "" {
		detail.ID = uuid.NewString()
	}
	if detail.PrelimWeight.IsZero() && detail.MidtermWeight.IsZero() && detail.FinalWeight.IsZero() {
		w := DefaultWeights()
		detail.PrelimWeight, detail.MidtermWeight, detail.FinalWeight = w.Prelim, w.Midterm, w.Final
	}
	f.details[detail.ID] = &detail
	return &detail
}

func (f *fakeGradeRepo) FindDetail(ctx context.Context, id string) (*models.GradeDetail, error) {
	if d, ok := f.details[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGradeRepo) GetOrCreate(ctx context.Context, enrollmentID string) (*models.Grade, error) {
	if g, ok := f.byEnrollment[enrollmentID]; ok {
		return g, nil
	}
	w := DefaultWeights()
	g := &models.Grade{ID: uuid.NewString(), EnrollmentID: enrollmentID, PrelimWeight: w.Prelim, MidtermWeight: w.Midterm, FinalWeight: w.Final}
	f.byEnrollment[enrollmentID] = g
	return g, nil
}

func (f *fakeGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	d, ok := f.details[grade.ID]
	if !ok {
		return sql.ErrNoRows
	}
	f.updates++
	d.Grade = *grade
	return nil
}

func (f *fakeGradeRepo) ListByStudent(ctx context.Context, studentID string, order repository.GradeOrder, limit int) ([]models.GradeDetail, error) {
	var out []models.GradeDetail
	for _, d := range f.details {
		if d.StudentID == studentID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeGradeRepo) CompletedEntries(ctx context.Context, studentID string) ([]models.GPAEntry, error) {
	return f.entries, nil
}

func (f *fakeGradeRepo) TermEntries(ctx context.Context, studentID string, semester models.Semester, from, to time.Time) ([]models.GPAEntry, error) {
	f.termArgs = []interface{}{studentID, semester, from, to}
	return f.entries, nil
}

type fakeAnnouncementRepo struct {
	announcements map[string]*models.Announcement
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{announcements: map[string]*models.Announcement{}}
}

func (f *fakeAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	announcement.ID = uuid.NewString()
	copied := *announcement
	f.announcements[announcement.ID] = &copied
	return nil
}

func (f *fakeAnnouncementRepo) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	if a, ok := f.announcements[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAnnouncementRepo) Update(ctx context.Context, announcement *models.Announcement) error {
	if _, ok := f.announcements[announcement.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *announcement
	f.announcements[announcement.ID] = &copied
	return nil
}

func (f *fakeAnnouncementRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.announcements[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.announcements, id)
	return nil
}

func (f *fakeAnnouncementRepo) ListByCreator(ctx context.Context, userID string, limit int) ([]models.AnnouncementDetail, error) {
	var out []models.AnnouncementDetail
	for _, a := range f.announcements {
		if a.CreatedBy == userID {
			out = append(out, models.AnnouncementDetail{Announcement: *a})
		}
	}
	return truncateAnnouncements(out, limit), nil
}

func (f *fakeAnnouncementRepo) ListVisibleToStudent(ctx context.Context, studentID string, limit int) ([]models.AnnouncementDetail, error) {
	var out []models.AnnouncementDetail
	for _, a := range f.announcements {
		if a.IsActive && a.Type == models.AnnouncementSystem {
			out = append(out, models.AnnouncementDetail{Announcement: *a})
		}
	}
	return truncateAnnouncements(out, limit), nil
}

func truncateAnnouncements(in []models.AnnouncementDetail, limit int) []models.AnnouncementDetail {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

type fakeAuditLog struct {
	logs []models.AuditLog
}

func (f *fakeAuditLog) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.logs = append(f.logs, *log)
	return nil
}

type recordingInvalidator struct {
	students    []string
	instructors []string
	all         int
}

func (r *recordingInvalidator) InvalidateStudent(ctx context.Context, userIDs ...string) {
	r.students = append(r.students, userIDs...)
}

func (r *recordingInvalidator) InvalidateInstructor(ctx context.Context, userIDs ...string) {
	r.instructors = append(r.instructors, userIDs...)
}

func (r *recordingInvalidator) InvalidateDashboards(ctx context.Context) {
	r.all++
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func strPtr(v string) *string { return &v }
