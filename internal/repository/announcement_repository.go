package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-records/internal/models"
)

var announcementDetailSelect = `SELECT a.id, a.title, a.content, a.announcement_type, a.subject_id, a.created_by, a.is_active, a.created_at, a.updated_at,
s.code AS subject_code, s.name AS subject_name, ` + fullNameSQL("u") + ` AS author_name
FROM announcements a
JOIN users u ON u.id = a.created_by
LEFT JOIN subjects s ON s.id = a.subject_id`

// AnnouncementRepository handles persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository constructs the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	announcement.CreatedAt = now
	announcement.UpdatedAt = now
	const query = `INSERT INTO announcements (id, title, content, announcement_type, subject_id, created_by, is_active, created_at, updated_at) VALUES (:id, :title, :content, :announcement_type, :subject_id, :created_by, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// FindByID returns an announcement by identifier.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	const query = `SELECT id, title, content, announcement_type, subject_id, created_by, is_active, created_at, updated_at FROM announcements WHERE id = $1`
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find announcement: %w", err)
	}
	return &announcement, nil
}

// Update replaces the editable fields of an announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	announcement.UpdatedAt = time.Now().UTC()
	const query = `UPDATE announcements SET title = :title, content = :content, announcement_type = :announcement_type, subject_id = :subject_id, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, announcement)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByCreator returns announcements authored by userID, newest first.
func (r *AnnouncementRepository) ListByCreator(ctx context.Context, userID string, limit int) ([]models.AnnouncementDetail, error) {
	query := announcementDetailSelect + ` WHERE a.created_by = $1 ORDER BY a.created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var announcements []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &announcements, query, userID); err != nil {
		return nil, fmt.Errorf("list announcements by creator: %w", err)
	}
	return announcements, nil
}

// ListVisibleToStudent returns active system announcements plus active
// announcements of subjects the student is currently enrolled in.
func (r *AnnouncementRepository) ListVisibleToStudent(ctx context.Context, studentID string, limit int) ([]models.AnnouncementDetail, error) {
	query := announcementDetailSelect + ` WHERE a.is_active = TRUE AND (a.announcement_type = 'system' OR a.subject_id IN (SELECT en.subject_id FROM enrollments en WHERE en.student_id = $1 AND en.status = 'enrolled')) ORDER BY a.created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var announcements []models.AnnouncementDetail
	if err := r.db.SelectContext(ctx, &announcements, query, studentID); err != nil {
		return nil, fmt.Errorf("list student announcements: %w", err)
	}
	return announcements, nil
}
