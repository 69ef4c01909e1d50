package relational

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"taskManager/internal/codec"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// taskRow mirrors the tasks table. Multi-valued attributes are JSON arrays
// in text columns, converted by the codec package.
type taskRow struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Title          string     `gorm:"column:title"`
	Description    *string    `gorm:"column:description_text"`
	Status         string     `gorm:"column:status"`
	Priority       string     `gorm:"column:priority"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	DueDate        *time.Time `gorm:"column:due_date"`
	UserID         *int64     `gorm:"column:user_id"`
	CreatorID      *string    `gorm:"column:clerk_user_id"`
	AssignedTo     *string    `gorm:"column:assigned_to"`
	Note           *string    `gorm:"column:assigned_user_note"`
	NoteAuthor     *string    `gorm:"column:assigned_user_note_author"`
	Tags           *string    `gorm:"column:tags"`
	Images         *string    `gorm:"column:images"`
	SharedWith     *string    `gorm:"column:shared_with"`
	ShareRequests  *string    `gorm:"column:share_requests"`
	IsPublic       bool       `gorm:"column:is_public"`
	IsSharedWithMe bool       `gorm:"column:is_shared_with_me"`
}

func (taskRow) TableName() string { return "tasks" }

type Storage struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, t *task.Task) error {
	row := toRow(t)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		logger.Error("Repository: failed to create task", err)
		return fmt.Errorf("create task: %w", err)
	}

	t.ID = row.ID
	t.CreatedAt = row.CreatedAt
	t.UpdatedAt = row.UpdatedAt
	return nil
}

// Update writes only the columns whose value differs from the stored row.
// Columns left alone keep their raw text, so legacy encodings survive
// unrelated edits.
func (s *Storage) Update(ctx context.Context, t *task.Task) error {
	now := time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored taskRow
		if err := tx.First(&stored, "id = ?", t.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return fmt.Errorf("load task %d: %w", t.ID, err)
		}

		changes := changedColumns(stored.toTask(), t)
		changes["updated_at"] = now

		if err := tx.Model(&taskRow{}).Where("id = ?", t.ID).Updates(changes).Error; err != nil {
			return fmt.Errorf("update task %d: %w", t.ID, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			logger.Error("Repository: failed to update task", err, zap.Int64("task_id", t.ID))
		}
		return err
	}

	t.UpdatedAt = now
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	var row taskRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return row.toTask(), nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&taskRow{}, id)
	if result.Error != nil {
		logger.Error("Repository: failed to delete task", result.Error, zap.Int64("task_id", id))
		return fmt.Errorf("delete task %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetAll(ctx context.Context) ([]*task.Task, error) {
	return s.find(ctx, "all", s.db)
}

func (s *Storage) GetByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	return s.find(ctx, "by_status", s.db.Where("status IN ?", status.StoredNames()))
}

func (s *Storage) GetByCreator(ctx context.Context, creatorID string) ([]*task.Task, error) {
	return s.find(ctx, "by_creator", s.db.Where("clerk_user_id = ?", creatorID))
}

func (s *Storage) GetByOwnerUser(ctx context.Context, userID int64) ([]*task.Task, error) {
	return s.find(ctx, "by_owner_user", s.db.Where("user_id = ?", userID))
}

// GetAssignedContaining matches the serialized assignee column as a substring.
// Tasks without a creator never match because of SQL NULL semantics.
func (s *Storage) GetAssignedContaining(ctx context.Context, assignee, excludeCreator string) ([]*task.Task, error) {
	return s.find(ctx, "assigned_containing", s.db.
		Where(`assigned_to LIKE ? ESCAPE '\'`, containsPattern(assignee)).
		Where("clerk_user_id <> ?", excludeCreator))
}

// GetAssignedExactly matches rows whose whole assignee column equals value,
// which only legacy single-value rows can do.
func (s *Storage) GetAssignedExactly(ctx context.Context, value, excludeCreator string) ([]*task.Task, error) {
	return s.find(ctx, "assigned_exactly", s.db.
		Where("assigned_to = ?", value).
		Where("clerk_user_id <> ?", excludeCreator))
}

func (s *Storage) GetSharedWithContaining(ctx context.Context, grantee, excludeCreator string) ([]*task.Task, error) {
	return s.find(ctx, "shared_with_containing", s.db.
		Where(`shared_with LIKE ? ESCAPE '\'`, containsPattern(grantee)).
		Where("clerk_user_id <> ?", excludeCreator))
}

func (s *Storage) find(ctx context.Context, query string, scope *gorm.DB) ([]*task.Task, error) {
	var rows []taskRow
	if err := scope.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		logger.Error("Repository: task query failed", err, zap.String("query", query))
		return nil, fmt.Errorf("query tasks %s: %w", query, err)
	}

	tasks := make([]*task.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toTask())
	}
	return tasks, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

func toRow(t *task.Task) taskRow {
	row := taskRow{
		ID:             t.ID,
		Title:          t.Title,
		Description:    optional(t.Description),
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		DueDate:        t.DueDate,
		AssignedTo:     codec.Encode(t.AssignedTo),
		Note:           optional(t.Note),
		NoteAuthor:     optional(t.NoteAuthor),
		Tags:           codec.Encode(t.Tags),
		Images:         codec.Encode(t.Images),
		SharedWith:     codec.Encode(t.SharedWith),
		ShareRequests:  codec.Encode(t.ShareRequests),
		IsPublic:       t.IsPublic,
		IsSharedWithMe: t.IsSharedWithMe,
	}

	switch t.Owner.Kind() {
	case task.OwnerLocal:
		id, _ := t.Owner.Local()
		row.UserID = &id
	case task.OwnerExternal:
		subject, _ := t.Owner.External()
		row.CreatorID = &subject
	case task.OwnerNone:
	}
	return row
}

func (r *taskRow) toTask() *task.Task {
	status, ok := task.ParseStatus(r.Status)
	if !ok {
		status = task.StatusTodo
	}
	priority, ok := task.ParsePriority(r.Priority)
	if !ok {
		priority = task.PriorityMedium
	}

	var owner task.Owner
	switch {
	case r.CreatorID != nil:
		owner = task.ExternalOwner(*r.CreatorID)
	case r.UserID != nil:
		owner = task.LocalOwner(*r.UserID)
	}

	var due *time.Time
	if r.DueDate != nil {
		d := r.DueDate.UTC()
		due = &d
	}

	return &task.Task{
		ID:             r.ID,
		Title:          r.Title,
		Description:    deref(r.Description),
		Status:         status,
		Priority:       priority,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
		DueDate:        due,
		Owner:          owner,
		AssignedTo:     codec.DecodeAssignees(r.AssignedTo),
		Tags:           codec.Decode(r.Tags),
		Images:         codec.Decode(r.Images),
		SharedWith:     codec.Decode(r.SharedWith),
		ShareRequests:  codec.Decode(r.ShareRequests),
		IsPublic:       r.IsPublic,
		IsSharedWithMe: r.IsSharedWithMe,
		Note:           deref(r.Note),
		NoteAuthor:     deref(r.NoteAuthor),
	}
}

// changedColumns maps every field that differs between the stored and the
// updated task to its column value.
func changedColumns(before, after *task.Task) map[string]any {
	changes := make(map[string]any)
	set := func(changed bool, column string, value any) {
		if changed {
			changes[column] = value
		}
	}
	row := toRow(after)

	set(before.Title != after.Title, "title", row.Title)
	set(before.Description != after.Description, "description_text", nullable(row.Description))
	set(before.Status != after.Status, "status", row.Status)
	set(before.Priority != after.Priority, "priority", row.Priority)
	set(!sameInstant(before.DueDate, after.DueDate), "due_date", row.DueDate)
	set(before.Note != after.Note, "assigned_user_note", nullable(row.Note))
	set(before.NoteAuthor != after.NoteAuthor, "assigned_user_note_author", nullable(row.NoteAuthor))
	set(!slices.Equal(before.AssignedTo, after.AssignedTo), "assigned_to", nullable(row.AssignedTo))
	set(!slices.Equal(before.Tags, after.Tags), "tags", nullable(row.Tags))
	set(!slices.Equal(before.Images, after.Images), "images", nullable(row.Images))
	set(!slices.Equal(before.SharedWith, after.SharedWith), "shared_with", nullable(row.SharedWith))
	set(!slices.Equal(before.ShareRequests, after.ShareRequests), "share_requests", nullable(row.ShareRequests))
	set(before.IsPublic != after.IsPublic, "is_public", row.IsPublic)
	set(before.IsSharedWithMe != after.IsSharedWithMe, "is_shared_with_me", row.IsSharedWithMe)

	if before.Owner != after.Owner {
		changes["user_id"] = row.UserID
		changes["clerk_user_id"] = nullable(row.CreatorID)
	}
	return changes
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// nullable turns a nil pointer into an untyped nil so gorm writes NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
