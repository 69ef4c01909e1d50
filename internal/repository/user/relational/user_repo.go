package relational

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userRow struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Username  string    `gorm:"column:username"`
	Email     string    `gorm:"column:email"`
	Password  string    `gorm:"column:password"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (userRow) TableName() string { return "users" }

type UserStorage struct {
	db *gorm.DB
}

func NewUserStorage(db *gorm.DB) *UserStorage {
	return &UserStorage{db: db}
}

// Create inserts the user unless the username or email is taken.
func (s *UserStorage) Create(ctx context.Context, u *user.User) error {
	row := userRow{
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userRow{}).
			Where("username = ? OR email = ?", u.Username, u.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repo.ErrAlreadyExists
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return err
		}
		logger.Error("Repository: failed to create user", err, zap.String("username", u.Username))
		return fmt.Errorf("create user: %w", err)
	}

	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *UserStorage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *UserStorage) first(ctx context.Context, query string, arg any) (*user.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.Password,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

type externalUserRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Active    bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (externalUserRow) TableName() string { return "external_users" }

func (r *externalUserRow) toModel() *user.ExternalUser {
	return &user.ExternalUser{
		ID:        r.ID,
		Name:      r.Name,
		Active:    r.Active,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type ExternalUserStorage struct {
	db *gorm.DB
}

func NewExternalUserStorage(db *gorm.DB) *ExternalUserStorage {
	return &ExternalUserStorage{db: db}
}

func (s *ExternalUserStorage) List(ctx context.Context) ([]*user.ExternalUser, error) {
	return s.find(ctx, "all", s.db)
}

func (s *ExternalUserStorage) ListActive(ctx context.Context) ([]*user.ExternalUser, error) {
	return s.find(ctx, "active", s.db.Where("is_active = ?", true))
}

// SearchByName does a case-insensitive substring match on the name.
func (s *ExternalUserStorage) SearchByName(ctx context.Context, term string) ([]*user.ExternalUser, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	return s.find(ctx, "search", s.db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern))
}

func (s *ExternalUserStorage) GetByID(ctx context.Context, id string) (*user.ExternalUser, error) {
	var row externalUserRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("get external user %s: %w", id, err)
	}
	return row.toModel(), nil
}

// Create fails with ErrAlreadyExists and leaves the stored row intact when
// the id is taken.
func (s *ExternalUserStorage) Create(ctx context.Context, u *user.ExternalUser) error {
	row := externalUserRow{
		ID:     u.ID,
		Name:   u.Name,
		Active: u.Active,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&externalUserRow{}).Where("id = ?", u.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repo.ErrAlreadyExists
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return err
		}
		logger.Error("Repository: failed to create external user", err, zap.String("external_id", u.ID))
		return fmt.Errorf("create external user: %w", err)
	}

	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *ExternalUserStorage) Update(ctx context.Context, u *user.ExternalUser) error {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&externalUserRow{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"name":       u.Name,
			"is_active":  u.Active,
			"updated_at": now,
		})
	if result.Error != nil {
		logger.Error("Repository: failed to update external user", result.Error, zap.String("external_id", u.ID))
		return fmt.Errorf("update external user %s: %w", u.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	u.UpdatedAt = now
	return nil
}

func (s *ExternalUserStorage) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&externalUserRow{}, "id = ?", id)
	if result.Error != nil {
		logger.Error("Repository: failed to delete external user", result.Error, zap.String("external_id", id))
		return fmt.Errorf("delete external user %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *ExternalUserStorage) find(ctx context.Context, query string, scope *gorm.DB) ([]*user.ExternalUser, error) {
	var rows []externalUserRow
	if err := scope.WithContext(ctx).Order("name").Order("id").Find(&rows).Error; err != nil {
		logger.Error("Repository: external user query failed", err, zap.String("query", query))
		return nil, fmt.Errorf("query external users %s: %w", query, err)
	}

	users := make([]*user.ExternalUser, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toModel())
	}
	return users, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
