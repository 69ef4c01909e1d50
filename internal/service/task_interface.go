package service

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, int64) (*task.Task, error)
	Delete(context.Context, int64) error
	GetAll(context.Context) ([]*task.Task, error)
	GetByStatus(context.Context, task.Status) ([]*task.Task, error)
	GetByCreator(ctx context.Context, creatorID string) ([]*task.Task, error)
	GetByOwnerUser(ctx context.Context, userID int64) ([]*task.Task, error)
	GetAssignedContaining(ctx context.Context, assignee, excludeCreator string) ([]*task.Task, error)
	GetAssignedExactly(ctx context.Context, value, excludeCreator string) ([]*task.Task, error)
	GetSharedWithContaining(ctx context.Context, grantee, excludeCreator string) ([]*task.Task, error)
}

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByID(context.Context, int64) (*user.User, error)
	GetByUsername(context.Context, string) (*user.User, error)
}

type ExternalUserRepository interface {
	List(context.Context) ([]*user.ExternalUser, error)
	ListActive(context.Context) ([]*user.ExternalUser, error)
	SearchByName(ctx context.Context, term string) ([]*user.ExternalUser, error)
	GetByID(context.Context, string) (*user.ExternalUser, error)
	Create(context.Context, *user.ExternalUser) error
	Update(context.Context, *user.ExternalUser) error
	Delete(context.Context, string) error
}

type TokenIssuer interface {
	Generate(subject string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
