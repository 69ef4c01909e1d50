package handlers

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"
)

type TaskService interface {
	HealthCheck(context.Context) error
	TasksForCaller(ctx context.Context, callerID, callerEmail string) ([]*task.Task, error)
	CreateTask(ctx context.Context, in service.CreateTaskInput, callerID string) (*task.Task, error)
	GetTask(context.Context, int64) (*task.Task, error)
	UpdateTask(context.Context, int64, service.UpdateTaskInput) (*task.Task, error)
	DeleteTask(context.Context, int64) error
	TasksByStatus(context.Context, task.Status) ([]*task.Task, error)
	ShareTask(ctx context.Context, id int64, granteeIDs []string, callerID string) (*task.Task, error)
	Stats(context.Context) (service.Stats, error)
}

type ExternalUserService interface {
	Search(ctx context.Context, term string) ([]*user.ExternalUser, error)
	Active(context.Context) ([]*user.ExternalUser, error)
	Get(context.Context, string) (*user.ExternalUser, error)
	Create(context.Context, service.CreateExternalUserInput) (*user.ExternalUser, error)
	Update(context.Context, string, service.UpdateExternalUserInput) (*user.ExternalUser, error)
	Delete(context.Context, string) error
}

type AuthService interface {
	Register(context.Context, service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, username, password string) (*service.AuthResult, error)
}

type ImageService interface {
	Save(context.Context, []service.Upload) ([]string, error)
	Open(context.Context, string) (*service.Image, error)
	Delete(context.Context, string) error
}
