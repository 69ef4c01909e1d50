package service_test

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockTaskRepository - task repository mock
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) GetAll(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	return tasksOrNil(args)
}

func (m *MockTaskRepository) GetByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	args := m.Called(ctx, status)
	return tasksOrNil(args)
}

func (m *MockTaskRepository) GetByCreator(ctx context.Context, creatorID string) ([]*task.Task, error) {
	args := m.Called(ctx, creatorID)
	return tasksOrNil(args)
}

func (m *MockTaskRepository) GetByOwnerUser(ctx context.Context, userID int64) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	return tasksOrNil(args)
}

func (m *MockTaskRepository) GetAssignedContaining(ctx context.Context, assignee, excludeCreator string) ([]*task.Task, error) {
	args := m.Called(ctx, assignee, excludeCreator)
	return tasksOrNil(args)
}

func (m *MockTaskRepository) GetAssignedExactly(ctx context.Context, value, excludeCreator string) ([]*task.Task, error) {
	args := m.Called(ctx, value, excludeCreator)
	return tasksOrNil(args)
}

func (m *MockTaskRepository) GetSharedWithContaining(ctx context.Context, grantee, excludeCreator string) ([]*task.Task, error) {
	args := m.Called(ctx, grantee, excludeCreator)
	return tasksOrNil(args)
}

func tasksOrNil(args mock.Arguments) ([]*task.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)
