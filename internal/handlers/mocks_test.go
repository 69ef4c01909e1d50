package handlers_test

import (
	"context"
	"net/http"

	"taskManager/internal/auth"
	"taskManager/internal/handlers"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

// MockTaskService - task service mock
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) TasksForCaller(ctx context.Context, callerID, callerEmail string) ([]*task.Task, error) {
	args := m.Called(ctx, callerID, callerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, in service.CreateTaskInput, callerID string) (*task.Task, error) {
	args := m.Called(ctx, in, callerID)
	return taskOrNil(args)
}

func (m *MockTaskService) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	return taskOrNil(args)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id int64, in service.UpdateTaskInput) (*task.Task, error) {
	args := m.Called(ctx, id, in)
	return taskOrNil(args)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) TasksByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) ShareTask(ctx context.Context, id int64, granteeIDs []string, callerID string) (*task.Task, error) {
	args := m.Called(ctx, id, granteeIDs, callerID)
	return taskOrNil(args)
}

func (m *MockTaskService) Stats(ctx context.Context) (service.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.Stats), args.Error(1)
}

func taskOrNil(args mock.Arguments) (*task.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

var _ handlers.TaskService = (*MockTaskService)(nil)

type MockExternalUserService struct {
	mock.Mock
}

func (m *MockExternalUserService) Search(ctx context.Context, term string) ([]*user.ExternalUser, error) {
	args := m.Called(ctx, term)
	return usersOrNil(args)
}

func (m *MockExternalUserService) Active(ctx context.Context) ([]*user.ExternalUser, error) {
	args := m.Called(ctx)
	return usersOrNil(args)
}

func (m *MockExternalUserService) Get(ctx context.Context, id string) (*user.ExternalUser, error) {
	args := m.Called(ctx, id)
	return userOrNil(args)
}

func (m *MockExternalUserService) Create(ctx context.Context, in service.CreateExternalUserInput) (*user.ExternalUser, error) {
	args := m.Called(ctx, in)
	return userOrNil(args)
}

func (m *MockExternalUserService) Update(ctx context.Context, id string, in service.UpdateExternalUserInput) (*user.ExternalUser, error) {
	args := m.Called(ctx, id, in)
	return userOrNil(args)
}

func (m *MockExternalUserService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func usersOrNil(args mock.Arguments) ([]*user.ExternalUser, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.ExternalUser), args.Error(1)
}

func userOrNil(args mock.Arguments) (*user.ExternalUser, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.ExternalUser), args.Error(1)
}

var _ handlers.ExternalUserService = (*MockExternalUserService)(nil)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

var _ handlers.AuthService = (*MockAuthService)(nil)

// withURLParams attaches chi route parameters to a request built outside a router.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withCaller(r *http.Request, subject string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{Subject: subject}))
}
