package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
	Tags        []string
	Images      []string
	AssignedTo  string
	IsPublic    bool
}

// UpdateTaskInput carries a partial update. Nil fields are left untouched;
// a non-nil empty AssignedTo hands the task back to its creator.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
	Tags        []string
	Images      []string
	AssignedTo  []string
	Note        *string
	NoteAuthor  *string
	IsPublic    *bool
}

func (in UpdateTaskInput) options() []task.TaskOption {
	var opts []task.TaskOption
	if in.Title != nil {
		opts = append(opts, task.WithTitle(strings.TrimSpace(*in.Title)))
	}
	if in.Description != nil {
		opts = append(opts, task.WithDescription(*in.Description))
	}
	if in.Status != nil {
		opts = append(opts, task.WithStatusName(*in.Status))
	}
	if in.Priority != nil {
		opts = append(opts, task.WithPriorityName(*in.Priority))
	}
	if in.DueDate != nil {
		opts = append(opts, task.WithDueDate(*in.DueDate))
	}
	if in.Tags != nil {
		opts = append(opts, task.WithTags(in.Tags))
	}
	if in.Images != nil {
		opts = append(opts, task.WithImages(in.Images))
	}
	if in.AssignedTo != nil {
		opts = append(opts, task.WithAssignees(in.AssignedTo))
	}
	if in.Note != nil {
		opts = append(opts, task.WithNote(*in.Note))
	}
	if in.NoteAuthor != nil {
		opts = append(opts, task.WithNoteAuthor(*in.NoteAuthor))
	}
	if in.IsPublic != nil {
		opts = append(opts, task.WithPublic(*in.IsPublic))
	}
	return opts
}

type StatusCount struct {
	Status task.Status
	Count  int
}

type Stats struct {
	Total     int
	Completed int
	Overdue   int
	ByStatus  []StatusCount
}

type TaskService struct {
	repo TaskRepository
	now  func() time.Time
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// TasksForCaller concatenates, in this order, the tasks the caller created,
// tasks assigned to the caller id, tasks assigned exactly to the caller email
// and tasks shared with the caller. A task can appear more than once.
func (s *TaskService) TasksForCaller(ctx context.Context, callerID, callerEmail string) ([]*task.Task, error) {
	created, err := s.repo.GetByCreator(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("tasks created by caller: %w", err)
	}

	assigned, err := s.repo.GetAssignedContaining(ctx, callerID, callerID)
	if err != nil {
		return nil, fmt.Errorf("tasks assigned to caller: %w", err)
	}

	var byEmail []*task.Task
	if strings.TrimSpace(callerEmail) != "" {
		byEmail, err = s.repo.GetAssignedExactly(ctx, callerEmail, callerID)
		if err != nil {
			return nil, fmt.Errorf("tasks assigned to caller email: %w", err)
		}
	}

	shared, err := s.repo.GetSharedWithContaining(ctx, callerID, callerID)
	if err != nil {
		return nil, fmt.Errorf("tasks shared with caller: %w", err)
	}

	result := make([]*task.Task, 0, len(created)+len(assigned)+len(byEmail)+len(shared))
	result = append(result, created...)
	result = append(result, assigned...)
	result = append(result, byEmail...)
	result = append(result, shared...)

	logger.Info("Service: tasks for caller",
		zap.String("caller", callerID),
		zap.Int("created", len(created)),
		zap.Int("assigned", len(assigned)),
		zap.Int("by_email", len(byEmail)),
		zap.Int("shared", len(shared)),
	)
	return result, nil
}

func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput, callerID string) (*task.Task, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateLength("description", in.Description, task.MaxDescriptionLength); err != nil {
		return nil, err
	}

	assignee := strings.TrimSpace(in.AssignedTo)
	if assignee == "" {
		assignee = callerID
	}

	t := task.New(title, task.ExternalOwner(callerID),
		task.WithDescription(in.Description),
		task.WithStatusName(in.Status),
		task.WithPriorityName(in.Priority),
		task.WithTags(in.Tags),
		task.WithImages(in.Images),
		task.WithAssignees([]string{assignee}),
		task.WithPublic(in.IsPublic),
	)
	if due, ok := task.ParseDueDate(in.DueDate); ok {
		t.Apply(task.WithDueTime(due))
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	logger.Info("Service: task created", zap.Int64("task_id", t.ID), zap.String("creator", callerID))
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return t, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id int64, in UpdateTaskInput) (*task.Task, error) {
	if in.Title != nil {
		if err := validateTitle(strings.TrimSpace(*in.Title)); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		if err := validateLength("description", *in.Description, task.MaxDescriptionLength); err != nil {
			return nil, err
		}
	}
	if in.Note != nil {
		if err := validateLength("assignedUserNote", *in.Note, task.MaxNoteLength); err != nil {
			return nil, err
		}
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}

	t.Apply(in.options()...)

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, s.translate(err, id)
	}

	logger.Info("Service: task updated", zap.Int64("task_id", id))
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id)
	}
	logger.Info("Service: task deleted", zap.Int64("task_id", id))
	return nil
}

func (s *TaskService) TasksByStatus(ctx context.Context, status task.Status) ([]*task.Task, error) {
	tasks, err := s.repo.GetByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("tasks by status %s: %w", status, err)
	}
	return tasks, nil
}

// ShareTask adds grantees to the share list. Only the external creator may
// share, and the list keeps its order without duplicates.
func (s *TaskService) ShareTask(ctx context.Context, id int64, granteeIDs []string, callerID string) (*task.Task, error) {
	grantees := make([]string, 0, len(granteeIDs))
	for _, g := range granteeIDs {
		if g = strings.TrimSpace(g); g != "" {
			grantees = append(grantees, g)
		}
	}
	if len(grantees) == 0 {
		return nil, NewValidationError("userIds", "at least one user id is required")
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}

	creator, ok := t.Creator()
	if !ok || creator != callerID {
		logger.Warn("Service: share denied", zap.Int64("task_id", id), zap.String("caller", callerID))
		return nil, NewPermissionDenied("only the task owner can share the task")
	}

	seen := make(map[string]struct{}, len(t.SharedWith)+len(grantees))
	merged := make([]string, 0, len(t.SharedWith)+len(grantees))
	for _, g := range append(append([]string{}, t.SharedWith...), grantees...) {
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		merged = append(merged, g)
	}
	t.SharedWith = merged

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, s.translate(err, id)
	}

	logger.Info("Service: task shared", zap.Int64("task_id", id), zap.Strings("grantees", grantees))
	return t, nil
}

func (s *TaskService) Stats(ctx context.Context) (Stats, error) {
	tasks, err := s.repo.GetAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("task stats: %w", err)
	}

	now := s.now()
	counts := make(map[task.Status]int, len(task.Statuses))
	stats := Stats{Total: len(tasks)}
	for _, t := range tasks {
		counts[t.Status]++
		if t.Status == task.StatusDone {
			stats.Completed++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}

	stats.ByStatus = make([]StatusCount, 0, len(task.Statuses))
	for _, status := range task.Statuses {
		stats.ByStatus = append(stats.ByStatus, StatusCount{Status: status, Count: counts[status]})
	}
	return stats, nil
}

func (s *TaskService) translate(err error, id int64) error {
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: task not found", zap.Int64("target_id", id))
		return NewNotFound("task", id)
	}
	return fmt.Errorf("task %d: %w", id, err)
}

func validateTitle(title string) error {
	if title == "" {
		return NewValidationError("title", "must not be blank")
	}
	return validateLength("title", title, task.MaxTitleLength)
}

func validateLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return NewValidationError(field, fmt.Sprintf("must be at most %d characters", limit))
	}
	return nil
}
