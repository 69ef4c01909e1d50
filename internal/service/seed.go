package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

const (
	DemoUsername = "demo"
	DemoPassword = "demo123"
	DemoEmail    = "demo@example.com"
)

// SeedDemo creates the demo account and, when it owns nothing yet, a few
// sample tasks. Running it again is a no-op.
func SeedDemo(ctx context.Context, users UserRepository, tasks TaskRepository, passwords PasswordHasher) error {
	demo, err := users.GetByUsername(ctx, DemoUsername)
	switch {
	case errors.Is(err, rep.ErrNotFound):
		hash, err := passwords.Hash(DemoPassword)
		if err != nil {
			return fmt.Errorf("seed demo user: %w", err)
		}
		demo = &user.User{
			Username:     DemoUsername,
			Email:        DemoEmail,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if err := users.Create(ctx, demo); err != nil {
			return fmt.Errorf("seed demo user: %w", err)
		}
		logger.Info("Service: demo user created", zap.Int64("user_id", demo.ID))
	case err != nil:
		return fmt.Errorf("seed demo user: %w", err)
	}

	owned, err := tasks.GetByOwnerUser(ctx, demo.ID)
	if err != nil {
		return fmt.Errorf("seed demo tasks: %w", err)
	}
	if len(owned) > 0 {
		return nil
	}

	owner := task.LocalOwner(demo.ID)
	samples := []*task.Task{
		task.New("Set up the project", owner,
			task.WithDescription("Create the repository and configure the build"),
			task.WithStatus(task.StatusDone),
			task.WithPriority(task.PriorityHigh),
		),
		task.New("Write documentation", owner,
			task.WithDescription("Document the API endpoints"),
			task.WithStatus(task.StatusInProgress),
		),
		task.New("Plan the next release", owner,
			task.WithPriority(task.PriorityLow),
			task.WithDueTime(time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 7)),
		),
	}
	for _, t := range samples {
		if err := tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("seed demo tasks: %w", err)
		}
	}

	logger.Info("Service: demo tasks created", zap.Int("count", len(samples)))
	return nil
}
