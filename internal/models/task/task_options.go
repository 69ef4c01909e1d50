package task

import (
	"strings"
	"time"
)

// TaskOption mutates a task. Constructors return nil when the value should
// leave the task untouched; Apply skips nil options.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

// WithStatusName ignores names that are not a known status.
func WithStatusName(name string) TaskOption {
	status, ok := ParseStatus(name)
	if !ok {
		return nil
	}
	return WithStatus(status)
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithPriorityName(name string) TaskOption {
	priority, ok := ParsePriority(name)
	if !ok {
		return nil
	}
	return WithPriority(priority)
}

// WithDueDate clears the due date for an empty value, sets it for a
// YYYY-MM-DD value and ignores anything else.
func WithDueDate(raw string) TaskOption {
	if strings.TrimSpace(raw) == "" {
		return func(task *Task) {
			task.DueDate = nil
		}
	}
	due, ok := ParseDueDate(raw)
	if !ok {
		return nil
	}
	return WithDueTime(due)
}

func WithDueTime(due time.Time) TaskOption {
	return func(task *Task) {
		task.DueDate = &due
	}
}

func WithTags(tags []string) TaskOption {
	return func(task *Task) {
		task.Tags = nonNil(tags)
	}
}

func WithImages(images []string) TaskOption {
	return func(task *Task) {
		task.Images = nonNil(images)
	}
}

// WithAssignees replaces the assignee set. Blank entries are dropped, and a
// set left empty hands the task back to its creator.
func WithAssignees(assignees []string) TaskOption {
	return func(task *Task) {
		kept := make([]string, 0, len(assignees))
		for _, a := range assignees {
			if strings.TrimSpace(a) != "" {
				kept = append(kept, a)
			}
		}
		if len(kept) > 0 {
			task.AssignedTo = kept
			return
		}
		if creator, ok := task.Creator(); ok {
			task.AssignedTo = []string{creator}
			return
		}
		task.AssignedTo = []string{}
	}
}

func WithNote(note string) TaskOption {
	return func(task *Task) {
		task.Note = note
	}
}

func WithNoteAuthor(author string) TaskOption {
	return func(task *Task) {
		task.NoteAuthor = author
	}
}

func WithPublic(public bool) TaskOption {
	return func(task *Task) {
		task.IsPublic = public
	}
}

func nonNil(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
