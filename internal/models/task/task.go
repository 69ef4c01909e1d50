package task

import (
	"strings"
	"time"
)

const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 3000
	MaxNoteLength        = 1000
)

// DueDateLayout is the calendar date format accepted for due dates.
const DueDateLayout = "2006-01-02"

type Task struct {
	ID             int64
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DueDate        *time.Time
	Owner          Owner
	AssignedTo     []string
	Tags           []string
	Images         []string
	SharedWith     []string
	ShareRequests  []string
	IsPublic       bool
	IsSharedWithMe bool
	Note           string
	NoteAuthor     string
}

// New builds a task with default status and priority.
func New(title string, owner Owner, options ...TaskOption) *Task {
	now := time.Now().UTC()
	t := &Task{
		Title:         title,
		Status:        StatusTodo,
		Priority:      PriorityMedium,
		CreatedAt:     now,
		UpdatedAt:     now,
		Owner:         owner,
		AssignedTo:    []string{},
		Tags:          []string{},
		Images:        []string{},
		SharedWith:    []string{},
		ShareRequests: []string{},
	}
	t.Apply(options...)
	return t
}

// Apply runs the options in order; nil options are no-ops.
func (t *Task) Apply(options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}

// Creator returns the external creator id, if the task has one.
func (t *Task) Creator() (string, bool) {
	return t.Owner.External()
}

// IsOverdue reports whether the due date has passed on an unfinished task.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusDone
}

// ParseDueDate parses a YYYY-MM-DD date to start of day UTC.
func ParseDueDate(raw string) (time.Time, bool) {
	d, err := time.Parse(DueDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return d.UTC(), true
}

type OwnerKind int

const (
	OwnerNone OwnerKind = iota
	OwnerLocal
	OwnerExternal
)

// Owner is either a local user (password login) or an external subject id.
type Owner struct {
	kind    OwnerKind
	userID  int64
	subject string
}

func LocalOwner(userID int64) Owner {
	return Owner{kind: OwnerLocal, userID: userID}
}

func ExternalOwner(subject string) Owner {
	return Owner{kind: OwnerExternal, subject: subject}
}

func (o Owner) Kind() OwnerKind { return o.kind }

func (o Owner) Local() (int64, bool) {
	return o.userID, o.kind == OwnerLocal
}

func (o Owner) External() (string, bool) {
	return o.subject, o.kind == OwnerExternal
}

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusCancelled}

var statusAliases = map[string]Status{
	"TODO":         StatusTodo,
	"IN_PROGRESS":  StatusInProgress,
	"DONE":         StatusDone,
	"CANCELLED":    StatusCancelled,
	"DO_ZROBIENIA": StatusTodo,
	"W_TRAKCIE":    StatusInProgress,
	"ZAKONCZONE":   StatusDone,
	"ANULOWANE":    StatusCancelled,
}

// ParseStatus looks a status up case-insensitively, accepting legacy names.
func ParseStatus(raw string) (Status, bool) {
	s, ok := statusAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return s, ok
}

// StoredNames returns every column value that decodes to s, including
// legacy names.
func (s Status) StoredNames() []string {
	names := []string{string(s)}
	for alias, status := range statusAliases {
		if status == s && alias != string(s) {
			names = append(names, alias)
		}
	}
	return names
}

func (s Status) DisplayName() string {
	switch s {
	case StatusTodo:
		return "todo"
	case StatusInProgress:
		return "in progress"
	case StatusDone:
		return "done"
	case StatusCancelled:
		return "cancelled"
	}
	return strings.ToLower(string(s))
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var priorityAliases = map[string]Priority{
	"LOW":       PriorityLow,
	"MEDIUM":    PriorityMedium,
	"HIGH":      PriorityHigh,
	"CRITICAL":  PriorityCritical,
	"NISKI":     PriorityLow,
	"SREDNI":    PriorityMedium,
	"WYSOKI":    PriorityHigh,
	"KRYTYCZNY": PriorityCritical,
}

func ParsePriority(raw string) (Priority, bool) {
	p, ok := priorityAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return p, ok
}
