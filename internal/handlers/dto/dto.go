package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"
)

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"dueDate"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	AssignedTo  string   `json:"assignedTo"`
	IsPublic    bool     `json:"isPublic"`
}

func (r CreateTaskRequest) Input() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		Tags:        r.Tags,
		Images:      r.Images,
		AssignedTo:  r.AssignedTo,
		IsPublic:    r.IsPublic,
	}
}

type UpdateTaskRequest struct {
	Title                  *string      `json:"title,omitempty"`
	Description            *string      `json:"description,omitempty"`
	Status                 *string      `json:"status,omitempty"`
	Priority               *string      `json:"priority,omitempty"`
	DueDate                *string      `json:"dueDate,omitempty"`
	Tags                   []string     `json:"tags,omitempty"`
	Images                 []string     `json:"images,omitempty"`
	AssignedTo             AssigneeList `json:"assignedTo,omitempty"`
	AssignedUserNote       *string      `json:"assignedUserNote,omitempty"`
	AssignedUserNoteAuthor *string      `json:"assignedUserNoteAuthor,omitempty"`
	IsPublic               *bool        `json:"isPublic,omitempty"`
}

func (r UpdateTaskRequest) Input() service.UpdateTaskInput {
	return service.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		Tags:        r.Tags,
		Images:      r.Images,
		AssignedTo:  r.AssignedTo,
		Note:        r.AssignedUserNote,
		NoteAuthor:  r.AssignedUserNoteAuthor,
		IsPublic:    r.IsPublic,
	}
}

// AssigneeList accepts either a single id or an array of ids. null leaves
// the list nil; a blank string, or an array of only blank ids, yields an
// empty, non-nil list.
type AssigneeList []string

func (a *AssigneeList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		if strings.TrimSpace(single) == "" {
			*a = AssigneeList{}
			return nil
		}
		*a = AssigneeList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("assignedTo must be a string or an array of strings: %w", err)
	}
	list := make(AssigneeList, 0, len(many))
	for _, id := range many {
		if strings.TrimSpace(id) != "" {
			list = append(list, id)
		}
	}
	*a = list
	return nil
}

type ShareTaskRequest struct {
	UserIDs []string `json:"userIds"`
	Message string   `json:"message"`
}

type TaskResponse struct {
	ID                     int64      `json:"id"`
	LegacyID               string     `json:"_id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	Status                 string     `json:"status"`
	Priority               string     `json:"priority"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
	DueDate                *time.Time `json:"dueDate"`
	CompletedAt            *time.Time `json:"completedAt"`
	ClerkUserID            *string    `json:"clerkUserId"`
	UserID                 *string    `json:"userId"`
	AssignedTo             []string   `json:"assignedTo"`
	AssignedUserNote       *string    `json:"assignedUserNote"`
	AssignedUserNoteAuthor *string    `json:"assignedUserNoteAuthor"`
	Tags                   []string   `json:"tags"`
	Images                 []string   `json:"images"`
	SharedWith             []string   `json:"sharedWith"`
	ShareRequests          []string   `json:"shareRequests"`
	IsPublic               bool       `json:"isPublic"`
	IsSharedWithMe         bool       `json:"isSharedWithMe"`
}

func FromTask(t *task.Task) TaskResponse {
	resp := TaskResponse{
		ID:                     t.ID,
		LegacyID:               strconv.FormatInt(t.ID, 10),
		Title:                  t.Title,
		Description:            t.Description,
		Status:                 string(t.Status),
		Priority:               string(t.Priority),
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
		DueDate:                t.DueDate,
		AssignedTo:             orEmpty(t.AssignedTo),
		AssignedUserNote:       optional(t.Note),
		AssignedUserNoteAuthor: optional(t.NoteAuthor),
		Tags:                   orEmpty(t.Tags),
		Images:                 orEmpty(t.Images),
		SharedWith:             orEmpty(t.SharedWith),
		ShareRequests:          orEmpty(t.ShareRequests),
		IsPublic:               t.IsPublic,
		IsSharedWithMe:         t.IsSharedWithMe,
	}

	if t.Status == task.StatusDone {
		completed := t.UpdatedAt
		resp.CompletedAt = &completed
	}
	if creator, ok := t.Owner.External(); ok {
		resp.ClerkUserID = &creator
	}
	if userID, ok := t.Owner.Local(); ok {
		id := strconv.FormatInt(userID, 10)
		resp.UserID = &id
	}
	return resp
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type StatusStat struct {
	ID    string `json:"_id"`
	Count int    `json:"count"`
}

type StatsResponse struct {
	Total     int          `json:"total"`
	Completed int          `json:"completed"`
	Overdue   int          `json:"overdue"`
	ByStatus  []StatusStat `json:"byStatus"`
}

func FromStats(s service.Stats) StatsResponse {
	byStatus := make([]StatusStat, 0, len(s.ByStatus))
	for _, c := range s.ByStatus {
		byStatus = append(byStatus, StatusStat{ID: c.Status.DisplayName(), Count: c.Count})
	}
	return StatsResponse{
		Total:     s.Total,
		Completed: s.Completed,
		Overdue:   s.Overdue,
		ByStatus:  byStatus,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type CreateExternalUserRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive *bool  `json:"isActive"`
}

type UpdateExternalUserRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}

type ExternalUserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromExternalUser(u *user.ExternalUser) ExternalUserResponse {
	return ExternalUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		IsActive:  u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromExternalUserList(users []*user.ExternalUser) []ExternalUserResponse {
	result := make([]ExternalUserResponse, len(users))
	for i, u := range users {
		result[i] = FromExternalUser(u)
	}
	return result
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
