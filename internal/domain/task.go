package domain

import (
	"context"
	"time"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	DefaultTaskCategory = "custom"
	DefaultTaskPriority = PriorityMedium
)

var (
	TaskPriorities = []string{PriorityHigh, PriorityMedium, PriorityLow}
	TaskCategories = []string{"resume", "application", "interview", "research", "networking", "portfolio", "follow-up", DefaultTaskCategory}
)

// Task is an item on a student's job-search to-do list.
type Task struct {
	ID        ID        `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

type TaskInput struct {
	Text     string `json:"text" form:"text" binding:"required,max=500"`
	Category string `json:"category,omitempty" form:"category"`
	Priority string `json:"priority,omitempty" form:"priority" binding:"omitempty,oneof=high medium low"`
}

// TaskFilter narrows the list. Nil Completed means both states.
type TaskFilter struct {
	Completed *bool  `form:"completed"`
	Category  string `form:"category"`
	Priority  string `form:"priority"`
}

type TaskStats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Pending      int `json:"pending"`
	HighPriority int `json:"highPriority"`
}

type TaskList struct {
	Tasks []Task    `json:"tasks"`
	Stats TaskStats `json:"stats"`
}

type TaskGateway interface {
	List(ctx context.Context, filter TaskFilter) ([]Task, error)
	Create(ctx context.Context, input TaskInput) (*Task, error)
	Update(ctx context.Context, id ID, input TaskInput) (*Task, error)
	Delete(ctx context.Context, id ID) error
	Toggle(ctx context.Context, id ID) (*Task, error)
}

type TaskUsecase interface {
	List(ctx context.Context, filter TaskFilter) (*TaskList, error)
	Create(ctx context.Context, input TaskInput) (*Task, error)
	Update(ctx context.Context, id ID, input TaskInput) (*Task, error)
	Delete(ctx context.Context, id ID) error
	Toggle(ctx context.Context, id ID) (*Task, error)
}
