package usecase

import (
	"context"
	"slices"
	"strings"
	"time"

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/pkg/apperror"
)

type taskUsecase struct {
	tasks domain.TaskGateway
}

func NewTaskUsecase(tasks domain.TaskGateway) domain.TaskUsecase {
	return &taskUsecase{tasks: tasks}
}

func (u *taskUsecase) List(ctx context.Context, filter domain.TaskFilter) (*domain.TaskList, error) {
	tasks, err := u.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.TaskList{Tasks: tasks, Stats: TaskStats(tasks)}, nil
}

// TaskStats counts totals plus the high priority tasks still open.
func TaskStats(tasks []domain.Task) domain.TaskStats {
	stats := domain.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
			continue
		}
		stats.Pending++
		if t.Priority == domain.PriorityHigh {
			stats.HighPriority++
		}
	}
	return stats
}

func (u *taskUsecase) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	input, err := normalizeTaskInput(input)
	if err != nil {
		return nil, err
	}
	task, err := u.tasks.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	if task == nil {
		task = &domain.Task{Text: input.Text, Category: input.Category, Priority: input.Priority, CreatedAt: time.Now()}
	}
	return task, nil
}

func (u *taskUsecase) Update(ctx context.Context, id domain.ID, input domain.TaskInput) (*domain.Task, error) {
	if id.IsZero() {
		return nil, apperror.NotFound("Task not found")
	}
	input, err := normalizeTaskInput(input)
	if err != nil {
		return nil, err
	}
	task, err := u.tasks.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	if task == nil {
		task = &domain.Task{ID: id, Text: input.Text, Category: input.Category, Priority: input.Priority}
	}
	return task, nil
}

func (u *taskUsecase) Delete(ctx context.Context, id domain.ID) error {
	if id.IsZero() {
		return apperror.NotFound("Task not found")
	}
	return u.tasks.Delete(ctx, id)
}

// Toggle flips completion. The task is nil when the backend acknowledges without a body.
func (u *taskUsecase) Toggle(ctx context.Context, id domain.ID) (*domain.Task, error) {
	if id.IsZero() {
		return nil, apperror.NotFound("Task not found")
	}
	return u.tasks.Toggle(ctx, id)
}

func normalizeTaskInput(input domain.TaskInput) (domain.TaskInput, error) {
	input.Text = strings.TrimSpace(input.Text)
	input.Category = strings.TrimSpace(input.Category)
	input.Priority = strings.ToLower(strings.TrimSpace(input.Priority))
	if input.Text == "" {
		return input, apperror.Validation("Task is required")
	}
	if input.Category == "" {
		input.Category = domain.DefaultTaskCategory
	}
	if input.Priority == "" {
		input.Priority = domain.DefaultTaskPriority
	}
	if !slices.Contains(domain.TaskPriorities, input.Priority) {
		return input, apperror.Validation("Priority must be high, medium or low")
	}
	return input, nil
}
