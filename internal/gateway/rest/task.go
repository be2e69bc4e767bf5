package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"go-jobmatch-web/internal/domain"
)

type taskGateway struct {
	client *Client
}

func NewTaskGateway(client *Client) domain.TaskGateway {
	return &taskGateway{client: client}
}

func (g *taskGateway) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	query := url.Values{}
	if filter.Completed != nil {
		query.Set("completed", strconv.FormatBool(*filter.Completed))
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Priority != "" {
		query.Set("priority", filter.Priority)
	}

	data, err := g.client.do(ctx, http.MethodGet, "/tasks", query, nil)
	if err != nil {
		return nil, err
	}
	var dtos []taskDTO
	if err := decodeList(data, "tasks", &dtos); err != nil {
		return nil, decodeError("tasks", err)
	}
	tasks := make([]domain.Task, 0, len(dtos))
	for _, d := range dtos {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}

func (g *taskGateway) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	data, err := g.client.do(ctx, http.MethodPost, "/tasks", nil, input)
	if err != nil {
		return nil, err
	}
	return decodeTask("created task", data)
}

func (g *taskGateway) Update(ctx context.Context, id domain.ID, input domain.TaskInput) (*domain.Task, error) {
	data, err := g.client.do(ctx, http.MethodPut, taskPath(id), nil, input)
	if err != nil {
		return nil, err
	}
	return decodeTask("updated task", data)
}

func (g *taskGateway) Delete(ctx context.Context, id domain.ID) error {
	_, err := g.client.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
	return err
}

func (g *taskGateway) Toggle(ctx context.Context, id domain.ID) (*domain.Task, error) {
	data, err := g.client.do(ctx, http.MethodPatch, taskPath(id)+"/toggle", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeTask("toggled task", data)
}

func taskPath(id domain.ID) string {
	return "/tasks/" + url.PathEscape(id.String())
}

func decodeTask(op string, data json.RawMessage) (*domain.Task, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var wrapped struct {
		Task *taskDTO `json:"task"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, decodeError(op, err)
	}
	var dto taskDTO
	if wrapped.Task != nil {
		dto = *wrapped.Task
	} else if err := json.Unmarshal(data, &dto); err != nil {
		return nil, decodeError(op, err)
	}
	task := dto.toDomain()
	return &task, nil
}
