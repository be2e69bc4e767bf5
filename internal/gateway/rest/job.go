package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"go-jobmatch-web/internal/domain"
)

type jobGateway struct {
	client *Client
}

func NewJobGateway(client *Client) domain.JobGateway {
	return &jobGateway{client: client}
}

// jobQuery sends only the active predicates plus page and limit.
func jobQuery(filter domain.JobFilter, limit int) url.Values {
	query := url.Values{}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	for key, value := range filter.Active() {
		query.Set(key, value)
	}
	return query
}

func (g *jobGateway) List(ctx context.Context, filter domain.JobFilter, limit int) (*domain.JobPage, error) {
	filter = filter.Normalize()
	data, err := g.client.do(ctx, http.MethodGet, "/jobs", jobQuery(filter, limit), nil)
	if err != nil {
		return nil, err
	}

	var dtos []jobDTO
	total := 0
	if isArray(data) {
		if err := json.Unmarshal(data, &dtos); err != nil {
			return nil, decodeError("job list", err)
		}
	} else if len(data) > 0 {
		var list jobListDTO
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, decodeError("job list", err)
		}
		dtos = list.Jobs
		total = list.Total
		if list.Pagination != nil && list.Pagination.Total > 0 {
			total = list.Pagination.Total
		}
	}
	full := limit > 0 && len(dtos) >= limit
	loadMore := full && (total == 0 || total > filter.Page*limit)
	if total < len(dtos) {
		total = len(dtos)
	}

	return &domain.JobPage{
		Jobs:     jobsToDomain(dtos),
		Page:     filter.Page,
		Limit:    limit,
		Total:    total,
		LoadMore: loadMore,
	}, nil
}

func (g *jobGateway) Get(ctx context.Context, id domain.ID) (*domain.Job, error) {
	data, err := g.client.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id.String()), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJob("job", data)
}

func (g *jobGateway) Create(ctx context.Context, input domain.JobInput) (*domain.Job, error) {
	data, err := g.client.do(ctx, http.MethodPost, "/jobs", nil, input)
	if err != nil {
		return nil, err
	}
	return decodeJob("created job", data)
}

func (g *jobGateway) Update(ctx context.Context, id domain.ID, input domain.JobInput) (*domain.Job, error) {
	data, err := g.client.do(ctx, http.MethodPut, "/jobs/"+url.PathEscape(id.String()), nil, input)
	if err != nil {
		return nil, err
	}
	return decodeJob("updated job", data)
}

func (g *jobGateway) Delete(ctx context.Context, id domain.ID) error {
	_, err := g.client.do(ctx, http.MethodDelete, "/jobs/"+url.PathEscape(id.String()), nil, nil)
	return err
}

func (g *jobGateway) ListMine(ctx context.Context) ([]domain.Job, error) {
	data, err := g.client.do(ctx, http.MethodGet, "/jobs/employer/my-jobs", nil, nil)
	if err != nil {
		return nil, err
	}
	var dtos []jobDTO
	if err := decodeList(data, "jobs", &dtos); err != nil {
		return nil, decodeError("employer jobs", err)
	}
	return jobsToDomain(dtos), nil
}

// decodeJob reads a job that may be wrapped as {"job": {...}}. A write
// acknowledged without a body yields an empty job rather than an error.
func decodeJob(op string, data json.RawMessage) (*domain.Job, error) {
	if len(data) == 0 || string(data) == "null" {
		return &domain.Job{IsActive: true}, nil
	}
	var wrapped struct {
		Job *jobDTO `json:"job"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, decodeError(op, err)
	}
	if wrapped.Job != nil {
		job := wrapped.Job.toDomain()
		return &job, nil
	}
	var dto jobDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, decodeError(op, err)
	}
	job := dto.toDomain()
	return &job, nil
}

func isArray(data json.RawMessage) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
