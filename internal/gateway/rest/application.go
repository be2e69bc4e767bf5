package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"go-jobmatch-web/internal/domain"
)

type applicationGateway struct {
	client *Client
}

func NewApplicationGateway(client *Client) domain.ApplicationGateway {
	return &applicationGateway{client: client}
}

// Create submits the application as multipart form data with the resume attached.
func (g *applicationGateway) Create(ctx context.Context, input domain.ApplicationInput) (*domain.Application, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := []struct{ name, value string }{
		{"jobId", input.JobID.String()},
		{"applicantName", input.ApplicantName},
		{"applicantPhone", input.ApplicantPhone},
		{"applicantEmail", input.ApplicantEmail},
		{"educationLevel", input.EducationLevel},
		{"coverLetter", input.CoverLetter},
	}
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	if input.Resume != nil {
		part, err := writer.CreateFormFile("resume", input.Resume.Filename)
		if err != nil {
			return nil, fmt.Errorf("create resume part: %w", err)
		}
		if _, err := part.Write(input.Resume.Content); err != nil {
			return nil, fmt.Errorf("write resume part: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := g.client.newRequest(ctx, http.MethodPost, "/applications", nil, body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	data, err := g.client.roundTrip(req)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 || string(data) == "null" {
		return &domain.Application{Job: domain.JobSummary{ID: input.JobID}, Status: domain.StatusPending}, nil
	}
	var wrapped struct {
		Application *applicationDTO `json:"application"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, decodeError("application", err)
	}
	var dto applicationDTO
	if wrapped.Application != nil {
		dto = *wrapped.Application
	} else if err := json.Unmarshal(data, &dto); err != nil {
		return nil, decodeError("application", err)
	}
	app := dto.toDomain()
	if app.Job.ID.IsZero() {
		app.Job.ID = input.JobID
	}
	if app.Status == "" {
		app.Status = domain.StatusPending
	}
	return &app, nil
}

func (g *applicationGateway) ListMine(ctx context.Context) ([]domain.Application, error) {
	return g.list(ctx, "/applications/my-applications")
}

func (g *applicationGateway) ListByJob(ctx context.Context, jobID domain.ID) ([]domain.Application, error) {
	return g.list(ctx, "/applications/job/"+url.PathEscape(jobID.String()))
}

func (g *applicationGateway) list(ctx context.Context, path string) ([]domain.Application, error) {
	data, err := g.client.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var dtos []applicationDTO
	if err := decodeList(data, "applications", &dtos); err != nil {
		return nil, decodeError("applications", err)
	}
	return applicationsToDomain(dtos), nil
}

// UpdateStatus relays the target status verbatim.
func (g *applicationGateway) UpdateStatus(ctx context.Context, id domain.ID, status domain.ApplicationStatus) error {
	payload := map[string]string{"status": string(status)}
	_, err := g.client.do(ctx, http.MethodPatch, "/applications/"+url.PathEscape(id.String())+"/status", nil, payload)
	return err
}
