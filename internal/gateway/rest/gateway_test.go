package rest

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobmatch-web/internal/domain"
)

func TestJobGateway_ListSendsOnlyActivePredicates(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs", r.URL.Path)
		query = r.URL.Query()
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"jobs": []map[string]any{
					{"id": 1, "title": "Data Intern", "type": "Internship"},
					{"id": 2, "title": "QA Intern", "type": "Internship"},
				},
				"pagination": map[string]int{"total": 2, "page": 1},
			},
		})
	})
	gw := NewJobGateway(client)

	page, err := gw.List(context.Background(), domain.JobFilter{Type: "Internship", Location: "  "}, 20)
	require.NoError(t, err)

	assert.Equal(t, []string{"Internship"}, query["type"])
	assert.Equal(t, []string{"1"}, query["page"])
	assert.Equal(t, []string{"20"}, query["limit"])
	assert.NotContains(t, query, "location")
	assert.NotContains(t, query, "experienceLevel")
	assert.NotContains(t, query, "search")

	require.Len(t, page.Jobs, 2)
	for _, job := range page.Jobs {
		assert.Equal(t, domain.JobTypeInternship, job.Type)
		assert.True(t, job.IsActive)
	}
	assert.Equal(t, 2, page.Total)
	assert.False(t, page.LoadMore)
}

func TestJobGateway_ListUnfiltered(t *testing.T) {
	var rawQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	})

	page, err := NewJobGateway(client).List(context.Background(), domain.JobFilter{}, 20)
	require.NoError(t, err)
	assert.Equal(t, "limit=20&page=1", rawQuery)
	assert.Empty(t, page.Jobs)
}

func TestJobGateway_ListMineAcceptsBareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/employer/my-jobs", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "a1", "title": "Backend", "isActive": false, "applicationDeadline": "2030-01-15"},
			},
		})
	})

	jobs, err := NewJobGateway(client).ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.ID("a1"), jobs[0].ID)
	assert.False(t, jobs[0].IsActive)
	require.NotNil(t, jobs[0].ApplicationDeadline)
	assert.Equal(t, time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC), *jobs[0].ApplicationDeadline)
}

func TestApplicationGateway_CreateIsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("jobId"))
		assert.Equal(t, "Ada Lovelace", r.FormValue("applicantName"))
		assert.Equal(t, "bachelor", r.FormValue("educationLevel"))

		file, header, err := r.FormFile("resume")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "cv.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4", string(content))

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "Application submitted successfully",
			"data":    map[string]any{"id": 9, "status": "pending"},
		})
	})

	app, err := NewApplicationGateway(client).Create(context.Background(), domain.ApplicationInput{
		JobID:          "42",
		ApplicantName:  "Ada Lovelace",
		ApplicantPhone: "+1 555 0100",
		ApplicantEmail: "ada@example.com",
		EducationLevel: domain.EducationBachelor,
		CoverLetter:    "Hello",
		Resume:         &domain.ResumeFile{Filename: "cv.pdf", Size: 8, Content: []byte("%PDF-1.4")},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ID("9"), app.ID)
	assert.Equal(t, domain.ID("42"), app.Job.ID)
	assert.Equal(t, domain.StatusPending, app.Status)
}

func TestApplicationGateway_ListByJobMapsMixedFieldNames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/applications/job/5", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{
					"id":           1,
					"status":       "reviewed",
					"student":      map[string]string{"name": "Grace", "email": "grace@example.com", "university": "MIT"},
					"cover_letter": "Hi",
					"resume_url":   "/uploads/resumes/grace-cv.pdf",
					"appliedAt":    "2024-03-01T10:00:00Z",
				},
				{
					"id":              2,
					"status":          "pending",
					"applicant_name":  "Linus",
					"applicant_email": "linus@example.com",
					"applicant_phone": "555",
				},
			},
		})
	})

	apps, err := NewApplicationGateway(client).ListByJob(context.Background(), "5")
	require.NoError(t, err)
	require.Len(t, apps, 2)

	assert.Equal(t, "Grace", apps[0].Applicant.Name)
	assert.Equal(t, "MIT", apps[0].Applicant.University)
	assert.Equal(t, "Hi", apps[0].CoverLetter)
	assert.Equal(t, "grace-cv.pdf", apps[0].ResumeFilename())
	assert.Equal(t, domain.StatusReviewed, apps[0].Status)

	assert.Equal(t, "Linus", apps[1].Applicant.Name)
	assert.Equal(t, "555", apps[1].Applicant.Phone)
}

func TestApplicationGateway_ListMineWrapped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{"applications": []map[string]any{
				{"id": 3, "status": "interview", "job": map[string]any{"id": 8, "title": "SRE", "company": "Acme"}},
			}},
		})
	})

	apps, err := NewApplicationGateway(client).ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "SRE", apps[0].Job.Title)
	assert.Equal(t, domain.ID("8"), apps[0].Job.ID)
}

func TestApplicationGateway_UpdateStatusSendsTargetVerbatim(t *testing.T) {
	var method, path, body string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	err := NewApplicationGateway(client).UpdateStatus(context.Background(), "11", domain.StatusInterview)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/applications/11/status", path)
	assert.JSONEq(t, `{"status":"interview"}`, body)
}

func TestUploadGateway_ResumeStreams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload/resume/cv.pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	})

	download, err := NewUploadGateway(client).Resume(context.Background(), "cv.pdf")
	require.NoError(t, err)
	defer download.Body.Close()

	content, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(content))
	assert.Equal(t, "application/pdf", download.ContentType)
	assert.Equal(t, "cv.pdf", download.Filename)
}

func TestTaskGateway(t *testing.T) {
	var lastMethod, lastPath, lastQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		lastMethod, lastPath, lastQuery = r.Method, r.URL.Path, r.URL.RawQuery
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"tasks": []map[string]any{{"id": 1, "text": "Update resume", "priority": "high"}},
			}})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"id": 1, "text": "Update resume", "completed": true,
			}})
		}
	})
	gw := NewTaskGateway(client)
	ctx := context.Background()

	done := false
	tasks, err := gw.List(ctx, domain.TaskFilter{Completed: &done, Priority: "high"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "completed=false&priority=high", lastQuery)
	assert.Equal(t, domain.DefaultTaskCategory, tasks[0].Category)

	task, err := gw.Toggle(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, lastMethod)
	assert.Equal(t, "/tasks/1/toggle", lastPath)
	assert.True(t, task.Completed)

	require.NoError(t, gw.Delete(ctx, "1"))
	assert.Equal(t, http.MethodDelete, lastMethod)
}

func TestAuthGateway_Login(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"token": "jwt", "userType": "employer"},
		})
	})

	result, err := NewAuthGateway(client).Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", result.Token)
	assert.Equal(t, domain.RoleEmployer, result.UserType)
}

func TestAuthGateway_MeWrapped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"user": map[string]any{"id": 4, "email": "s@x.io", "firstName": "Sam", "userType": "student"}},
		})
	})

	user, err := NewAuthGateway(client).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sam", user.DisplayName())
	assert.Equal(t, domain.RoleStudent, user.UserType)
}
