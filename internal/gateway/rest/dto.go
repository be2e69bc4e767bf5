package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-jobmatch-web/internal/domain"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// wireTime accepts the timestamp shapes the backend emits, plus null and "".
type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised time %q", raw)
}

func (t wireTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type jobDTO struct {
	ID                  domain.ID `json:"id"`
	EmployerID          domain.ID `json:"employerId"`
	Title               string    `json:"title"`
	Company             string    `json:"company"`
	Location            string    `json:"location"`
	Type                string    `json:"type"`
	WorkType            string    `json:"workType"`
	SalaryMin           *float64  `json:"salaryMin"`
	SalaryMax           *float64  `json:"salaryMax"`
	HourlyRate          *float64  `json:"hourlyRate"`
	ExperienceLevel     string    `json:"experienceLevel"`
	Duration            string    `json:"duration"`
	HoursPerWeek        *int      `json:"hoursPerWeek"`
	StartDate           wireTime  `json:"startDate"`
	ApplicationDeadline wireTime  `json:"applicationDeadline"`
	Description         string    `json:"description"`
	Requirements        []string  `json:"requirements"`
	Skills              []string  `json:"skills"`
	Benefits            []string  `json:"benefits"`
	PostedDate          wireTime  `json:"postedDate"`
	CreatedAt           wireTime  `json:"createdAt"`
	HasApplied          bool      `json:"hasApplied"`
	IsActive            *bool     `json:"isActive"`
}

func (d jobDTO) toDomain() domain.Job {
	posted := d.PostedDate.Time
	if posted.IsZero() {
		posted = d.CreatedAt.Time
	}
	job := domain.Job{
		ID:                  d.ID,
		EmployerID:          d.EmployerID,
		Title:               d.Title,
		Company:             d.Company,
		Location:            d.Location,
		Type:                d.Type,
		WorkType:            d.WorkType,
		SalaryMin:           d.SalaryMin,
		SalaryMax:           d.SalaryMax,
		HourlyRate:          d.HourlyRate,
		ExperienceLevel:     d.ExperienceLevel,
		Duration:            d.Duration,
		HoursPerWeek:        d.HoursPerWeek,
		StartDate:           d.StartDate.ptr(),
		ApplicationDeadline: d.ApplicationDeadline.ptr(),
		Description:         d.Description,
		Requirements:        d.Requirements,
		Skills:              d.Skills,
		Benefits:            d.Benefits,
		PostedDate:          posted,
		HasApplied:          d.HasApplied,
		IsActive:            d.IsActive == nil || *d.IsActive,
	}
	if job.WorkType == "" {
		job.WorkType = domain.WorkTypeOnSite
	}
	return job
}

func jobsToDomain(dtos []jobDTO) []domain.Job {
	jobs := make([]domain.Job, 0, len(dtos))
	for _, d := range dtos {
		jobs = append(jobs, d.toDomain())
	}
	return jobs
}

type studentDTO struct {
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	University string `json:"university"`
	Major      string `json:"major"`
}

func (s studentDTO) name() string {
	if s.Name != "" {
		return s.Name
	}
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// applicationDTO carries both the camelCase and snake_case spellings the
// backend uses for the same application fields.
type applicationDTO struct {
	ID                  domain.ID   `json:"id"`
	JobID               domain.ID   `json:"jobId"`
	Job                 *jobDTO     `json:"job"`
	Student             *studentDTO `json:"student"`
	ApplicantName       string      `json:"applicantName"`
	ApplicantNameSnake  string      `json:"applicant_name"`
	ApplicantEmail      string      `json:"applicantEmail"`
	ApplicantEmailSnake string      `json:"applicant_email"`
	ApplicantPhone      string      `json:"applicantPhone"`
	ApplicantPhoneSnake string      `json:"applicant_phone"`
	Status              string      `json:"status"`
	AppliedAt           wireTime    `json:"appliedAt"`
	CreatedAt           wireTime    `json:"createdAt"`
	CoverLetter         string      `json:"coverLetter"`
	CoverLetterSnake    string      `json:"cover_letter"`
	Resume              string      `json:"resume"`
	ResumeURL           string      `json:"resumeUrl"`
	ResumeURLSnake      string      `json:"resume_url"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (d applicationDTO) toDomain() domain.Application {
	app := domain.Application{
		ID:          d.ID,
		Status:      domain.ApplicationStatus(strings.ToLower(strings.TrimSpace(d.Status))),
		AppliedAt:   d.AppliedAt.Time,
		CoverLetter: firstNonEmpty(d.CoverLetter, d.CoverLetterSnake),
		Resume:      firstNonEmpty(d.ResumeURLSnake, d.ResumeURL, d.Resume),
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = d.CreatedAt.Time
	}

	app.Job.ID = d.JobID
	if d.Job != nil {
		job := d.Job.toDomain()
		app.Job = domain.JobSummary{
			ID:       firstID(job.ID, d.JobID),
			Title:    job.Title,
			Company:  job.Company,
			Location: job.Location,
			Type:     job.Type,
		}
	}

	var student studentDTO
	if d.Student != nil {
		student = *d.Student
	}
	app.Applicant = domain.Applicant{
		Name:       firstNonEmpty(student.name(), d.ApplicantNameSnake, d.ApplicantName),
		Email:      firstNonEmpty(student.Email, d.ApplicantEmailSnake, d.ApplicantEmail),
		Phone:      firstNonEmpty(student.Phone, d.ApplicantPhoneSnake, d.ApplicantPhone),
		University: student.University,
		Major:      student.Major,
	}
	return app
}

func firstID(ids ...domain.ID) domain.ID {
	for _, id := range ids {
		if !id.IsZero() {
			return id
		}
	}
	return ""
}

func applicationsToDomain(dtos []applicationDTO) []domain.Application {
	apps := make([]domain.Application, 0, len(dtos))
	for _, d := range dtos {
		apps = append(apps, d.toDomain())
	}
	return apps
}

type taskDTO struct {
	ID        domain.ID `json:"id"`
	MongoID   domain.ID `json:"_id"`
	Text      string    `json:"text"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	CreatedAt wireTime  `json:"createdAt"`
}

func (d taskDTO) toDomain() domain.Task {
	task := domain.Task{
		ID:        firstID(d.ID, d.MongoID),
		Text:      firstNonEmpty(d.Text, d.Title),
		Completed: d.Completed,
		Category:  d.Category,
		Priority:  d.Priority,
		CreatedAt: d.CreatedAt.Time,
	}
	if task.Category == "" {
		task.Category = domain.DefaultTaskCategory
	}
	if task.Priority == "" {
		task.Priority = domain.DefaultTaskPriority
	}
	return task
}

type userDTO struct {
	ID        domain.ID   `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	UserType  domain.Role `json:"userType"`
	Role      domain.Role `json:"role"`
}

func (d userDTO) toDomain() domain.User {
	role := d.UserType
	if role == "" {
		role = d.Role
	}
	return domain.User{
		ID:        d.ID,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		UserType:  role,
	}
}

type pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
}

type jobListDTO struct {
	Jobs       []jobDTO    `json:"jobs"`
	Total      int         `json:"total"`
	Pagination *pagination `json:"pagination"`
}
