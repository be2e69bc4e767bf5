package domain

import (
	"context"
	"io"
	"path"
	"strings"
	"time"
)

type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusReviewed  ApplicationStatus = "reviewed"
	StatusInterview ApplicationStatus = "interview"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
)

// AllApplicationStatuses returns the closed status set in workflow order.
func AllApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{StatusPending, StatusReviewed, StatusInterview, StatusAccepted, StatusRejected}
}

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	return status, status.Valid()
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusInterview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Label is the employer-facing name.
func (s ApplicationStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusReviewed:
		return "Reviewed"
	case StatusInterview:
		return "Interview"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	}
	return string(s)
}

// StudentLabel is the wording shown to the applicant.
func (s ApplicationStatus) StudentLabel() string {
	switch s {
	case StatusPending:
		return "Pending Review"
	case StatusReviewed:
		return "Under Review"
	case StatusInterview:
		return "Interview Stage"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Not Selected"
	}
	return string(s)
}

func (s ApplicationStatus) Description() string {
	switch s {
	case StatusPending:
		return "Your application has been submitted and is awaiting review."
	case StatusReviewed:
		return "The employer has reviewed your application."
	case StatusInterview:
		return "You have been selected for an interview."
	case StatusAccepted:
		return "Congratulations! Your application has been accepted."
	case StatusRejected:
		return "The employer decided not to move forward with your application."
	}
	return ""
}

const (
	EducationHighSchool = "high_school"
	EducationAssociate  = "associate"
	EducationBachelor   = "bachelor"
	EducationMaster     = "master"
	EducationPhD        = "phd"
)

var EducationLevels = []string{EducationHighSchool, EducationAssociate, EducationBachelor, EducationMaster, EducationPhD}

// JobSummary is the slice of a job embedded in application listings.
type JobSummary struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

type Applicant struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	University string `json:"university,omitempty"`
	Major      string `json:"major,omitempty"`
}

// Application is a read copy of a backend-owned record. It goes stale once a
// status change is acknowledged until the list is fetched again.
type Application struct {
	ID          ID                `json:"id"`
	Job         JobSummary        `json:"job"`
	Applicant   Applicant         `json:"applicant"`
	Status      ApplicationStatus `json:"status"`
	AppliedAt   time.Time         `json:"appliedAt"`
	CoverLetter string            `json:"coverLetter,omitempty"`
	Resume      string            `json:"resume,omitempty"`
}

// ResumeFilename is the last path segment of the resume reference.
func (a Application) ResumeFilename() string {
	if a.Resume == "" {
		return ""
	}
	ref := a.Resume
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	name := path.Base(strings.TrimRight(ref, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

type ResumeFile struct {
	Filename string
	Size     int64
	Content  []byte
}

type ApplicationInput struct {
	JobID          ID          `form:"-"`
	ApplicantName  string      `form:"applicantName" binding:"required,valid_name"`
	ApplicantPhone string      `form:"applicantPhone" binding:"required,valid_phone"`
	ApplicantEmail string      `form:"applicantEmail" binding:"required,email"`
	EducationLevel string      `form:"educationLevel" binding:"required,education_level"`
	CoverLetter    string      `form:"coverLetter" binding:"max=5000"`
	Resume         *ResumeFile `form:"-"`
}

type ApplicationStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Interview int `json:"interview"`
}

type MyApplications struct {
	Applications []Application    `json:"applications"`
	Stats        ApplicationStats `json:"stats"`
}

// StatusChange is one acknowledged entry of an application's status history.
type StatusChange struct {
	Status ApplicationStatus `json:"status"`
	At     time.Time         `json:"at"`
}

// StatusOutcome is what a status change request leaves on screen.
type StatusOutcome struct {
	ApplicationID ID                `json:"applicationId"`
	Displayed     ApplicationStatus `json:"status"`
	Acknowledged  bool              `json:"acknowledged"`
	Notice        string            `json:"notice,omitempty"`
}

type Applicants struct {
	JobID        ID                        `json:"jobId"`
	ViewID       string                    `json:"viewId"`
	Filter       ApplicationStatus         `json:"filter,omitempty"`
	Applications []Application             `json:"applications"`
	Counts       map[ApplicationStatus]int `json:"counts"`
	Total        int                       `json:"total"`
	History      map[ID][]StatusChange     `json:"history"`
}

type ResumeDownload struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Filename      string
}

type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}

const (
	ExportXLSX = "xlsx"
	ExportCSV  = "csv"
)

type ApplicationGateway interface {
	Create(ctx context.Context, input ApplicationInput) (*Application, error)
	ListMine(ctx context.Context) ([]Application, error)
	ListByJob(ctx context.Context, jobID ID) ([]Application, error)
	UpdateStatus(ctx context.Context, id ID, status ApplicationStatus) error
}

type UploadGateway interface {
	Resume(ctx context.Context, filename string) (*ResumeDownload, error)
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, input ApplicationInput) (*Application, error)
	MyApplications(ctx context.Context) (*MyApplications, error)
	Applicants(ctx context.Context, viewID string, jobID ID, filter ApplicationStatus) (*Applicants, error)
	ChangeStatus(ctx context.Context, viewID string, id ID, displayed, target ApplicationStatus) (StatusOutcome, error)
	DownloadResume(ctx context.Context, filename, applicantName string) (*ResumeDownload, error)
	ExportApplicants(ctx context.Context, jobID ID, format string) (*Export, error)
}
