package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	JobTypeFullTime   = "Full-time"
	JobTypePartTime   = "Part-time"
	JobTypeInternship = "Internship"
	JobTypeContract   = "Contract"

	ExperienceEntry  = "Entry Level"
	ExperienceMid    = "Mid Level"
	ExperienceSenior = "Senior Level"

	WorkTypeOnSite = "On-site"

	summaryLength = 150
)

var (
	JobTypes         = []string{JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract}
	ExperienceLevels = []string{ExperienceEntry, ExperienceMid, ExperienceSenior}
)

type Job struct {
	ID                  ID         `json:"id"`
	EmployerID          ID         `json:"employerId,omitempty"`
	Title               string     `json:"title"`
	Company             string     `json:"company"`
	Location            string     `json:"location"`
	Type                string     `json:"type"`
	WorkType            string     `json:"workType"`
	SalaryMin           *float64   `json:"salaryMin,omitempty"`
	SalaryMax           *float64   `json:"salaryMax,omitempty"`
	HourlyRate          *float64   `json:"hourlyRate,omitempty"`
	ExperienceLevel     string     `json:"experienceLevel"`
	Duration            string     `json:"duration,omitempty"`
	HoursPerWeek        *int       `json:"hoursPerWeek,omitempty"`
	StartDate           *time.Time `json:"startDate,omitempty"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	Description         string     `json:"description"`
	Requirements        []string   `json:"requirements"`
	Skills              []string   `json:"skills"`
	Benefits            []string   `json:"benefits"`
	PostedDate          time.Time  `json:"postedDate"`
	HasApplied          bool       `json:"hasApplied"`
	IsActive            bool       `json:"isActive"`
}

// SalaryDisplay renders the compensation the way job cards show it.
func (j Job) SalaryDisplay() string {
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin > 0 && *j.SalaryMax > 0 {
		return fmt.Sprintf("$%s - $%s", groupThousands(*j.SalaryMin), groupThousands(*j.SalaryMax))
	}
	if j.HourlyRate != nil && *j.HourlyRate > 0 {
		return fmt.Sprintf("$%s/hour", trimFloat(*j.HourlyRate))
	}
	return "Salary negotiable"
}

// DaysLeft is the number of days until the deadline rounded up, or nil without a deadline.
func (j Job) DaysLeft(now time.Time) *int {
	if j.ApplicationDeadline == nil {
		return nil
	}
	days := int(math.Ceil(j.ApplicationDeadline.Sub(now).Hours() / 24))
	return &days
}

// DeadlinePassed reports whether applications are closed.
func (j Job) DeadlinePassed(now time.Time) bool {
	days := j.DaysLeft(now)
	return days != nil && *days < 0
}

// CanApply reports whether the apply control is enabled.
func (j Job) CanApply(now time.Time) bool {
	return !j.HasApplied && !j.DeadlinePassed(now)
}

// Summary is the collapsed description shown before "Read More".
func (j Job) Summary() string {
	if utf8.RuneCountInString(j.Description) <= summaryLength {
		return j.Description
	}
	runes := []rune(j.Description)
	return string(runes[:summaryLength]) + "..."
}

// JobFilter holds the listing predicates. Empty fields are inactive.
type JobFilter struct {
	Type            string `form:"type" json:"type,omitempty"`
	Location        string `form:"location" json:"location,omitempty"`
	ExperienceLevel string `form:"experienceLevel" json:"experienceLevel,omitempty"`
	Search          string `form:"search" json:"search,omitempty"`
	Page            int    `form:"page" json:"page,omitempty"`
}

// Normalize trims every predicate so whitespace-only input counts as empty.
func (f JobFilter) Normalize() JobFilter {
	f.Type = strings.TrimSpace(f.Type)
	f.Location = strings.TrimSpace(f.Location)
	f.ExperienceLevel = strings.TrimSpace(f.ExperienceLevel)
	f.Search = strings.TrimSpace(f.Search)
	if f.Page < 1 {
		f.Page = 1
	}
	return f
}

// Active returns the non-empty predicates keyed by their query parameter name.
func (f JobFilter) Active() map[string]string {
	active := map[string]string{}
	if f.Type != "" {
		active["type"] = f.Type
	}
	if f.Location != "" {
		active["location"] = f.Location
	}
	if f.ExperienceLevel != "" {
		active["experienceLevel"] = f.ExperienceLevel
	}
	if f.Search != "" {
		active["search"] = f.Search
	}
	return active
}

func (f JobFilter) IsZero() bool {
	return len(f.Active()) == 0
}

type JobPage struct {
	Jobs     []Job `json:"jobs"`
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	Total    int   `json:"total"`
	LoadMore bool  `json:"loadMore"`
}

// JobInput is what an employer submits. Empty optional fields are omitted from the request.
type JobInput struct {
	Title               string   `json:"title" form:"title" binding:"required,max=200,no_emoji"`
	Description         string   `json:"description" form:"description" binding:"required"`
	Location            string   `json:"location" form:"location" binding:"required"`
	Type                string   `json:"type,omitempty" form:"type" binding:"omitempty,job_type"`
	WorkType            string   `json:"workType,omitempty" form:"workType"`
	ExperienceLevel     string   `json:"experienceLevel,omitempty" form:"experienceLevel" binding:"omitempty,experience_level"`
	SalaryMin           *float64 `json:"salaryMin,omitempty" form:"salaryMin" binding:"omitempty,gte=0"`
	SalaryMax           *float64 `json:"salaryMax,omitempty" form:"salaryMax" binding:"omitempty,gte=0"`
	HourlyRate          *float64 `json:"hourlyRate,omitempty" form:"hourlyRate" binding:"omitempty,gte=0"`
	ApplicationDeadline string   `json:"applicationDeadline,omitempty" form:"applicationDeadline" binding:"omitempty,datetime=2006-01-02"`
	Skills              []string `json:"skills,omitempty" form:"skills"`
	Requirements        []string `json:"requirements,omitempty" form:"requirements"`
	Benefits            []string `json:"benefits,omitempty" form:"benefits"`
}

// DayCount is one point of an applications-per-day trend.
type DayCount struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ManagedJob is an employer's job together with its recent application trend.
type ManagedJob struct {
	Job
	Trend           []DayCount `json:"trend"`
	HasApplications bool       `json:"hasApplications"`
}

type JobGateway interface {
	List(ctx context.Context, filter JobFilter, limit int) (*JobPage, error)
	Get(ctx context.Context, id ID) (*Job, error)
	Create(ctx context.Context, input JobInput) (*Job, error)
	Update(ctx context.Context, id ID, input JobInput) (*Job, error)
	Delete(ctx context.Context, id ID) error
	ListMine(ctx context.Context) ([]Job, error)
}

type JobUsecase interface {
	Browse(ctx context.Context, filter JobFilter) (*JobPage, error)
	Get(ctx context.Context, id ID) (*Job, error)
	Create(ctx context.Context, input JobInput) (*Job, error)
	Update(ctx context.Context, id ID, input JobInput) (*Job, error)
	Delete(ctx context.Context, id ID) error
	ManageJobs(ctx context.Context, now time.Time) ([]ManagedJob, error)
}

func groupThousands(v float64) string {
	s := trimFloat(math.Round(v))
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
