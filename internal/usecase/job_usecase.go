package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/pkg/apperror"
	"go-jobmatch-web/pkg/logger"
)

const trendDays = 7

type jobUsecase struct {
	jobs             domain.JobGateway
	applications     domain.ApplicationGateway
	pageSize         int
	trendConcurrency int
}

func NewJobUsecase(jobs domain.JobGateway, applications domain.ApplicationGateway, pageSize, trendConcurrency int) domain.JobUsecase {
	if pageSize < 1 {
		pageSize = 20
	}
	if trendConcurrency < 1 {
		trendConcurrency = 1
	}
	return &jobUsecase{
		jobs:             jobs,
		applications:     applications,
		pageSize:         pageSize,
		trendConcurrency: trendConcurrency,
	}
}

// Browse asks the backend for one page matching the active predicates.
// Every call is a fresh round trip and results are used as returned.
func (u *jobUsecase) Browse(ctx context.Context, filter domain.JobFilter) (*domain.JobPage, error) {
	return u.jobs.List(ctx, filter.Normalize(), u.pageSize)
}

func (u *jobUsecase) Get(ctx context.Context, id domain.ID) (*domain.Job, error) {
	if id.IsZero() {
		return nil, apperror.NotFound("Job not found")
	}
	return u.jobs.Get(ctx, id)
}

func (u *jobUsecase) Create(ctx context.Context, input domain.JobInput) (*domain.Job, error) {
	input, err := normalizeJobInput(input)
	if err != nil {
		return nil, err
	}
	job, err := u.jobs.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	logger.Log.InfoContext(ctx, "job posted", "job_id", job.ID, "title", input.Title)
	return job, nil
}

func (u *jobUsecase) Update(ctx context.Context, id domain.ID, input domain.JobInput) (*domain.Job, error) {
	if id.IsZero() {
		return nil, apperror.NotFound("Job not found")
	}
	input, err := normalizeJobInput(input)
	if err != nil {
		return nil, err
	}
	return u.jobs.Update(ctx, id, input)
}

// Delete asks the backend to deactivate the job; the record is kept.
func (u *jobUsecase) Delete(ctx context.Context, id domain.ID) error {
	if id.IsZero() {
		return apperror.NotFound("Job not found")
	}
	if err := u.jobs.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.InfoContext(ctx, "job deactivated", "job_id", id)
	return nil
}

// ManageJobs returns the employer's active jobs, each with applications per
// day over the last week. A failed trend fetch leaves that job's trend empty.
func (u *jobUsecase) ManageJobs(ctx context.Context, now time.Time) ([]domain.ManagedJob, error) {
	jobs, err := u.jobs.ListMine(ctx)
	if err != nil {
		return nil, err
	}

	managed := make([]domain.ManagedJob, 0, len(jobs))
	for _, job := range jobs {
		if job.IsActive {
			managed = append(managed, domain.ManagedJob{Job: job, Trend: []domain.DayCount{}})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.trendConcurrency)
	for i := range managed {
		g.Go(func() error {
			apps, err := u.applications.ListByJob(gctx, managed[i].ID)
			if err != nil {
				logger.Log.WarnContext(ctx, "trend unavailable", "job_id", managed[i].ID, "error", err)
				return nil
			}
			managed[i].Trend = DailyTrend(apps, now, trendDays)
			managed[i].HasApplications = len(apps) > 0
			return nil
		})
	}
	_ = g.Wait()

	return managed, nil
}

// DailyTrend counts applications per calendar day for the days days ending at now.
func DailyTrend(apps []domain.Application, now time.Time, days int) []domain.DayCount {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	trend := make([]domain.DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-days+1)
		key := day.Format(time.DateOnly)
		trend[i] = domain.DayCount{
			Date:  key,
			Label: fmt.Sprintf("%d/%d", int(day.Month()), day.Day()),
		}
		index[key] = i
	}
	for _, app := range apps {
		if app.AppliedAt.IsZero() {
			continue
		}
		if i, ok := index[app.AppliedAt.In(loc).Format(time.DateOnly)]; ok {
			trend[i].Count++
		}
	}
	return trend
}

func normalizeJobInput(input domain.JobInput) (domain.JobInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.Type = strings.TrimSpace(input.Type)
	input.WorkType = strings.TrimSpace(input.WorkType)
	input.ExperienceLevel = strings.TrimSpace(input.ExperienceLevel)
	input.ApplicationDeadline = strings.TrimSpace(input.ApplicationDeadline)
	input.SalaryMin = positive(input.SalaryMin)
	input.SalaryMax = positive(input.SalaryMax)
	input.HourlyRate = positive(input.HourlyRate)
	input.Skills = compact(input.Skills)
	input.Requirements = compact(input.Requirements)
	input.Benefits = compact(input.Benefits)

	if input.Title == "" || input.Description == "" || input.Location == "" {
		return input, apperror.Validation("Title, description and location are required")
	}
	if input.WorkType == "" {
		input.WorkType = domain.WorkTypeOnSite
	}
	if input.SalaryMin != nil && input.SalaryMax != nil && *input.SalaryMax <= *input.SalaryMin {
		return input, apperror.Validation("Maximum salary must be greater than minimum salary.")
	}
	return input, nil
}

// positive drops unset or zero amounts so an empty form field counts as absent.
func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

// compact trims entries, splits comma separated ones and drops blanks.
func compact(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
