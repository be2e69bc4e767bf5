package web

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go-jobmatch-web/internal/delivery/http/response"
	"go-jobmatch-web/internal/domain"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
	now   func() time.Time
}

// NewJobHandler registers the public listing and the employer's job management routes.
func NewJobHandler(public, employer *gin.RouterGroup, jobUC domain.JobUsecase, now func() time.Time) {
	handler := &JobHandler{jobUC: jobUC, now: now}

	public.GET("/jobs", handler.ListJobs)
	public.GET("/jobs/:id", handler.GetJob)

	employer.GET("/post-job", handler.NewJobForm)
	employer.POST("/jobs", handler.CreateJob)
	employer.GET("/jobs/:id/edit", handler.EditJobForm)
	employer.PUT("/jobs/:id", handler.UpdateJob)
	employer.POST("/jobs/:id/edit", handler.UpdateJob)
	employer.DELETE("/jobs/:id", handler.DeleteJob)
	employer.POST("/jobs/:id/delete", handler.DeleteJob)
	employer.GET("/employer/manage-jobs", handler.ManageJobs)
}

type jobsView struct {
	Filter           domain.JobFilter `json:"filter"`
	Results          *domain.JobPage  `json:"results"`
	NextPage         string           `json:"nextPage,omitempty"`
	JobTypes         []string         `json:"-"`
	ExperienceLevels []string         `json:"-"`
}

type jobView struct {
	Job             *domain.Job `json:"job"`
	EducationLevels []string    `json:"-"`
}

type jobFormView struct {
	Job              *domain.Job `json:"job,omitempty"`
	JobTypes         []string    `json:"jobTypes"`
	ExperienceLevels []string    `json:"experienceLevels"`
}

// nextPageURL keeps the active predicates and advances the page.
func nextPageURL(filter domain.JobFilter) string {
	q := url.Values{}
	for k, v := range filter.Active() {
		q.Set(k, v)
	}
	q.Set("page", strconv.Itoa(filter.Page+1))
	return "/jobs?" + q.Encode()
}

// ListJobs godoc
// @Summary      Browse jobs
// @Description  One backend page per call. Only non-empty filters are sent.
// @Tags         jobs
// @Produce      json,html
// @Param        type             query     string  false  "Job type"
// @Param        location         query     string  false  "Location"
// @Param        experienceLevel  query     string  false  "Experience level"
// @Param        search           query     string  false  "Search text"
// @Param        page             query     int     false  "Page"
// @Success      200  {object}  response.Response{data=jobsView}
// @Failure      502  {object}  response.Response
// @Router       /jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	var filter domain.JobFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(bindError(err))
		return
	}
	filter = filter.Normalize()

	page, err := h.jobUC.Browse(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	view := jobsView{
		Filter:           filter,
		Results:          page,
		JobTypes:         domain.JobTypes,
		ExperienceLevels: domain.ExperienceLevels,
	}
	if page.LoadMore {
		view.NextPage = nextPageURL(filter)
	}
	response.Render(c, http.StatusOK, "jobs.html", "Jobs retrieved", view)
}

// GetJob godoc
// @Summary      Job details
// @Tags         jobs
// @Produce      json,html
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=jobView}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	job, err := h.jobUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Render(c, http.StatusOK, "job.html", "Job retrieved", jobView{Job: job, EducationLevels: domain.EducationLevels})
}

func (h *JobHandler) NewJobForm(c *gin.Context) {
	response.Render(c, http.StatusOK, "post_job.html", "", jobFormView{
		JobTypes:         domain.JobTypes,
		ExperienceLevels: domain.ExperienceLevels,
	})
}

func (h *JobHandler) EditJobForm(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	job, err := h.jobUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Render(c, http.StatusOK, "post_job.html", "", jobFormView{
		Job:              job,
		JobTypes:         domain.JobTypes,
		ExperienceLevels: domain.ExperienceLevels,
	})
}

// CreateJob godoc
// @Summary      Post a job
// @Tags         jobs
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      domain.JobInput  true  "Job"
// @Success      201   {object}  response.Response{data=domain.Job}
// @Failure      422   {object}  response.Response
// @Router       /jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	var input domain.JobInput
	if err := c.ShouldBind(&input); err != nil {
		c.Error(bindError(err))
		return
	}
	job, err := h.jobUC.Create(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	if response.WantsJSON(c) {
		response.Success(c, http.StatusCreated, "Job posted successfully", job)
		return
	}
	response.Redirect(c, "/employer/manage-jobs", "success", "Job posted successfully!")
}

// UpdateJob godoc
// @Summary      Update a job
// @Tags         jobs
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id    path      string           true  "Job ID"
// @Param        body  body      domain.JobInput  true  "Job"
// @Success      200   {object}  response.Response{data=domain.Job}
// @Failure      422   {object}  response.Response
// @Router       /jobs/{id} [put]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var input domain.JobInput
	if err := c.ShouldBind(&input); err != nil {
		c.Error(bindError(err))
		return
	}
	job, err := h.jobUC.Update(c.Request.Context(), id, input)
	if err != nil {
		c.Error(err)
		return
	}
	if response.WantsJSON(c) {
		response.Success(c, http.StatusOK, "Job updated", job)
		return
	}
	response.Redirect(c, "/employer/manage-jobs", "success", "Job updated successfully!")
}

// DeleteJob godoc
// @Summary      Delete a job
// @Description  The backend deactivates the job; it disappears from manage-jobs.
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.jobUC.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	if response.WantsJSON(c) {
		response.Success(c, http.StatusOK, "Job deleted", nil)
		return
	}
	response.Redirect(c, "/employer/manage-jobs", "success", "Job deleted successfully")
}

// ManageJobs godoc
// @Summary      Employer's active jobs
// @Description  Each job carries applications per day for the last seven days.
// @Tags         jobs
// @Produce      json,html
// @Success      200  {object}  response.Response{data=[]domain.ManagedJob}
// @Router       /employer/manage-jobs [get]
func (h *JobHandler) ManageJobs(c *gin.Context) {
	jobs, err := h.jobUC.ManageJobs(c.Request.Context(), h.now())
	if err != nil {
		c.Error(err)
		return
	}
	response.Render(c, http.StatusOK, "manage_jobs.html", "Jobs retrieved", jobs)
}
