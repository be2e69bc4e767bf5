package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"go-jobmatch-web/internal/delivery/http/response"
	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	applicationUC  domain.ApplicationUsecase
	maxResumeBytes int64
}

// NewApplicationHandler registers the student's apply and list routes and the
// employer's applicant review routes. uploadLimit guards the resume upload.
func NewApplicationHandler(student, employer *gin.RouterGroup, applicationUC domain.ApplicationUsecase, maxResumeBytes int64, uploadLimit gin.HandlerFunc) {
	handler := &ApplicationHandler{applicationUC: applicationUC, maxResumeBytes: maxResumeBytes}

	student.POST("/jobs/:id/apply", uploadLimit, handler.Apply)
	student.GET("/my-applications", handler.MyApplications)

	employer.GET("/employer/jobs/:id/applicants", handler.Applicants)
	employer.GET("/employer/jobs/:id/applicants/export", handler.Export)
	employer.PATCH("/employer/applications/:id/status", handler.ChangeStatus)
	employer.POST("/employer/applications/:id/status", handler.ChangeStatus)
	employer.GET("/employer/resumes/:filename", handler.DownloadResume)
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Multipart form with the applicant's details and a resume (.pdf, .doc, .docx or .txt, at most 5MB)
// @Tags         applications
// @Accept       multipart/form-data
// @Produce      json
// @Param        id              path      string  true   "Job ID"
// @Param        applicantName   formData  string  true   "Full name"
// @Param        applicantPhone  formData  string  true   "Phone"
// @Param        applicantEmail  formData  string  true   "Email"
// @Param        educationLevel  formData  string  true   "Education level"
// @Param        coverLetter     formData  string  false  "Cover letter"
// @Param        resume          formData  file    true   "Resume"
// @Success      201  {object}  response.Response{data=domain.Application}
// @Failure      422  {object}  response.Response
// @Router       /jobs/{id}/apply [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	jobID, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var input domain.ApplicationInput
	if err := c.ShouldBind(&input); err != nil {
		c.Error(bindError(err))
		return
	}
	input.JobID = jobID

	resume, err := h.readResume(c)
	if err != nil {
		c.Error(err)
		return
	}
	input.Resume = resume

	app, err := h.applicationUC.Apply(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	if response.WantsJSON(c) {
		response.Success(c, http.StatusCreated, "Application submitted successfully", app)
		return
	}
	response.Redirect(c, "/my-applications", "success", "Application submitted successfully!")
}

// readResume loads the uploaded file, reading one byte past the limit so an
// oversized file is still detected. A missing file yields nil.
func (h *ApplicationHandler) readResume(c *gin.Context) (*domain.ResumeFile, error) {
	header, err := c.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.BadRequest("Invalid resume upload")
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("open resume upload: %w", err))
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxResumeBytes+1))
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("read resume upload: %w", err))
	}
	return &domain.ResumeFile{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  content,
	}, nil
}

// MyApplications godoc
// @Summary      The student's applications
// @Tags         applications
// @Produce      json,html
// @Success      200  {object}  response.Response{data=domain.MyApplications}
// @Router       /my-applications [get]
func (h *ApplicationHandler) MyApplications(c *gin.Context) {
	result, err := h.applicationUC.MyApplications(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Render(c, http.StatusOK, "my_applications.html", "Applications retrieved", result)
}

// Applicants godoc
// @Summary      Applicants for a job
// @Description  status narrows the list; counts always cover every application. view identifies the open page for status history.
// @Tags         applications
// @Produce      json,html
// @Param        id      path   string  true   "Job ID"
// @Param        status  query  string  false  "Status filter"
// @Param        view    query  string  false  "View ID"
// @Success      200  {object}  response.Response{data=domain.Applicants}
// @Router       /employer/jobs/{id}/applicants [get]
func (h *ApplicationHandler) Applicants(c *gin.Context) {
	jobID, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	filter, _ := domain.ParseApplicationStatus(c.Query("status"))

	result, err := h.applicationUC.Applicants(c.Request.Context(), strings.TrimSpace(c.Query("view")), jobID, filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Render(c, http.StatusOK, "applicants.html", "Applicants retrieved", result)
}

type statusRequest struct {
	Status  string `json:"status" form:"status" binding:"required"`
	Current string `json:"current" form:"current" binding:"omitempty,oneof=pending reviewed interview accepted rejected"`
	View    string `json:"view" form:"view"`
	JobID   string `json:"jobId" form:"jobId"`
}

// ChangeStatus godoc
// @Summary      Change an application's status
// @Description  The displayed status only moves once the backend acknowledges. A failure leaves it unchanged and returns a notice.
// @Tags         applications
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id    path      string         true  "Application ID"
// @Param        body  body      statusRequest  true  "Status change"
// @Success      200   {object}  response.Response{data=domain.StatusOutcome}
// @Failure      409   {object}  response.Response{data=domain.StatusOutcome}
// @Failure      502   {object}  response.Response{data=domain.StatusOutcome}
// @Router       /employer/applications/{id}/status [patch]
func (h *ApplicationHandler) ChangeStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	target, _ := domain.ParseApplicationStatus(req.Status)
	displayed, _ := domain.ParseApplicationStatus(req.Current)

	// a caller without a view gets its own in-flight slot
	view := req.View
	if view == "" {
		view = uuid.NewString()
	}

	outcome, err := h.applicationUC.ChangeStatus(c.Request.Context(), view, id, displayed, target)
	if err != nil && apperror.IsUnauthorized(err) {
		c.Error(err)
		return
	}

	if response.WantsJSON(c) {
		if err != nil {
			c.JSON(statusCode(err), response.Response{
				Success:   false,
				Message:   outcome.Notice,
				Data:      outcome,
				Error:     response.ErrorBody{Message: outcome.Notice, Kind: string(apperror.KindOf(err))},
				RequestID: requestID(c),
			})
			return
		}
		response.Success(c, http.StatusOK, outcome.Notice, outcome)
		return
	}

	kind := "success"
	if err != nil {
		kind = "error"
	}
	response.Redirect(c, applicantsLocation(c, req), kind, outcome.Notice)
}

// applicantsLocation returns the applicants view the change was made from,
// keeping its view ID so the status history survives the redirect.
func applicantsLocation(c *gin.Context, req statusRequest) string {
	jobID := strings.TrimSpace(req.JobID)
	if jobID == "" {
		return response.Back(c, "/employer/manage-jobs")
	}
	q := url.Values{}
	if req.View != "" {
		q.Set("view", req.View)
	}
	if ref, err := url.Parse(c.GetHeader("Referer")); err == nil {
		if status := ref.Query().Get("status"); status != "" {
			q.Set("status", status)
		}
	}
	location := "/employer/jobs/" + url.PathEscape(jobID) + "/applicants"
	if len(q) > 0 {
		location += "?" + q.Encode()
	}
	return location
}

func statusCode(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusBadGateway
}

// DownloadResume godoc
// @Summary      Download a resume
// @Description  Streams the stored file as {applicant}_resume{ext}
// @Tags         applications
// @Produce      octet-stream
// @Param        filename  path   string  true   "Stored resume filename"
// @Param        name      query  string  false  "Applicant name used for the download filename"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /employer/resumes/{filename} [get]
func (h *ApplicationHandler) DownloadResume(c *gin.Context) {
	download, err := h.applicationUC.DownloadResume(c.Request.Context(), c.Param("filename"), c.Query("name"))
	if err != nil {
		c.Error(err)
		return
	}
	defer download.Body.Close()

	c.DataFromReader(http.StatusOK, download.ContentLength, download.ContentType, download.Body, map[string]string{
		"Content-Disposition": attachment(download.Filename),
	})
}

// Export godoc
// @Summary      Export applicants
// @Tags         applications
// @Produce      octet-stream
// @Param        id      path   string  true   "Job ID"
// @Param        format  query  string  false  "xlsx (default) or csv"
// @Success      200
// @Failure      400  {object}  response.Response
// @Router       /employer/jobs/{id}/applicants/export [get]
func (h *ApplicationHandler) Export(c *gin.Context) {
	jobID, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	export, err := h.applicationUC.ExportApplicants(c.Request.Context(), jobID, c.Query("format"))
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", attachment(export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Content)
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
