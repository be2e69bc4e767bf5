package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/internal/workflow"
	"go-jobmatch-web/pkg/apperror"
	"go-jobmatch-web/pkg/logger"
	"go-jobmatch-web/pkg/security"
)

type applicationUsecase struct {
	applications   domain.ApplicationGateway
	uploads        domain.UploadGateway
	workflow       *workflow.Workflow
	maxResumeBytes int64
	now            func() time.Time
}

func NewApplicationUsecase(
	applications domain.ApplicationGateway,
	uploads domain.UploadGateway,
	wf *workflow.Workflow,
	maxResumeBytes int64,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		applications:   applications,
		uploads:        uploads,
		workflow:       wf,
		maxResumeBytes: maxResumeBytes,
		now:            time.Now,
	}
}

// Apply checks the form the way the application dialog does before it is
// sent: a resume is required and must pass the file checks.
func (u *applicationUsecase) Apply(ctx context.Context, input domain.ApplicationInput) (*domain.Application, error) {
	if input.JobID.IsZero() {
		return nil, apperror.NotFound("Job not found")
	}
	input.ApplicantName = strings.TrimSpace(input.ApplicantName)
	input.ApplicantPhone = strings.TrimSpace(input.ApplicantPhone)
	input.ApplicantEmail = strings.TrimSpace(input.ApplicantEmail)
	input.CoverLetter = strings.TrimSpace(input.CoverLetter)

	if input.Resume == nil {
		return nil, apperror.Validation("Resume file is required")
	}
	check := security.ValidateResume(input.Resume.Filename, input.Resume.Content, u.maxResumeBytes)
	if !check.Valid {
		requestID, _ := ctx.Value(domain.KeyRequestID).(string)
		security.DefaultLogger().Log(ctx, security.SecurityEvent{
			Event:     security.EventUploadRejected,
			RequestID: requestID,
			Details: map[string]any{
				"job_id":        input.JobID.String(),
				"extension":     check.Extension,
				"detected_mime": check.DetectedMIME,
				"reason":        check.Error,
			},
		})
		return nil, apperror.Validation(check.Error)
	}
	input.Resume.Filename = path.Base(strings.ReplaceAll(input.Resume.Filename, "\\", "/"))

	app, err := u.applications.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	logger.Log.InfoContext(ctx, "application submitted", "job_id", input.JobID, "application_id", app.ID)
	return app, nil
}

func (u *applicationUsecase) MyApplications(ctx context.Context) (*domain.MyApplications, error) {
	apps, err := u.applications.ListMine(ctx)
	if err != nil {
		return nil, err
	}
	stats := domain.ApplicationStats{Total: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusInterview:
			stats.Interview++
		}
	}
	return &domain.MyApplications{Applications: apps, Stats: stats}, nil
}

// Applicants lists a job's applications for one view instance. Counts cover
// every application; the list is narrowed to filter when it is a valid status.
func (u *applicationUsecase) Applicants(ctx context.Context, viewID string, jobID domain.ID, filter domain.ApplicationStatus) (*domain.Applicants, error) {
	if jobID.IsZero() {
		return nil, apperror.NotFound("Job not found")
	}
	if viewID == "" {
		viewID = uuid.NewString()
	}

	apps, err := u.applications.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result := &domain.Applicants{
		JobID:        jobID,
		ViewID:       viewID,
		Applications: make([]domain.Application, 0, len(apps)),
		Counts:       make(map[domain.ApplicationStatus]int, len(domain.AllApplicationStatuses())),
		Total:        len(apps),
		History:      make(map[domain.ID][]domain.StatusChange, len(apps)),
	}
	for _, status := range domain.AllApplicationStatuses() {
		result.Counts[status] = 0
	}
	if filter.Valid() {
		result.Filter = filter
	}

	history := u.workflow.History()
	for _, app := range apps {
		result.Counts[app.Status]++
		history.Seed(viewID, app.ID, app.Status)
		result.History[app.ID] = history.Entries(viewID, app.ID)
		if result.Filter == "" || app.Status == result.Filter {
			result.Applications = append(result.Applications, app)
		}
	}
	return result, nil
}

func (u *applicationUsecase) ChangeStatus(ctx context.Context, viewID string, id domain.ID, displayed, target domain.ApplicationStatus) (domain.StatusOutcome, error) {
	return u.workflow.RequestStatusChange(ctx, viewID, id, displayed, target)
}

// DownloadResume streams the stored file under "<applicant>_resume<ext>".
func (u *applicationUsecase) DownloadResume(ctx context.Context, filename, applicantName string) (*domain.ResumeDownload, error) {
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if clean == "" || clean == "." || clean == "/" || clean == ".." {
		return nil, apperror.NotFound("Resume not found")
	}

	download, err := u.uploads.Resume(ctx, clean)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(clean))
	if ext == "" {
		ext = ".pdf"
	}
	name := safeFilename(applicantName)
	if name == "" {
		name = "applicant"
	}
	download.Filename = name + "_resume" + ext
	return download, nil
}

var exportColumns = []string{"Name", "Email", "Phone", "University", "Major", "Status", "Applied At", "Resume"}

func (u *applicationUsecase) ExportApplicants(ctx context.Context, jobID domain.ID, format string) (*domain.Export, error) {
	if jobID.IsZero() {
		return nil, apperror.NotFound("Job not found")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = domain.ExportXLSX
	}
	if format != domain.ExportXLSX && format != domain.ExportCSV {
		return nil, apperror.BadRequest("Export format must be xlsx or csv")
	}

	apps, err := u.applications.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(apps))
	for _, app := range apps {
		applied := ""
		if !app.AppliedAt.IsZero() {
			applied = app.AppliedAt.Format(time.DateOnly)
		}
		rows = append(rows, []string{
			app.Applicant.Name,
			app.Applicant.Email,
			app.Applicant.Phone,
			app.Applicant.University,
			app.Applicant.Major,
			app.Status.Label(),
			applied,
			app.ResumeFilename(),
		})
	}

	stamp := u.now().Format("20060102_150405")
	base := fmt.Sprintf("applicants_%s_%s", safeFilename(jobID.String()), stamp)
	if format == domain.ExportCSV {
		content, err := exportCSV(rows)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return &domain.Export{Filename: base + ".csv", ContentType: "text/csv", Content: content}, nil
	}

	content, err := exportXLSX(rows)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.Export{
		Filename:    base + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

func exportXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applicants"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#2C3E50"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}
	return buf.Bytes(), nil
}

// safeFilename keeps letters, digits, dash and underscore; spaces become underscores.
func safeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return b.String()
}
