package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/models"
	"github.com/noah-isme/uniplanner-api/pkg/export"
	"github.com/noah-isme/uniplanner-api/pkg/storage"
)

type progressSource interface {
	Map(ctx context.Context, userID string) (*models.SemaforoView, error)
}

type taskSource interface {
	List(ctx context.Context, userID string, pendingOnly bool) ([]models.Task, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, summary ...export.SummaryItem) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult describes a rendered and stored report.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders progress and task reports and stores them behind
// signed download URLs.
type ExportService struct {
	progress progressSource
	tasks    taskSource
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

func NewExportService(progress progressSource, tasks taskSource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		progress: progress,
		tasks:    tasks,
		storage:  store,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Generate renders the report described by job and returns its signed URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, summary, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title, summary...)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, or the configured result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	student := job.Params.StudentID
	if len(student) > 8 {
		student = student[:8]
	}
	if student == "" {
		student = "na"
	}
	return fmt.Sprintf("%s_%s_%s.%s", job.Type, student, s.now().UTC().Format("20060102_150405"), job.Params.Format)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, []export.SummaryItem, error) {
	switch job.Type {
	case models.ReportTypeProgress:
		return s.buildProgressDataset(ctx, job.Params)
	case models.ReportTypeTasks:
		return s.buildTaskDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", nil, fmt.Errorf("unsupported report type %s", job.Type)
	}
}

var progressHeaders = []string{"Semestre", "Código", "Materia", "Créditos", "Estado", "Detalle"}

func (s *ExportService) buildProgressDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, []export.SummaryItem, error) {
	view, err := s.progress.Map(ctx, params.StudentID)
	if err != nil {
		return export.Dataset{}, "", nil, err
	}
	rows := make([]map[string]string, 0, view.Progress.TotalCourses)
	for _, sem := range view.Semesters {
		for _, cs := range sem.Courses {
			rows = append(rows, map[string]string{
				"Semestre": strconv.Itoa(sem.Semester),
				"Código":   cs.Code,
				"Materia":  cs.Name,
				"Créditos": strconv.Itoa(cs.Credits),
				"Estado":   statusLabel(cs.Status.Kind),
				"Detalle":  blockDetail(cs.Status.Reason),
			})
		}
	}
	p := view.Progress
	summary := []export.SummaryItem{
		{Label: "Avance", Value: fmt.Sprintf("%.1f%%", p.CompletionPercent)},
		{Label: "Créditos aprobados", Value: fmt.Sprintf("%d / %d", p.ApprovedCredits, p.TotalCredits)},
		{Label: "Materias aprobadas", Value: strconv.Itoa(p.Approved)},
		{Label: "Cursando", Value: strconv.Itoa(p.InProgress)},
		{Label: "Disponibles", Value: strconv.Itoa(p.Available)},
		{Label: "Bloqueadas", Value: strconv.Itoa(p.Blocked)},
	}
	return export.Dataset{Headers: progressHeaders, Rows: rows}, "Semáforo académico", summary, nil
}

var taskHeaders = []string{"Fecha límite", "Materia", "Tarea", "Tipo", "Horas", "Progreso", "Estado", "Días restantes"}

func (s *ExportService) buildTaskDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, []export.SummaryItem, error) {
	tasks, err := s.tasks.List(ctx, params.StudentID, params.PendingOnly)
	if err != nil {
		return export.Dataset{}, "", nil, err
	}
	rows := make([]map[string]string, 0, len(tasks))
	var pendingHours float64
	pending := 0
	for _, t := range tasks {
		state := "Pendiente"
		if t.Completed {
			state = "Completada"
		} else {
			pending++
			pendingHours += t.EstimatedHours
		}
		rows = append(rows, map[string]string{
			"Fecha límite":   t.DueAt.Format("2006-01-02 15:04"),
			"Materia":        t.CourseName,
			"Tarea":          t.Title,
			"Tipo":           string(t.Type),
			"Horas":          strconv.FormatFloat(t.EstimatedHours, 'f', 1, 64),
			"Progreso":       fmt.Sprintf("%d%%", t.Progress),
			"Estado":         state,
			"Días restantes": strconv.Itoa(t.DaysRemaining),
		})
	}
	summary := []export.SummaryItem{
		{Label: "Tareas", Value: strconv.Itoa(len(tasks))},
		{Label: "Pendientes", Value: strconv.Itoa(pending)},
		{Label: "Horas pendientes", Value: strconv.FormatFloat(pendingHours, 'f', 1, 64)},
	}
	return export.Dataset{Headers: taskHeaders, Rows: rows}, "Tareas", summary, nil
}

func statusLabel(kind curriculum.StatusKind) string {
	switch kind {
	case curriculum.StatusApproved:
		return "Aprobada"
	case curriculum.StatusInProgress:
		return "Cursando"
	case curriculum.StatusAvailable:
		return "Disponible"
	default:
		return "Bloqueada"
	}
}

func blockDetail(reason *curriculum.BlockReason) string {
	if reason == nil {
		return ""
	}
	if reason.InsufficientCredits != nil {
		return fmt.Sprintf("Requiere %d créditos (tiene %d)", reason.InsufficientCredits.Required, reason.InsufficientCredits.Have)
	}
	if len(reason.MissingPrerequisites) > 0 {
		return "Prerrequisitos: " + strings.Join(reason.MissingPrerequisites, ", ")
	}
	return ""
}
