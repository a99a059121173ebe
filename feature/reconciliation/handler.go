package reconciliation

import (
	"sheet-reconciler/core/job"
	"sheet-reconciler/core/logger"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/report"

	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation jobs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the reconciliation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/reconcile/jobs")
	group.Get("/", h.HandleListJobs)
	group.Post("/:name/run", h.HandleRunJob)
	group.Get("/:name/records", h.HandleRecords)
	group.Get("/:name/report", h.HandleReport)
}

// RunResponse is returned by a run request.
type RunResponse struct {
	RunID     string            `json:"run_id"`
	Job       string            `json:"job"`
	Shared    bool              `json:"shared"`
	Summary   reconcile.Summary `json:"summary"`
	Issues    []reconcile.Issue `json:"issues"`
	Pages     int               `json:"pages"`
	Published []string          `json:"published,omitempty"`
}

// HandleListJobs lists the job catalog.
// @Summary List Jobs
// @Description Lists the job definition files of the jobs directory. Invalid files are listed with their error.
// @Tags reconcile
// @Produce json
// @Success 200 {array} job.Entry
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reconcile/jobs [get]
func (h *Handler) HandleListJobs(c *fiber.Ctx) error {
	entries, err := h.service.Jobs()
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Listing jobs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if entries == nil {
		entries = []job.Entry{}
	}
	return c.JSON(entries)
}

// HandleRunJob runs a job.
// @Summary Run Job
// @Description Runs a reconciliation job and returns its summary and issues. Concurrent requests for the same job share one run.
// @Tags reconcile
// @Produce json
// @Param name path string true "Job name"
// @Success 200 {object} RunResponse
// @Failure 404 {object} map[string]string "Job not found"
// @Failure 422 {object} map[string]string "Invalid job definition"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reconcile/jobs/{name}/run [post]
func (h *Handler) HandleRunJob(c *fiber.Ctx) error {
	name := c.Params("name")
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Running job", zap.String("job", name))

	out, err := h.service.Run(c.Context(), name, l)
	if err != nil {
		return h.fail(c, l, err)
	}

	res := out.Result
	size := h.service.env.Config.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	issues := res.Issues
	if issues == nil {
		issues = []reconcile.Issue{}
	}
	return c.JSON(RunResponse{
		RunID:     res.RunID,
		Job:       name,
		Shared:    out.Shared,
		Summary:   res.Summary,
		Issues:    issues,
		Pages:     len(reconcile.Pages(res.Records, size)),
		Published: out.Published,
	})
}

// HandleRecords pages through the last result of a job.
// @Summary Job Records
// @Description Returns one page of the discrepancy records of the job's last run.
// @Tags reconcile
// @Produce json
// @Param name path string true "Job name"
// @Param page query int false "1-based page" default(1)
// @Param size query int false "Page size"
// @Success 200 {object} Page
// @Failure 404 {object} map[string]string "No result for the job"
// @Router /reconcile/jobs/{name}/records [get]
func (h *Handler) HandleRecords(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	page, err := h.service.Page(c.Params("name"), c.QueryInt("page", 1), c.QueryInt("size", 0))
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(page)
}

// HandleReport downloads the last result of a job.
// @Summary Job Report
// @Description Renders the job's last run as a downloadable report.
// @Tags reconcile
// @Produce octet-stream
// @Param name path string true "Job name"
// @Param format query string false "csv, json, yaml, xlsx or table" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} map[string]string "Invalid format"
// @Failure 404 {object} map[string]string "No result for the job"
// @Router /reconcile/jobs/{name}/report [get]
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	name := c.Params("name")
	l := logger.WithRayID(h.service.logger, c)

	format, err := report.ParseFormat(c.Query("format", string(report.FormatCSV)))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	res, err := h.service.Last(name)
	if err != nil {
		return h.fail(c, l, err)
	}
	data, err := report.New(format, h.service.env.Config.PageSize).Render(res)
	if err != nil {
		return h.fail(c, l, err)
	}

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Attachment(name + format.Extension())
	return c.Send(data)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	switch {
	case eris.Is(err, job.ErrNotFound), eris.Is(err, ErrNoResult):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case eris.Is(err, reconcile.ErrInvalidConfig):
		l.Warn("Invalid job", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Job failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
