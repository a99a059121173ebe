package reconciliation

import (
	"context"
	"sync"

	"sheet-reconciler/core/job"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/storage"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoResult is returned when a job has not run since the service started.
var ErrNoResult = eris.New("job has no result yet")

// DefaultPageSize is used when neither the request nor the configuration sets one.
const DefaultPageSize = 500

// Service runs jobs and keeps the last result per job.
type Service struct {
	catalog *job.Catalog
	env     job.Env
	client  storage.Client
	bucket  string
	logger  *zap.Logger

	sf   singleflight.Group
	mu   sync.RWMutex
	last map[string]*reconcile.Result
}

// NewService creates a new reconciliation service. client may be nil when no
// job uploads its report.
func NewService(catalog *job.Catalog, env job.Env, client storage.Client, bucket string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog: catalog,
		env:     env,
		client:  client,
		bucket:  bucket,
		logger:  logger,
		last:    make(map[string]*reconcile.Result),
	}
}

// RunOutcome is the result of a run request.
type RunOutcome struct {
	Result *reconcile.Result
	// Shared is true when the request joined a run already in flight.
	Shared bool
	// Published lists the locations the report was written to.
	Published []string
}

// Jobs lists the job catalog.
func (s *Service) Jobs() ([]job.Entry, error) {
	return s.catalog.List()
}

// Run executes a job. Concurrent calls for the same job share one execution.
// The run is detached from ctx cancellation so a disconnecting caller does not
// abort the run for the others.
func (s *Service) Run(ctx context.Context, name string, l *zap.Logger) (*RunOutcome, error) {
	if l == nil {
		l = s.logger
	}
	runCtx := context.WithoutCancel(ctx)

	v, err, shared := s.sf.Do(name, func() (any, error) {
		def, err := s.catalog.Get(name)
		if err != nil {
			return nil, err
		}
		res, err := def.Execute(runCtx, s.env, l)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.last[name] = res
		s.mu.Unlock()

		out := &RunOutcome{Result: res}
		dst, err := def.Destination(s.env.Config, job.Output{})
		if err != nil {
			return nil, err
		}
		if dst.Upload != "" {
			// Local paths are a command line concern; the service only uploads.
			dst.Path = ""
			published, err := job.Publish(runCtx, res, dst, s.client, s.bucket)
			if err != nil {
				l.Error("Report upload failed", zap.String("job", name), zap.Error(err))
			}
			out.Published = published
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	out := *v.(*RunOutcome)
	out.Shared = shared
	return &out, nil
}

// Last returns the last result of a job.
func (s *Service) Last(name string) (*reconcile.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.last[name]
	if !ok {
		return nil, eris.Wrapf(ErrNoResult, "job %q", name)
	}
	return res, nil
}

// Page is one page of a result's records.
type Page struct {
	Job      string                        `json:"job"`
	RunID    string                        `json:"run_id"`
	Page     int                           `json:"page"`
	Pages    int                           `json:"pages"`
	PageSize int                           `json:"page_size"`
	Total    int                           `json:"total"`
	Records  []reconcile.DiscrepancyRecord `json:"records"`
}

// Page returns a 1-based page of the last result. size < 1 uses the job config page
// size or DefaultPageSize. A page past the end is empty.
func (s *Service) Page(name string, page, size int) (*Page, error) {
	res, err := s.Last(name)
	if err != nil {
		return nil, err
	}
	if size < 1 {
		size = s.env.Config.PageSize
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	pages := reconcile.Pages(res.Records, size)
	out := &Page{
		Job:      name,
		RunID:    res.RunID,
		Page:     page,
		Pages:    len(pages),
		PageSize: size,
		Total:    len(res.Records),
		Records:  []reconcile.DiscrepancyRecord{},
	}
	if page <= len(pages) && pages[page-1] != nil {
		out.Records = pages[page-1]
	}
	return out, nil
}
