package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"launchdash/internal/blob"
	"launchdash/internal/chart"
	"launchdash/internal/launch"
	"launchdash/internal/metrics"
)

// QueueSize bounds the number of pending exports.
const QueueSize = 32

const auditAction = "launch_export"

// Worker executes exports asynchronously on a single goroutine.
type Worker struct {
	dataset *launch.Dataset
	blobs   blob.Store
	records RecordStore
	opts    options

	queue   chan string
	mu      sync.RWMutex
	jobs    map[string]*Record
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type options struct {
	chart   chart.Options
	metrics metrics.Recorder
	logger  klog.Logger
	now     func() time.Time
	newID   func() string
}

// Option customises a Worker.
type Option func(*options)

// WithChartOptions sizes PNG artifacts.
func WithChartOptions(o chart.Options) Option { return func(opts *options) { opts.chart = o } }

// WithMetrics observes each processed export.
func WithMetrics(r metrics.Recorder) Option { return func(opts *options) { opts.metrics = r } }

// WithLogger sets the worker logger.
func WithLogger(l klog.Logger) Option { return func(opts *options) { opts.logger = l } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(opts *options) { opts.now = now } }

// WithIDGenerator overrides the uuid generator used for export, artifact
// and audit ids.
func WithIDGenerator(fn func() string) Option { return func(opts *options) { opts.newID = fn } }

// NewWorker constructs an export worker. blobs is required; records may be
// nil, in which case exports live only in the worker's memory.
func NewWorker(ds *launch.Dataset, blobs blob.Store, records RecordStore, opt ...Option) *Worker {
	o := options{
		metrics: metrics.Noop{},
		logger:  klog.Background().WithName("export"),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, fn := range opt {
		fn(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		dataset: ds,
		blobs:   blobs,
		records: records,
		opts:    o,
		queue:   make(chan string, QueueSize),
		jobs:    make(map[string]*Record),
		ctx:     klog.NewContext(ctx, o.logger),
		cancel:  cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for the current export. Exports
// still waiting in the queue are marked failed.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		w.drain()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) drain() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	for {
		select {
		case id := <-w.queue:
			w.fail(id, ErrStopped.Error())
		default:
			return
		}
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case id := <-w.queue:
			if w.ctx.Err() != nil {
				w.fail(id, ErrStopped.Error())
				return
			}
			w.process(id)
		}
	}
}

// EnqueueExport validates input and schedules the export, returning the
// queued record.
func (w *Worker) EnqueueExport(ctx context.Context, input Input) (Record, error) {
	if w.ctx.Err() != nil {
		return Record{}, ErrStopped
	}
	record, err := w.newRecord(input)
	if err != nil {
		return Record{}, err
	}

	w.mu.Lock()
	w.jobs[record.ID] = &record
	queued := record.Copy()
	w.mu.Unlock()

	w.persist(ctx, queued)
	w.audit(ctx, queued, nil)

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		w.fail(record.ID, ErrStopped.Error())
		return Record{}, ErrStopped
	}
	var full bool
	select {
	case w.queue <- record.ID:
	default:
		full = true
	}
	w.mu.Unlock()
	if full {
		w.fail(record.ID, ErrQueueFull.Error())
		return Record{}, ErrQueueFull
	}
	return queued, nil
}

func (w *Worker) newRecord(input Input) (Record, error) {
	if w.dataset == nil {
		return Record{}, fmt.Errorf("export dataset not configured")
	}
	switch input.Query {
	case QueryOutcomes, QueryPayloadOutcomes:
	case "":
		return Record{}, fmt.Errorf("%w: query required", ErrInvalidRequest)
	default:
		return Record{}, fmt.Errorf("%w: unknown query %q", ErrInvalidRequest, input.Query)
	}

	site := strings.TrimSpace(input.Site)
	if site == "" {
		site = launch.AllSites
	}
	if err := w.dataset.ValidateSelection(site); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	rng := w.dataset.PayloadBounds().Range()
	if input.Range != nil {
		rng = *input.Range
		if _, err := w.dataset.FilterPayloadOutcomes(site, rng); err != nil {
			return Record{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{}, len(formats))
	for _, f := range formats {
		f = Format(strings.ToLower(strings.TrimSpace(string(f))))
		if _, dup := seen[f]; dup {
			continue
		}
		if !supported(f) {
			return Record{}, fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, f)
		}
		seen[f] = struct{}{}
		uniq = append(uniq, f)
	}

	now := w.opts.now()
	return Record{
		ID:          w.opts.newID(),
		Query:       input.Query,
		Site:        site,
		Range:       rng,
		Formats:     uniq,
		Status:      StatusQueued,
		RequestedBy: input.RequestedBy,
		Reason:      input.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func supported(f Format) bool {
	switch f {
	case FormatJSON, FormatCSV, FormatHTML, FormatPNG:
		return true
	}
	return false
}

// GetExport returns a snapshot of the export. Exports from earlier processes
// are read from the record store.
func (w *Worker) GetExport(ctx context.Context, id string) (Record, error) {
	w.mu.RLock()
	record, ok := w.jobs[id]
	var snapshot Record
	if ok {
		snapshot = record.Copy()
	}
	w.mu.RUnlock()
	if ok {
		return snapshot, nil
	}
	if w.records != nil {
		stored, found, err := w.records.GetExport(ctx, id)
		if err != nil {
			return Record{}, fmt.Errorf("get export %s: %w", id, err)
		}
		if found {
			return stored, nil
		}
	}
	return Record{}, fmt.Errorf("export %s: %w", id, ErrNotFound)
}

// Audit returns the audit trail of an export, or nil without a record store.
func (w *Worker) Audit(ctx context.Context, id string) ([]AuditEntry, error) {
	if w.records == nil {
		return nil, nil
	}
	return w.records.ListAudit(ctx, id)
}

func (w *Worker) process(id string) {
	started := time.Now()
	record, ok := w.snapshot(id)
	if !ok {
		return
	}
	w.transition(id, func(r *Record) { r.Status = StatusRunning })

	artifacts, err := w.render(w.ctx, record)
	w.opts.metrics.Observe(w.ctx, "export_"+string(record.Query), err == nil, time.Since(started))
	if err != nil {
		w.fail(id, err.Error())
		return
	}
	w.transition(id, func(r *Record) {
		now := w.opts.now()
		r.Status = StatusSucceeded
		r.Error = ""
		r.Artifacts = artifacts
		r.CompletedAt = &now
	})
}

func (w *Worker) render(ctx context.Context, record Record) ([]Artifact, error) {
	result, err := w.run(record)
	if err != nil {
		return nil, err
	}
	artifacts := make([]Artifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		rendered, err := materialize(format, result, w.opts.chart)
		if err != nil {
			return nil, err
		}
		art, err := w.store(ctx, record.ID, rendered)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, art)
	}
	return artifacts, nil
}

func (w *Worker) run(record Record) (queryResult, error) {
	switch record.Query {
	case QueryOutcomes:
		summary, err := w.dataset.AggregateOutcomes(record.Site)
		if err != nil {
			return queryResult{}, err
		}
		header, rows := summary.Table()
		return queryResult{title: summary.Title, header: header, rows: rows, value: summary, summary: &summary}, nil
	case QueryPayloadOutcomes:
		points, err := w.dataset.FilterPayloadOutcomes(record.Site, record.Range)
		if err != nil {
			return queryResult{}, err
		}
		header, rows := launch.PointsTable(points)
		return queryResult{title: launch.ScatterTitle(record.Site), header: header, rows: rows, value: points, points: points}, nil
	default:
		return queryResult{}, fmt.Errorf("unknown query %q", record.Query)
	}
}

func (w *Worker) store(ctx context.Context, exportID string, rendered rendered) (Artifact, error) {
	art := rendered.artifact
	art.ID = w.opts.newID()
	art.Key = fmt.Sprintf("exports/%s/%s.%s", exportID, art.ID, art.Format)
	art.CreatedAt = w.opts.now()
	if w.blobs == nil {
		return Artifact{}, fmt.Errorf("blob store not configured")
	}
	info, err := w.blobs.Put(ctx, art.Key, bytes.NewReader(rendered.payload), blob.PutOptions{
		ContentType: art.ContentType,
		Metadata:    map[string]string{"export-id": exportID, "format": string(art.Format)},
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("store artifact %s: %w", art.Key, err)
	}
	if info.Size > 0 {
		art.SizeBytes = info.Size
	}
	url, err := w.blobs.PresignURL(ctx, art.Key, blob.SignedURLOptions{})
	switch {
	case err == nil:
		art.URL = url
	case errors.Is(err, blob.ErrUnsupported):
		art.URL = info.URL
	default:
		return Artifact{}, fmt.Errorf("presign artifact %s: %w", art.Key, err)
	}
	return art, nil
}

func (w *Worker) snapshot(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.Copy(), true
}

func (w *Worker) transition(id string, mutate func(*Record)) {
	w.mu.Lock()
	record, ok := w.jobs[id]
	if !ok {
		w.mu.Unlock()
		return
	}
	mutate(record)
	record.UpdatedAt = w.opts.now()
	snapshot := record.Copy()
	w.mu.Unlock()

	w.persist(w.ctx, snapshot)
	var md map[string]any
	if snapshot.Error != "" {
		md = map[string]any{"error": snapshot.Error}
	} else if snapshot.Status == StatusSucceeded {
		md = map[string]any{"artifacts": len(snapshot.Artifacts)}
	}
	w.audit(w.ctx, snapshot, md)
}

func (w *Worker) fail(id, reason string) {
	w.opts.logger.Error(errors.New(reason), "export failed", "export", id)
	w.transition(id, func(r *Record) {
		now := w.opts.now()
		r.Status = StatusFailed
		r.Error = reason
		r.CompletedAt = &now
	})
}

func (w *Worker) persist(ctx context.Context, record Record) {
	if w.records == nil {
		return
	}
	if err := w.records.SaveExport(context.WithoutCancel(ctx), record); err != nil {
		w.opts.logger.Error(err, "persist export record", "export", record.ID, "status", record.Status)
	}
}

func (w *Worker) audit(ctx context.Context, record Record, md map[string]any) {
	w.opts.logger.V(2).Info("export transition", "export", record.ID, "status", record.Status, "query", record.Query)
	if w.records == nil {
		return
	}
	entry := AuditEntry{
		ID:         w.opts.newID(),
		ExportID:   record.ID,
		Action:     auditAction,
		Actor:      record.RequestedBy,
		Status:     record.Status,
		Metadata:   md,
		OccurredAt: w.opts.now(),
	}
	if err := w.records.AppendAudit(context.WithoutCancel(ctx), entry); err != nil {
		w.opts.logger.Error(err, "append export audit", "export", record.ID)
	}
}
