// Package dashboard serves the launch records dashboard: the HTML page, the
// two query endpoints behind its charts, the rendered charts themselves and
// the export API.
package dashboard

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"launchdash/docs/schema/openapi"
	"launchdash/internal/chart"
	"launchdash/internal/export"
	"launchdash/internal/launch"
	"launchdash/internal/metrics"
)

// PlaceholderHeader marks chart responses that carry a placeholder image.
const PlaceholderHeader = "X-Launchdash-Placeholder"

// ExportScheduler queues exports and exposes their status.
type ExportScheduler interface {
	EnqueueExport(ctx context.Context, input export.Input) (export.Record, error)
	GetExport(ctx context.Context, id string) (export.Record, error)
}

// Handler provides HTTP access to the dashboard.
type Handler struct {
	Dataset *launch.Dataset
	Exports ExportScheduler
	Metrics metrics.Recorder
	Chart   chart.Options
}

// Option configures a Handler.
type Option func(*Handler)

// WithExports enables the export routes.
func WithExports(s ExportScheduler) Option { return func(h *Handler) { h.Exports = s } }

// WithMetrics observes every query.
func WithMetrics(r metrics.Recorder) Option { return func(h *Handler) { h.Metrics = r } }

// WithChartOptions sizes rendered charts.
func WithChartOptions(o chart.Options) Option { return func(h *Handler) { h.Chart = o } }

// NewHandler constructs a dashboard handler over ds.
func NewHandler(ds *launch.Dataset, opts ...Option) *Handler {
	h := &Handler{Dataset: ds, Metrics: metrics.Noop{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Dataset == nil {
		writeError(w, http.StatusInternalServerError, "dataset not loaded")
		return
	}

	path := r.URL.Path
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if strings.HasPrefix(path, "/api/v1/exports") {
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleExports(w, r, path)
		return
	}

	var route func(http.ResponseWriter, *http.Request)
	switch path {
	case "/":
		route = h.handleIndex
	case "/healthz":
		route = h.handleHealth
	case "/api/v1/openapi.yaml":
		route = handleOpenAPI
	case "/api/v1/layout":
		route = h.handleLayout
	case "/api/v1/sites":
		route = h.handleSites
	case "/api/v1/payload-bounds":
		route = h.handleBounds
	case "/api/v1/outcomes":
		route = h.handleOutcomes
	case "/api/v1/payload-outcomes":
		route = h.handlePayloadOutcomes
	case "/api/v1/charts/success-pie.png":
		route = h.handlePieChart
	case "/api/v1/charts/payload-scatter.png":
		route = h.handleScatterChart
	default:
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	route(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": h.Dataset.Len()})
}

func handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapi.Spec())
}

func (h *Handler) handleLayout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Dataset.Layout())
}

func (h *Handler) handleSites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"options": h.Dataset.SiteOptions()})
}

func (h *Handler) handleBounds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"bounds": h.Dataset.PayloadBounds()})
}

func (h *Handler) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	format := negotiateFormat(r)
	if format == "" {
		writeError(w, http.StatusNotAcceptable, "requested format not supported")
		return
	}
	site := selection(r)
	summary, err := h.aggregate(r.Context(), site)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if format == export.FormatCSV {
		header, rows := summary.Table()
		streamCSV(w, "outcomes", header, rows)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

type payloadOutcomesResponse struct {
	Site   string              `json:"site"`
	Title  string              `json:"title"`
	Range  launch.PayloadRange `json:"range"`
	Points []launch.Point      `json:"points"`
}

func (h *Handler) handlePayloadOutcomes(w http.ResponseWriter, r *http.Request) {
	format := negotiateFormat(r)
	if format == "" {
		writeError(w, http.StatusNotAcceptable, "requested format not supported")
		return
	}
	site := selection(r)
	rng, err := h.payloadRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	points, err := h.filter(r.Context(), site, rng)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if format == export.FormatCSV {
		header, rows := launch.PointsTable(points)
		streamCSV(w, "payload-outcomes", header, rows)
		return
	}
	writeJSON(w, http.StatusOK, payloadOutcomesResponse{
		Site:   site,
		Title:  launch.ScatterTitle(site),
		Range:  rng,
		Points: points,
	})
}

func (h *Handler) handlePieChart(w http.ResponseWriter, r *http.Request) {
	site := selection(r)
	started := time.Now()
	summary, err := h.aggregate(r.Context(), site)
	if err != nil {
		h.placeholder(w, r, launch.PieTitle(site), err)
		return
	}
	payload, err := chart.Pie(summary, h.Chart)
	h.Metrics.Observe(r.Context(), "render_pie", err == nil || errors.Is(err, chart.ErrEmpty), time.Since(started))
	if err != nil {
		h.placeholder(w, r, summary.Title, err)
		return
	}
	writePNG(w, payload, false)
}

func (h *Handler) handleScatterChart(w http.ResponseWriter, r *http.Request) {
	site := selection(r)
	title := launch.ScatterTitle(site)
	rng, err := h.payloadRange(r)
	if err != nil {
		h.placeholder(w, r, title, err)
		return
	}
	started := time.Now()
	points, err := h.filter(r.Context(), site, rng)
	if err != nil {
		h.placeholder(w, r, title, err)
		return
	}
	payload, err := chart.Scatter(points, title, h.Chart)
	h.Metrics.Observe(r.Context(), "render_scatter", err == nil || errors.Is(err, chart.ErrEmpty), time.Since(started))
	if err != nil {
		h.placeholder(w, r, title, err)
		return
	}
	writePNG(w, payload, false)
}

// placeholder answers a chart request that cannot be plotted with an image
// explaining why, so the page never shows a broken chart.
func (h *Handler) placeholder(w http.ResponseWriter, r *http.Request, title string, cause error) {
	message := "No launches match the selection"
	switch {
	case errors.Is(cause, chart.ErrEmpty):
	case errors.Is(cause, launch.ErrInvalidSelection), errors.Is(cause, launch.ErrInvalidRange), errors.Is(cause, errBadParameter):
		message = "Invalid selection"
	default:
		klog.FromContext(r.Context()).Error(cause, "render chart", "path", r.URL.Path)
		message = "Chart unavailable"
	}
	payload, err := chart.Placeholder(title, message, h.Chart)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writePNG(w, payload, true)
}

func (h *Handler) aggregate(ctx context.Context, site string) (launch.OutcomeSummary, error) {
	started := time.Now()
	summary, err := h.Dataset.AggregateOutcomes(site)
	h.Metrics.Observe(ctx, "aggregate_outcomes", err == nil, time.Since(started))
	return summary, err
}

func (h *Handler) filter(ctx context.Context, site string, rng launch.PayloadRange) ([]launch.Point, error) {
	started := time.Now()
	points, err := h.Dataset.FilterPayloadOutcomes(site, rng)
	h.Metrics.Observe(ctx, "filter_payload_outcomes", err == nil, time.Since(started))
	return points, err
}

var errBadParameter = errors.New("invalid query parameter")

func selection(r *http.Request) string {
	site := strings.TrimSpace(r.URL.Query().Get("site"))
	if site == "" {
		return launch.AllSites
	}
	return site
}

// payloadRange reads min and max, each defaulting to the dataset bounds.
func (h *Handler) payloadRange(r *http.Request) (launch.PayloadRange, error) {
	rng := h.Dataset.PayloadBounds().Range()
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"min", &rng.Lo}, {"max", &rng.Hi}} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return launch.PayloadRange{}, fmt.Errorf("%w: %s=%q", errBadParameter, p.name, raw)
		}
		*p.dst = v
	}
	return rng, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, launch.ErrInvalidSelection), errors.Is(err, launch.ErrInvalidRange), errors.Is(err, errBadParameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type exportRequest struct {
	Query       string   `json:"query"`
	Site        string   `json:"site"`
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	Formats     []string `json:"formats"`
	RequestedBy string   `json:"requested_by"`
	Reason      string   `json:"reason"`
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request, path string) {
	if path == "/api/v1/exports" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleExportCreate(w, r)
		return
	}
	id := strings.TrimPrefix(path, "/api/v1/exports/")
	if id == path || id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	record, err := h.Exports.GetExport(r.Context(), id)
	if errors.Is(err, export.ErrNotFound) {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"export": record})
}

func (h *Handler) handleExportCreate(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid export request payload")
		return
	}
	input := export.Input{
		Query:       export.Query(strings.TrimSpace(req.Query)),
		Site:        req.Site,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
	}
	if req.Min != nil || req.Max != nil {
		rng := h.Dataset.PayloadBounds().Range()
		if req.Min != nil {
			rng.Lo = *req.Min
		}
		if req.Max != nil {
			rng.Hi = *req.Max
		}
		input.Range = &rng
	}
	for _, f := range req.Formats {
		input.Formats = append(input.Formats, export.Format(f))
	}

	record, err := h.Exports.EnqueueExport(r.Context(), input)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]any{"export": record})
	case errors.Is(err, export.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, export.ErrQueueFull), errors.Is(err, export.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func negotiateFormat(r *http.Request) export.Format {
	wanted := strings.ToLower(r.URL.Query().Get("format"))
	if wanted == "" {
		if strings.Contains(r.Header.Get("Accept"), "text/csv") {
			wanted = string(export.FormatCSV)
		} else {
			wanted = string(export.FormatJSON)
		}
	}
	switch export.Format(wanted) {
	case export.FormatCSV, export.FormatJSON:
		return export.Format(wanted)
	}
	return ""
}

func streamCSV(w http.ResponseWriter, name string, header []string, rows [][]string) {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(header); err != nil {
		return
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return
		}
	}
}

func writePNG(w http.ResponseWriter, payload []byte, placeholder bool) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if placeholder {
		w.Header().Set(PlaceholderHeader, "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// writeJSON encodes before writing the header so an unencodable payload
// becomes a 500 rather than a 200 with an empty body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		klog.ErrorS(err, "encode response")
		body, status = []byte(`{"error":"encode response"}`), http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
