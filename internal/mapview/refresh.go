package mapview

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"

	"github.com/Zachdehooge/riskmap-dashboard/internal/fetcher"
	"github.com/Zachdehooge/riskmap-dashboard/internal/metrics"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/simulate"
)

// DefaultCoverageThreshold is the coverage below which a sparse-fill pass runs.
const DefaultCoverageThreshold = 0.15

// MaxCoveragePasses bounds the sparse-fill passes of a single refresh. One
// pass samples up to SampleSize features, which clears the threshold for any
// real boundary dataset.
const MaxCoveragePasses = 1

const (
	msgFallbackBoundaries = "Using simulated data for demonstration. Real data connection unavailable."
	msgAPIStatus          = "API responded with an error. Using simulated data instead."
	msgUnreachable        = "Failed to connect to the server. Using simulated data instead."
	msgLoadFailed         = "Failed to load map data. Using simulated data instead."
	msgEmpty              = "No county data returned. Using simulated data instead."
)

// Level is the severity of a user notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "danger"
)

// Notification is a transient message for the user.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// UI receives the loading overlay and notification side effects of a refresh.
type UI interface {
	ShowLoading()
	HideLoading()
	Notify(level Level, msg string)
}

// LogUI writes notifications to the standard logger.
type LogUI struct{}

func (LogUI) ShowLoading() {}
func (LogUI) HideLoading() {}
func (LogUI) Notify(level Level, msg string) {
	log.Printf("[refresh] %s: %s", level, msg)
}

// CountySource is the live county-data backend.
type CountySource interface {
	Ping(ctx context.Context) error
	CountyData(ctx context.Context, q fetcher.CountyQuery) (model.CountyData, error)
}

// State is the map's application state. It is only touched while the
// owning Refresher holds its lock.
type State struct {
	Metric      string            `json:"metric"`
	Industry    string            `json:"industry"`
	ClientTypes model.ClientTypes `json:"clientTypes"`
	CountyData  model.CountyData  `json:"-"`
	Viewport    Viewport          `json:"viewport"`
}

// Result is what a refresh produced.
type Result struct {
	Layer         Layer          `json:"layer"`
	Coverage      float64        `json:"coverage"`
	Simulated     bool           `json:"simulated"`
	Passes        int            `json:"passes"`
	View          *View          `json:"view,omitempty"`
	Message       string         `json:"message,omitempty"`
	Notifications []Notification `json:"notifications"`
	State         State          `json:"state"`
}

// Refresher owns one map session: it loads county data, falls back to the
// simulator, renders, and tops up coverage. Calls are serialized.
type Refresher struct {
	mu sync.Mutex

	state      State
	source     CountySource
	sim        *simulate.Simulator
	boundaries *model.FeatureCollection
	fallback   bool
	positions  *Positions
	rand       *rand.Rand
	ui         UI
	metrics    *metrics.Metrics
	pending    []Notification

	Threshold float64
}

// NewRefresher builds a session over b. source may be nil, in which case
// every refresh uses simulated data.
func NewRefresher(source CountySource, sim *simulate.Simulator, b fetcher.Boundaries, ui UI, m *metrics.Metrics, seed int64) *Refresher {
	if ui == nil {
		ui = LogUI{}
	}
	return &Refresher{
		state: State{
			Metric:      "pd",
			ClientTypes: sim.ClientTypes(),
			CountyData:  model.CountyData{},
		},
		source:     source,
		sim:        sim,
		boundaries: b.Collection,
		fallback:   b.Fallback,
		positions:  NewPositions(),
		rand:       rand.New(rand.NewSource(seed)),
		ui:         ui,
		metrics:    m,
		Threshold:  DefaultCoverageThreshold,
	}
}

// Positions exposes the session's marker anchor cache.
func (r *Refresher) Positions() *Positions { return r.positions }

// State returns a copy of the current state.
func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Init performs the first load. With fallback boundaries the preset
// county data and positions are used directly.
func (r *Refresher) Init(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.fallback {
		return r.refresh(ctx, ReasonIndustry)
	}

	r.ui.ShowLoading()
	defer r.ui.HideLoading()
	r.pending = nil
	r.notify(LevelWarning, msgFallbackBoundaries)
	r.metrics.SimulatedFallback("boundaries")

	r.sim.SetClientTypes(r.state.ClientTypes)
	data := model.CountyData{}
	for key, ll := range r.sim.Fallback(data) {
		r.positions.Set(key, ll)
	}
	r.state.CountyData = data
	res := r.result(r.render(), ReasonIndustry)
	res.Simulated = true
	res.Message = msgFallbackBoundaries
	return res, nil
}

// Refresh reloads county data for the current filters.
func (r *Refresher) Refresh(ctx context.Context, reason Reason) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refresh(ctx, reason)
}

// SetIndustry changes the industry filter and refreshes.
func (r *Refresher) SetIndustry(ctx context.Context, industry string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Industry = industry
	return r.refresh(ctx, ReasonIndustry)
}

// SetClientTypes changes the client-type filter and refreshes.
func (r *Refresher) SetClientTypes(ctx context.Context, ct model.ClientTypes) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.ClientTypes = ct
	return r.refresh(ctx, ReasonClientType)
}

// SetMetric changes the displayed metric and refreshes without re-centring.
func (r *Refresher) SetMetric(ctx context.Context, metric string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Metric = metric
	return r.refresh(ctx, ReasonMetric)
}

// MarkUserMoved records that the user panned, zoomed or clicked a county.
func (r *Refresher) MarkUserMoved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Viewport.MarkMoved()
}

func (r *Refresher) refresh(ctx context.Context, reason Reason) (Result, error) {
	r.ui.ShowLoading()
	defer r.ui.HideLoading()
	r.pending = nil

	data, msg := r.load(ctx)
	simulated := msg != ""
	if simulated {
		r.notify(LevelWarning, msg)
		r.sim.SetClientTypes(r.state.ClientTypes)
		data = r.sim.Simulate()
	}
	r.state.CountyData = data

	layer := r.render()
	passes := 0
	for passes < MaxCoveragePasses && layer.Coverage() < r.Threshold && r.boundaries != nil {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		r.sim.SetClientTypes(r.state.ClientTypes)
		if r.sim.FillSparse(r.state.CountyData, r.boundaries.Features) == 0 {
			break
		}
		passes++
		r.metrics.CoveragePass()
		log.Printf("[refresh] coverage %.3f below %.2f, sparse pass %d", layer.Coverage(), r.Threshold, passes)
		layer = r.render()
	}

	res := r.result(layer, reason)
	res.Simulated = simulated
	res.Passes = passes
	res.Message = msg
	return res, nil
}

// load returns live data, or a non-empty fallback message when simulated
// data must be used instead. A failed ping skips the data request.
func (r *Refresher) load(ctx context.Context) (model.CountyData, string) {
	if r.source == nil {
		r.metrics.SimulatedFallback("no_source")
		return nil, msgUnreachable
	}
	if err := r.source.Ping(ctx); err != nil {
		log.Printf("[refresh] ping failed: %v", err)
		r.metrics.SimulatedFallback("ping")
		return nil, fallbackMessage(err)
	}
	data, err := r.source.CountyData(ctx, fetcher.CountyQuery{
		Industry:    r.state.Industry,
		Metric:      r.state.Metric,
		ClientTypes: r.state.ClientTypes,
	})
	if err != nil {
		log.Printf("[refresh] county data: %v", err)
		r.metrics.SimulatedFallback("county_data")
		return nil, fallbackMessage(err)
	}
	if len(data) == 0 {
		r.metrics.SimulatedFallback("empty")
		return nil, msgEmpty
	}
	return data, ""
}

func fallbackMessage(err error) string {
	var apiErr *fetcher.APIError
	var statusErr *fetcher.StatusError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return msgLoadFailed
	case errors.As(err, &statusErr):
		return msgAPIStatus
	case errors.Is(err, fetcher.ErrUnreachable):
		return msgUnreachable
	default:
		return msgLoadFailed
	}
}

func (r *Refresher) render() Layer {
	rd := Renderer{Positions: r.positions, Rand: r.rand, ClientTypes: r.state.ClientTypes}
	layer := rd.Render(r.boundaries, r.state.CountyData)
	r.metrics.Coverage(layer.Coverage())
	return layer
}

func (r *Refresher) result(layer Layer, reason Reason) Result {
	res := Result{
		Layer:         layer,
		Coverage:      layer.Coverage(),
		Notifications: r.pending,
		State:         r.state,
	}
	if v, ok := r.state.Viewport.Recenter(reason, r.state.Industry); ok {
		res.View = &v
	}
	return res
}

func (r *Refresher) notify(level Level, msg string) {
	r.pending = append(r.pending, Notification{Level: level, Message: msg})
	r.ui.Notify(level, msg)
}
