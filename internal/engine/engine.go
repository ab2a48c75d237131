package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/reactor"
	"github.com/roach88/reactorcalc/internal/thermal"
	"github.com/roach88/reactorcalc/internal/units"
)

// DefaultWorkers is the batch concurrency used when ComputeBatch is given a
// non-positive worker count.
const DefaultWorkers = 4

// Engine evaluates calculation requests.
//
// Thread-safety: Engine is safe for concurrent use. It holds only the
// registry, the ID generator and the logger, none of which are mutated
// after construction.
type Engine struct {
	registry *units.Registry
	ids      IDGenerator
	logger   *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithIDGenerator sets the generator of envelope IDs.
//
// Default: UUIDv7Generator.
// Use WithIDGenerator(NewFixedGenerator(...)) for deterministic snapshots.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRegistry replaces the unit registry. Tests use it to inject a
// registry; production code always uses units.Default.
func WithRegistry(r *units.Registry) EngineOption {
	return func(e *Engine) {
		e.registry = r
	}
}

// New creates an Engine. Options can be passed to configure the engine
// (e.g., WithIDGenerator).
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		registry: units.Default,
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute validates req, converts it to SI and runs the selected reactor
// model. The result's fields are in SI units.
func (e *Engine) Compute(req *model.Request) (model.Result, error) {
	if req == nil {
		return nil, calcerr.Validation("request", "is required")
	}
	if err := req.FirstError(); err != nil {
		return nil, err
	}

	si, err := e.ConvertRequest(req, units.SI)
	if err != nil {
		return nil, err
	}
	p, err := buildParams(si)
	if err != nil {
		return nil, err
	}

	// Validate guarantees both parse.
	rt, _ := model.ParseReactor(si.Reactor)
	mode, _ := model.ParseMode(si.Mode)

	m, err := reactor.For(rt)
	if err != nil {
		return nil, err
	}
	return m.Compute(mode, p)
}

// Respond evaluates req and packages the outcome as an envelope expressed
// in the request's unit system. It never returns nil; failures are carried
// in the envelope's Error.
func (e *Engine) Respond(req *model.Request) *model.Envelope {
	env := &model.Envelope{ID: e.ids.Generate()}

	res, err := e.Compute(req)
	if err == nil {
		env.Response, err = e.resolve(req, res)
	}
	if err != nil {
		env.Error = model.FailureOf(err)
		e.logger.Info("calculation failed",
			"id", env.ID,
			"reactor", requestReactor(req),
			"mode", requestMode(req),
			"kind", env.Error.Kind,
			"field", env.Error.Field,
			"error", env.Error.Message,
		)
		return env
	}

	e.logger.Debug("calculation evaluated",
		"id", env.ID,
		"request", requestHash{req},
		"reactor", env.Reactor,
		"mode", env.Mode,
		"unit_system", env.System,
		"values", len(env.Values),
	)
	return env
}

// ComputeBatch evaluates reqs concurrently with at most workers goroutines.
// The returned envelopes are in request order. Once ctx is canceled, the
// requests not yet started are reported as internal failures carrying the
// context error.
func (e *Engine) ComputeBatch(ctx context.Context, reqs []*model.Request, workers int) []*model.Envelope {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	out := make([]*model.Envelope, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i] = &model.Envelope{ID: e.ids.Generate(), Error: model.FailureOf(err)}
				return nil
			}
			out[i] = e.Respond(req)
			return nil
		})
	}
	// Workers never return errors; failures live in the envelopes.
	_ = g.Wait()

	e.logger.Debug("batch evaluated", "requests", len(reqs), "workers", workers)
	return out
}

// resolve converts every SI field of res into the request's unit system.
func (e *Engine) resolve(req *model.Request, res model.Result) (*model.Response, error) {
	system, err := units.ParseSystem(req.Units)
	if err != nil {
		return nil, err
	}
	rt, _ := model.ParseReactor(req.Reactor)

	fields := res.Fields()
	r := &model.Response{
		Mode:    res.Mode(),
		Reactor: rt,
		System:  system,
		Values:  make(map[string]float64, len(fields)),
		Units:   make(map[string]string, len(fields)),
		Labels:  make(map[string]string, len(fields)),
		Keys:    make([]string, 0, len(fields)),
	}

	for _, f := range fields {
		v := f.Value
		if f.Quantity != "" {
			conv, err := e.registry.Resolve(system, f.Quantity, f.Order)
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", f.Name, err)
			}
			v *= conv.Factor
			r.Units[f.Name] = conv.Symbol
		}
		r.Values[f.Name] = v
		r.Labels[f.Name] = f.Label
		r.Keys = append(r.Keys, f.Name)
	}

	switch res := res.(type) {
	case model.ConversionResult:
		r.Limiting = res.Limiting
	case model.TemperatureResult:
		if res.Bed != nil {
			r.Profile, err = e.profile(res.Bed.Samples, system)
			if err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (e *Engine) profile(samples []thermal.Sample, system units.System) ([]thermal.Sample, error) {
	length, err := e.registry.Resolve(system, units.Length)
	if err != nil {
		return nil, err
	}
	temp, err := e.registry.Resolve(system, units.Temperature)
	if err != nil {
		return nil, err
	}
	out := make([]thermal.Sample, len(samples))
	for i, s := range samples {
		out[i] = thermal.Sample{
			Position:    s.Position * length.Factor,
			Temperature: s.Temperature * temp.Factor,
		}
	}
	return out, nil
}

// requestHash logs the content hash of a request. It is only computed when
// the record is emitted.
type requestHash struct{ req *model.Request }

func (h requestHash) LogValue() slog.Value {
	if h.req == nil {
		return slog.StringValue("")
	}
	sum, err := model.RequestHash(h.req)
	if err != nil {
		return slog.StringValue("error: " + err.Error())
	}
	return slog.StringValue(sum[:16])
}

func requestReactor(req *model.Request) string {
	if req == nil {
		return ""
	}
	return req.Reactor
}

func requestMode(req *model.Request) string {
	if req == nil {
		return ""
	}
	return req.Mode
}

// IsCanceled reports whether env failed because its batch was canceled.
func IsCanceled(env *model.Envelope) bool {
	return env != nil && env.Error != nil && env.Error.Kind == model.KindInternal &&
		(env.Error.Message == context.Canceled.Error() || env.Error.Message == context.DeadlineExceeded.Error())
}
