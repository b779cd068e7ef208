package chainz

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability identifiers.
const (
	// Metrics.
	ChainProcessedTotal  = metricz.Key("chain.processed.total")
	ChainSuccessesTotal  = metricz.Key("chain.successes.total")
	ChainFailuresTotal   = metricz.Key("chain.failures.total")
	ChainFailuresRecords = metricz.Key("chain.failures.recorded")
	ChainLeavesTotal     = metricz.Key("chain.leaves.total")
	ChainDurationMs      = metricz.Key("chain.duration.ms")

	// Spans.
	ChainProcessSpan = tracez.Key("chain.process")

	// Tags.
	ChainTagName     = tracez.Tag("chain.name")
	ChainTagOk       = tracez.Tag("chain.ok")
	ChainTagFailures = tracez.Tag("chain.failures")

	// Hook event keys.
	ChainEventComplete = hookz.Key("chain.complete")
	ChainEventFailure  = hookz.Key("chain.failure")
)

// ChainEvent contains data about a finished chain call.
// This is emitted via hookz after every call (chain.complete) and
// additionally when the call recorded failures (chain.failure).
type ChainEvent struct {
	Name      Name          // Chain name
	Ok        bool          // Whether the root succeeded
	Failures  int           // Number of recorded failures
	Fatal     bool          // Whether any failure was fatal
	Duration  time.Duration // How long the call took
	Timestamp time.Time     // When the call finished
}

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateName(name Name) error {
	if !namePattern.MatchString(string(name)) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

type reportHandler struct {
	fn           ReportHandler
	failuresOnly bool
}

// Chain is the user-facing pipeline facade. It owns an immutable node tree
// parsed once at construction, so a single Chain may be called from many
// goroutines at once; each call gets its own recorder and report.
//
// Create chains once and reuse them. Handlers registered with OnReport and
// OnFailures run synchronously after each call, in registration order,
// before Process returns.
//
// Example:
//
//	const AvgChain = chainz.Name("avg")
//
//	avg, err := chainz.New(AvgChain,
//	    chainz.From("split", strings.Fields),
//	    chainz.Each,
//	    chainz.FromErr("float", parseFloat),
//	    chainz.From("mean", mean),
//	)
type Chain struct {
	name         Name
	root         Node
	leafTotal    int
	leafRequired int
	handlers     []reportHandler
	clock        clockz.Clock
	metrics      *metricz.Registry
	tracer       *tracez.Tracer
	hooks        *hookz.Hooks[ChainEvent]
	mu           sync.RWMutex
}

// New builds a chain from a declarative structure. The elements form an
// implicit Serial sequence; see parse for the accepted element kinds. All
// structural validation happens here - a chain that constructs successfully
// never raises during calls.
func New(name Name, elements ...any) (*Chain, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return newChain(name, elements)
}

// newChain skips name validation; registries validate namespace and name
// separately before composing the full name.
func newChain(name Name, elements []any) (*Chain, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: chain %q has no elements", ErrEmptyStructure, name)
	}
	root, err := parseSequence(elements)
	if err != nil {
		return nil, fmt.Errorf("chain %q: %w", name, err)
	}

	// Initialize observability
	metrics := metricz.New()
	metrics.Counter(ChainProcessedTotal)
	metrics.Counter(ChainSuccessesTotal)
	metrics.Counter(ChainFailuresTotal)
	metrics.Counter(ChainFailuresRecords)
	metrics.Gauge(ChainLeavesTotal)
	metrics.Gauge(ChainDurationMs)

	leaves, required := root.stats(true)
	metrics.Gauge(ChainLeavesTotal).Set(float64(leaves))

	return &Chain{
		name:         name,
		root:         root,
		leafTotal:    leaves,
		leafRequired: required,
		metrics:      metrics,
		tracer:       tracez.New(),
		hooks:        hookz.New[ChainEvent](),
	}, nil
}

// Process runs input through the chain. It never returns an error: a failing
// step yields its default value and a Failure entry in the report, and the
// report's Ok field tells whether the root completed successfully.
func (c *Chain) Process(ctx context.Context, input any) (any, *Report) {
	if ctx == nil {
		ctx = context.Background()
	}
	clock := c.getClock()
	start := clock.Now()
	c.metrics.Counter(ChainProcessedTotal).Inc()

	ctx, span := c.tracer.StartSpan(ctx, ChainProcessSpan)
	span.SetTag(ChainTagName, string(c.name))

	rec := NewRecorder(clock)
	ok, out := callNode(ctx, c.root, input, RootLabel(c.name), rec)

	duration := clock.Since(start)
	now := clock.Now()
	report := rec.report(c.name, c.leafTotal, c.leafRequired, ok, duration, now)

	c.metrics.Gauge(ChainDurationMs).Set(float64(duration.Milliseconds()))
	for range report.Failures {
		c.metrics.Counter(ChainFailuresRecords).Inc()
	}
	span.SetTag(ChainTagOk, fmt.Sprintf("%t", ok))
	span.SetTag(ChainTagFailures, fmt.Sprintf("%d", len(report.Failures)))
	span.Finish()

	if ok {
		c.metrics.Counter(ChainSuccessesTotal).Inc()
	} else {
		c.metrics.Counter(ChainFailuresTotal).Inc()
		capitan.Error(ctx, SignalChainFatal,
			FieldChain.Field(string(c.name)),
			FieldFailures.Field(len(report.Failures)),
			FieldTimestamp.Field(float64(now.Unix())),
		)
	}

	event := ChainEvent{
		Name:      c.name,
		Ok:        ok,
		Failures:  len(report.Failures),
		Fatal:     report.HasFatal(),
		Duration:  duration,
		Timestamp: now,
	}
	_ = c.hooks.Emit(ctx, ChainEventComplete, event) //nolint:errcheck
	if report.HasFailures() {
		_ = c.hooks.Emit(ctx, ChainEventFailure, event) //nolint:errcheck
	}

	c.dispatch(report)
	return out, report
}

func (c *Chain) dispatch(report *Report) {
	c.mu.RLock()
	handlers := c.handlers
	c.mu.RUnlock()
	for _, h := range handlers {
		if h.failuresOnly && !report.HasFailures() {
			continue
		}
		h.fn(report)
	}
}

// OnReport registers a handler invoked synchronously after every call.
func (c *Chain) OnReport(fn ReportHandler) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, reportHandler{fn: fn})
	return c
}

// OnFailures registers a handler invoked only for calls that recorded at
// least one failure.
func (c *Chain) OnFailures(fn ReportHandler) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, reportHandler{fn: fn, failuresOnly: true})
	return c
}

// OnComplete registers a handler for chain completion events.
// The handler is called asynchronously after each call finishes.
func (c *Chain) OnComplete(handler func(context.Context, ChainEvent) error) error {
	_, err := c.hooks.Hook(ChainEventComplete, handler)
	return err
}

// OnFailure registers a handler for calls that recorded failures.
// The handler is called asynchronously when a call records at least one
// failure.
func (c *Chain) OnFailure(handler func(context.Context, ChainEvent) error) error {
	_, err := c.hooks.Hook(ChainEventFailure, handler)
	return err
}

// Name returns the chain's name.
func (c *Chain) Name() Name {
	return c.name
}

// Root returns the root node of the parsed tree.
func (c *Chain) Root() Node {
	return c.root
}

// Len returns the number of leaves in the chain's tree.
func (c *Chain) Len() int {
	return c.leafTotal
}

// WithClock sets a custom clock for testing.
func (c *Chain) WithClock(clock clockz.Clock) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clock
	return c
}

// getClock returns the clock to use.
func (c *Chain) getClock() clockz.Clock {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.clock == nil {
		return clockz.RealClock
	}
	return c.clock
}

// Metrics returns the metrics registry for this chain.
func (c *Chain) Metrics() *metricz.Registry {
	return c.metrics
}

// Tracer returns the tracer for this chain.
func (c *Chain) Tracer() *tracez.Tracer {
	return c.tracer
}

// Close gracefully shuts down observability components.
func (c *Chain) Close() error {
	if c.tracer != nil {
		c.tracer.Close()
	}
	c.hooks.Close()
	return nil
}
