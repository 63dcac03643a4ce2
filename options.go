package coachflow

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/coachflow/config"
	"github.com/BaSui01/coachflow/ensemble"
	"github.com/BaSui01/coachflow/internal/metrics"
	"github.com/BaSui01/coachflow/learning"
	"github.com/BaSui01/coachflow/memory"
	"github.com/BaSui01/coachflow/routing"
	"github.com/BaSui01/coachflow/state"
)

// Option configures the engine built by NewEngine.
type Option func(*Engine)

// WithRetriever sets the memory retriever. Required.
func WithRetriever(r *memory.Retriever) Option {
	return func(e *Engine) { e.retriever = r }
}

// WithExperts builds a default arbiter over the given experts. Use
// WithArbiter instead when custom collaborators or dispatch tuning are
// needed.
func WithExperts(experts ...ensemble.Expert) Option {
	return func(e *Engine) {
		cfg := ensemble.DefaultArbiterConfig()
		cfg.ExpertTimeout = e.config.ExpertTimeout
		cfg.DispatchRPS = e.config.DispatchRPS
		cfg.DispatchBurst = e.config.DispatchBurst
		e.arbiter = ensemble.NewArbiter(ensemble.NewRegistry(experts...), cfg, e.logger)
	}
}

// WithArbiter sets a fully configured arbiter, overriding WithExperts.
func WithArbiter(a *ensemble.Arbiter) Option {
	return func(e *Engine) { e.arbiter = a }
}

// WithInferencer replaces the lexical readiness inferencer.
func WithInferencer(i state.Inferencer) Option {
	return func(e *Engine) {
		if i != nil {
			e.inferencer = i
		}
	}
}

// WithNeedsClassifier replaces the lexical needs classifier.
func WithNeedsClassifier(c state.NeedsClassifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.needs = c
		}
	}
}

// WithRouter replaces the routing decision engine.
func WithRouter(r *routing.Router) Option {
	return func(e *Engine) { e.router = r }
}

// WithRecorder sets the preference-learning collaborator.
func WithRecorder(r learning.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithConfig sets the engine tuning knobs. Apply before WithExperts so the
// arbiter picks up the dispatch settings.
func WithConfig(cfg config.EngineConfig) Option {
	return func(e *Engine) { e.config = cfg }
}

// WithLogger sets the zap logger shared by defaulted collaborators.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches a prometheus collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer sets the OTel tracer. Defaults to the global provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithClock overrides the engine clock in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
