package coachflow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/coachflow/config"
	"github.com/BaSui01/coachflow/ensemble"
	"github.com/BaSui01/coachflow/internal/metrics"
	"github.com/BaSui01/coachflow/learning"
	"github.com/BaSui01/coachflow/memory"
	"github.com/BaSui01/coachflow/routing"
	"github.com/BaSui01/coachflow/state"
	"github.com/BaSui01/coachflow/types"
)

// breakthroughWindow is how far back a stored breakthrough still counts as
// "recent" for the router context.
const breakthroughWindow = 14 * 24 * time.Hour

// feedbackTimeout bounds the fire-and-forget outcome write.
const feedbackTimeout = 5 * time.Second

// Engine wires the four subsystems into the per-turn pipeline. Construct it
// with NewEngine and the WithX options; the zero value is not usable.
type Engine struct {
	retriever  *memory.Retriever
	inferencer state.Inferencer
	needs      state.NeedsClassifier
	router     *routing.Router
	arbiter    *ensemble.Arbiter
	recorder   learning.Recorder
	metrics    *metrics.Collector
	tracer     trace.Tracer
	config     config.EngineConfig
	now        func() time.Time
	logger     *zap.Logger
}

// NewEngine assembles an engine. A retriever and either an arbiter or a set
// of experts are required; every other collaborator has a working default.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		inferencer: state.NewLexicalInferencer(),
		needs:      state.NewLexicalNeedsClassifier(),
		config:     config.DefaultConfig().Engine,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.retriever == nil {
		return nil, types.NewError(types.ErrInvalidRequest, "a retriever is required")
	}
	if e.arbiter == nil {
		return nil, types.NewError(types.ErrInvalidRequest, "an arbiter or at least one expert is required")
	}
	if e.router == nil {
		e.router = routing.NewRouter(e.logger)
	}
	if e.recorder == nil {
		e.recorder = learning.NewMemoryRecorder(e.logger)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("github.com/BaSui01/coachflow")
	}
	if e.metrics != nil {
		e.arbiter.WithMetrics(e.metrics)
	}
	e.logger = e.logger.With(zap.String("component", "engine"))
	return e, nil
}

// Process runs one user turn: retrieval and state inference concurrently,
// then routing, then ensemble resolution. The returned decision is never nil
// on a nil error.
func (e *Engine) Process(ctx context.Context, req *Request) (*types.EnsembleDecision, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "engine.process",
		trace.WithAttributes(
			attribute.Int("coachflow.stage", req.Stage),
			attribute.Int("coachflow.turn_depth", req.Conversation.TurnDepth),
		))
	defer span.End()

	var (
		retrieval *types.RetrievalResult
		readiness types.ReadinessState
		needs     types.NeedsClassification
	)

	// Retrieval and state inference have no dependency on each other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := e.retriever.Retrieve(gctx, req.UserID, req.Utterance, e.config.MaxResults)
		if err != nil {
			return err
		}
		retrieval = res
		return nil
	})
	g.Go(func() error {
		readiness = e.inferencer.Infer(req.Utterance)
		needs = e.needs.Classify(req.Utterance)
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")
		return nil, err
	}

	rctx := e.buildRouterContext(req, retrieval, readiness)
	decision := e.router.Decide(rctx, needs)

	span.SetAttributes(
		attribute.String("coachflow.readiness", string(readiness)),
		attribute.String("coachflow.primary", string(decision.Primary)),
		attribute.Int("coachflow.depth", decision.DepthLevel),
	)

	resolveCtx := ctx
	if e.config.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		resolveCtx, cancel = context.WithTimeout(ctx, e.config.ResolveTimeout)
		defer cancel()
	}

	out, err := e.arbiter.Resolve(resolveCtx, decision, req.Utterance, rctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("coachflow.resolution", string(out.Process.Resolution)),
		attribute.Float64("coachflow.overall_confidence", out.Metrics.OverallConfidence),
	)
	e.logger.Info("turn processed",
		zap.String("user_id", req.UserID),
		zap.String("readiness", string(readiness)),
		zap.String("primary", string(decision.Primary)),
		zap.String("resolution", string(out.Process.Resolution)),
		zap.String("strength", string(out.Strength)))

	return out, nil
}

// RecordFeedback reports a turn's outcome to the preference-learning
// collaborator. The write is fire-and-forget: it runs on its own goroutine
// with its own timeout and failures only produce a warning.
func (e *Engine) RecordFeedback(userID string, decision *types.RoutingDecision, feedback string, outcome float64) {
	if e.recorder == nil || decision == nil || userID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), feedbackTimeout)
		defer cancel()
		if err := e.recorder.RecordOutcome(ctx, userID, decision, feedback, outcome); err != nil {
			e.logger.Warn("feedback recording failed",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}()
}

// buildRouterContext derives the per-turn routing inputs from the request and
// the retrieved memories: engagement depth is the mean depth score of the
// references, and a breakthrough is recent when any reference carries
// breakthrough indicators inside the window.
func (e *Engine) buildRouterContext(req *Request, retrieval *types.RetrievalResult, readiness types.ReadinessState) *types.RouterContext {
	now := e.now()

	var depthSum float64
	recentBreakthrough := false
	for _, ref := range retrieval.References {
		depthSum += ref.Memory.DepthScore
		if len(ref.Memory.BreakthroughIndicators) > 0 && now.Sub(ref.Memory.OccurredOn) <= breakthroughWindow {
			recentBreakthrough = true
		}
	}
	engagementDepth := 0.0
	if len(retrieval.References) > 0 {
		engagementDepth = depthSum / float64(len(retrieval.References))
	}

	return &types.RouterContext{
		UserID:             req.UserID,
		Stage:              req.Stage,
		StageProgress:      types.ClampUnit(req.StageProgress),
		DaysInProgram:      req.DaysInProgram,
		EngagementDepth:    engagementDepth,
		RecentBreakthrough: recentBreakthrough,
		Readiness:          readiness,
		Conversation:       req.Conversation,
		Hints:              e.recorder.Hints(req.UserID),
	}
}
