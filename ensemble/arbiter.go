package ensemble

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/coachflow/internal/metrics"
	"github.com/BaSui01/coachflow/types"
)

// Resolution thresholds from the decision table. Evaluated in order:
// consensus, user_choice, expert_override, weighted_vote.
const (
	consensusAgreement  = 0.8
	consensusConfidence = 0.8
	userChoiceCeiling   = 0.6

	strengthStrong   = 0.85
	strengthModerate = 0.7
	strengthWeak     = 0.5
)

// ArbiterConfig tunes dispatch behavior.
type ArbiterConfig struct {
	// ExpertTimeout bounds each expert invocation independently of the
	// parent deadline.
	ExpertTimeout time.Duration `json:"expert_timeout" yaml:"expert_timeout"`

	// DispatchRPS and DispatchBurst feed the shared rate limiter in front of
	// all expert calls.
	DispatchRPS   float64 `json:"dispatch_rps" yaml:"dispatch_rps"`
	DispatchBurst int     `json:"dispatch_burst" yaml:"dispatch_burst"`

	// BreakerFailures is the consecutive-failure count that opens an
	// expert's circuit breaker. BreakerCooldown is how long it stays open.
	BreakerFailures uint32        `json:"breaker_failures" yaml:"breaker_failures"`
	BreakerCooldown time.Duration `json:"breaker_cooldown" yaml:"breaker_cooldown"`
}

// DefaultArbiterConfig returns production defaults.
func DefaultArbiterConfig() ArbiterConfig {
	return ArbiterConfig{
		ExpertTimeout:   10 * time.Second,
		DispatchRPS:     10,
		DispatchBurst:   6,
		BreakerFailures: 3,
		BreakerCooldown: 30 * time.Second,
	}
}

// Arbiter executes a routing decision: concurrent expert dispatch under
// independent timeouts, candidate validation, agreement analysis, and the
// resolution decision table. It holds no per-call state; retries are safe.
type Arbiter struct {
	registry  *Registry
	validator Validator
	agreement AgreementAnalyzer
	synth     Synthesizer
	limiter   *rate.Limiter
	metrics   *metrics.Collector
	config    ArbiterConfig
	logger    *zap.Logger

	mu       sync.Mutex
	breakers map[types.ExpertID]*gobreaker.CircuitBreaker
}

// NewArbiter creates an arbiter over the registry with the default heuristic
// collaborators. Use the WithX builders to swap them out.
func NewArbiter(registry *Registry, config ArbiterConfig, logger *zap.Logger) *Arbiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultArbiterConfig()
	if config.ExpertTimeout <= 0 {
		config.ExpertTimeout = def.ExpertTimeout
	}
	if config.DispatchRPS <= 0 {
		config.DispatchRPS = def.DispatchRPS
	}
	if config.DispatchBurst <= 0 {
		config.DispatchBurst = def.DispatchBurst
	}
	if config.BreakerFailures == 0 {
		config.BreakerFailures = def.BreakerFailures
	}
	if config.BreakerCooldown <= 0 {
		config.BreakerCooldown = def.BreakerCooldown
	}

	return &Arbiter{
		registry:  registry,
		validator: NewHeuristicValidator(),
		agreement: NewLexicalAgreement(),
		synth:     NewMergeSynthesizer(),
		limiter:   rate.NewLimiter(rate.Limit(config.DispatchRPS), config.DispatchBurst),
		config:    config,
		logger:    logger.With(zap.String("component", "arbiter")),
		breakers:  make(map[types.ExpertID]*gobreaker.CircuitBreaker),
	}
}

// WithValidator replaces the validation collaborator.
func (a *Arbiter) WithValidator(v Validator) *Arbiter {
	if v != nil {
		a.validator = v
	}
	return a
}

// WithAgreement replaces the agreement collaborator.
func (a *Arbiter) WithAgreement(an AgreementAnalyzer) *Arbiter {
	if an != nil {
		a.agreement = an
	}
	return a
}

// WithSynthesizer replaces the synthesis collaborator.
func (a *Arbiter) WithSynthesizer(s Synthesizer) *Arbiter {
	if s != nil {
		a.synth = s
	}
	return a
}

// WithMetrics attaches a metrics collector.
func (a *Arbiter) WithMetrics(m *metrics.Collector) *Arbiter {
	a.metrics = m
	return a
}

// Resolve runs the decision's experts and arbitrates their candidates. It
// fails only when the context is already dead or the fan-out produces zero
// candidates.
func (a *Arbiter) Resolve(ctx context.Context, decision *types.RoutingDecision, utterance string, rctx *types.RouterContext) (*types.EnsembleDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	experts := decision.Experts()
	candidates, unavailable := a.dispatch(ctx, experts, utterance, rctx)
	if len(candidates) == 0 {
		return nil, types.NewError(types.ErrNoCandidates,
			fmt.Sprintf("none of %d experts produced a candidate", len(experts)))
	}

	validations := a.validate(ctx, candidates, rctx)
	report := a.analyze(ctx, candidates)

	conf := aggregateConfidence(candidates, validations, report)

	process := types.DecisionProcess{
		ExpertsConsulted:      experts,
		Resolution:            types.ResolutionWeightedVote,
		ConflictingViewpoints: append(unavailable, report.ConflictPoints...),
	}

	selected, alternatives := a.resolveCandidates(ctx, decision, rctx, candidates, validations, report, conf, &process)

	strength := recommendationStrength(conf)
	if process.Resolution == types.ResolutionUserChoice {
		strength = types.StrengthRequiresInput
	}

	if a.metrics != nil {
		a.metrics.RecordResolution(string(process.Resolution), len(candidates), time.Since(start))
	}
	a.logger.Info("ensemble resolved",
		zap.String("user_id", rctx.UserID),
		zap.Int("experts", len(experts)),
		zap.Int("candidates", len(candidates)),
		zap.String("resolution", string(process.Resolution)),
		zap.Float64("overall_confidence", conf.OverallConfidence),
		zap.String("strength", string(strength)))

	return &types.EnsembleDecision{
		Response:     selected,
		Metrics:      conf,
		Process:      process,
		Alternatives: alternatives,
		Strength:     strength,
	}, nil
}

type dispatchOutcome struct {
	expert    types.ExpertID
	candidate *types.CandidateResponse
	err       error
}

// dispatch fans out to every expert concurrently. Candidate order is
// completion order. When the parent context expires, whatever has completed
// so far is returned and the stragglers are recorded as unavailable.
func (a *Arbiter) dispatch(ctx context.Context, experts []types.ExpertID, utterance string, rctx *types.RouterContext) ([]types.CandidateResponse, []string) {
	results := make(chan dispatchOutcome, len(experts))
	for _, id := range experts {
		go func(id types.ExpertID) {
			results <- a.invoke(ctx, id, utterance, rctx)
		}(id)
	}

	candidates := make([]types.CandidateResponse, 0, len(experts))
	unavailable := make([]string, 0)
	start := time.Now()

	for remaining := len(experts); remaining > 0; remaining-- {
		select {
		case out := <-results:
			if out.err != nil {
				unavailable = append(unavailable,
					fmt.Sprintf("expert %s unavailable (%v)", out.expert, out.err))
				a.recordExpert(out.expert, "error", time.Since(start))
				continue
			}
			candidates = append(candidates, *out.candidate)
			a.recordExpert(out.expert, "ok", time.Since(start))
		case <-ctx.Done():
			unavailable = append(unavailable,
				fmt.Sprintf("dispatch deadline expired with %d expert(s) outstanding", remaining))
			return candidates, unavailable
		}
	}
	return candidates, unavailable
}

func (a *Arbiter) invoke(ctx context.Context, id types.ExpertID, utterance string, rctx *types.RouterContext) dispatchOutcome {
	expert, ok := a.registry.Get(id)
	if !ok {
		return dispatchOutcome{expert: id,
			err: types.NewError(types.ErrExpertUnavailable, "not registered").WithExpert(id)}
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return dispatchOutcome{expert: id,
			err: types.NewTransient(types.ErrExpertTimeout, "rate limit wait canceled").WithExpert(id).WithCause(err)}
	}

	out, err := a.breaker(id).Execute(func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(ctx, a.config.ExpertTimeout)
		defer cancel()
		return expert.Generate(cctx, utterance, rctx)
	})
	if err != nil {
		return dispatchOutcome{expert: id,
			err: types.NewTransient(types.ErrExpertUnavailable, "generate failed").WithExpert(id).WithCause(err)}
	}

	candidate, _ := out.(*types.CandidateResponse)
	if candidate == nil || candidate.Content == "" {
		return dispatchOutcome{expert: id,
			err: types.NewError(types.ErrExpertUnavailable, "empty candidate").WithExpert(id)}
	}

	// Candidates are immutable once returned; normalize a copy instead.
	c := *candidate
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.ExpertID = id
	c.Confidence = types.ClampUnit(c.Confidence)
	return dispatchOutcome{expert: id, candidate: &c}
}

func (a *Arbiter) breaker(id types.ExpertID) *gobreaker.CircuitBreaker {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cb, ok := a.breakers[id]; ok {
		return cb
	}
	failures := a.config.BreakerFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    string(id),
		Timeout: a.config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})
	a.breakers[id] = cb
	return cb
}

// validate scores each candidate, substituting neutral mid-scale scores for
// per-candidate failures.
func (a *Arbiter) validate(ctx context.Context, candidates []types.CandidateResponse, rctx *types.RouterContext) []types.ValidationScores {
	out := make([]types.ValidationScores, len(candidates))
	for i := range candidates {
		scores, err := a.validator.Validate(ctx, &candidates[i], rctx)
		if err != nil {
			a.logger.Warn("candidate validation failed, using neutral scores",
				zap.String("expert", string(candidates[i].ExpertID)),
				zap.Error(err))
			scores = types.NeutralValidationScores()
		}
		out[i] = scores
	}
	return out
}

// analyze runs the agreement collaborator. A single candidate trivially
// agrees with itself; an analyzer failure degrades to a neutral 0.5 level.
func (a *Arbiter) analyze(ctx context.Context, candidates []types.CandidateResponse) *types.AgreementReport {
	if len(candidates) < 2 {
		return &types.AgreementReport{AgreementLevel: 1.0}
	}
	report, err := a.agreement.Analyze(ctx, candidates)
	if err != nil || report == nil {
		a.logger.Warn("agreement analysis failed, assuming neutral agreement", zap.Error(err))
		return &types.AgreementReport{AgreementLevel: 0.5}
	}
	report.AgreementLevel = types.ClampUnit(report.AgreementLevel)
	return report
}

// resolveCandidates applies the resolution decision table and returns the
// selected response plus the remaining candidates as alternatives.
func (a *Arbiter) resolveCandidates(
	ctx context.Context,
	decision *types.RoutingDecision,
	rctx *types.RouterContext,
	candidates []types.CandidateResponse,
	validations []types.ValidationScores,
	report *types.AgreementReport,
	conf types.ConfidenceMetrics,
	process *types.DecisionProcess,
) (*types.CandidateResponse, []types.CandidateResponse) {
	conflicts := len(report.ConflictPoints) > 0

	switch {
	case report.AgreementLevel > consensusAgreement && conf.OverallConfidence > consensusConfidence:
		process.Resolution = types.ResolutionConsensus
		process.ConsensusReached = true
		selected := primaryCandidate(decision.Primary, candidates)
		return selected, withoutCandidate(candidates, selected.ID)

	case conflicts && conf.OverallConfidence < userChoiceCeiling:
		// No winner is picked: the lead is only a presentation order and
		// every alternative stays viable for the caller's UI.
		process.Resolution = types.ResolutionUserChoice
		selected := highestConfidence(candidates)
		return selected, withoutCandidate(candidates, selected.ID)

	case conflicts:
		process.Resolution = types.ResolutionExpertOverride
		selected := highestConfidence(candidates)
		return selected, withoutCandidate(candidates, selected.ID)

	default:
		process.Resolution = types.ResolutionWeightedVote
		if len(candidates) == 1 {
			selected := &candidates[0]
			return selected, nil
		}
		synthesized, err := a.synth.Synthesize(ctx, candidates, rctx)
		if err != nil || synthesized == nil {
			a.logger.Warn("synthesis failed, selecting highest validation-weighted candidate", zap.Error(err))
			selected := highestWeighted(candidates, validations)
			return selected, withoutCandidate(candidates, selected.ID)
		}
		process.Synthesized = true
		return synthesized, candidates
	}
}

func aggregateConfidence(candidates []types.CandidateResponse, validations []types.ValidationScores, report *types.AgreementReport) types.ConfidenceMetrics {
	var selfSum, validSum, relevanceSum, stageSum float64
	for i, c := range candidates {
		selfSum += types.ClampUnit(c.Confidence)
		validSum += validations[i].Normalized()
		relevanceSum += (types.ClampScore(validations[i].StageAppropriateness) +
			types.ClampScore(validations[i].EmotionalSensitivity)) / 2 / 10
		stageSum += types.ClampScore(validations[i].StageAppropriateness) / 10
	}
	n := float64(len(candidates))

	overall := (selfSum/n + report.AgreementLevel + validSum/n) / 3
	return types.ConfidenceMetrics{
		OverallConfidence:   types.ClampUnit(overall),
		AgreementLevel:      report.AgreementLevel,
		ResponseCoherence:   report.AgreementLevel,
		ContextualRelevance: types.ClampUnit(relevanceSum / n),
		StageAlignment:      types.ClampUnit(stageSum / n),
	}
}

func recommendationStrength(conf types.ConfidenceMetrics) types.RecommendationStrength {
	composite := (conf.OverallConfidence + conf.AgreementLevel + conf.ContextualRelevance) / 3
	switch {
	case composite > strengthStrong:
		return types.StrengthStrong
	case composite > strengthModerate:
		return types.StrengthModerate
	case composite > strengthWeak:
		return types.StrengthWeak
	default:
		return types.StrengthRequiresInput
	}
}

// primaryCandidate returns the candidate produced by the routed primary
// expert, falling back to the highest self-confidence candidate when the
// primary was dropped during dispatch.
func primaryCandidate(primary types.ExpertID, candidates []types.CandidateResponse) *types.CandidateResponse {
	for i := range candidates {
		if candidates[i].ExpertID == primary {
			return &candidates[i]
		}
	}
	return highestConfidence(candidates)
}

func highestConfidence(candidates []types.CandidateResponse) *types.CandidateResponse {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Confidence > candidates[best].Confidence {
			best = i
		}
	}
	return &candidates[best]
}

func highestWeighted(candidates []types.CandidateResponse, validations []types.ValidationScores) *types.CandidateResponse {
	best := 0
	bestScore := validations[0].Normalized() * types.ClampUnit(candidates[0].Confidence)
	for i := 1; i < len(candidates); i++ {
		if score := validations[i].Normalized() * types.ClampUnit(candidates[i].Confidence); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return &candidates[best]
}

func withoutCandidate(candidates []types.CandidateResponse, id string) []types.CandidateResponse {
	out := make([]types.CandidateResponse, 0, len(candidates)-1)
	for _, c := range candidates {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func (a *Arbiter) recordExpert(expert types.ExpertID, outcome string, duration time.Duration) {
	if a.metrics != nil {
		a.metrics.RecordExpert(string(expert), outcome, duration)
	}
}
