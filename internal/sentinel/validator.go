package sentinel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/incident"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/telemetry"
)

// Config holds the orchestrator limits.
type Config struct {
	MinNotesLength       int // default: 3
	MaxNotesLength       int // default: 500
	MaxDestinationLength int // default: 120
	// SoftWatchThreshold logs accepted verdicts below this confidence.
	SoftWatchThreshold int // default: 70
	// ConfidenceFloor downgrades classifier rejections below it to soft_warn.
	// It never changes the verdict.
	ConfidenceFloor int // default: 50
}

// Pipeline stages, used as metric labels and in incident details.
const (
	StageInput       = "input"
	StagePattern     = "pattern"
	StageDestination = "destination"
	StageClassifier  = "classifier"
)

// Pipeline is the validation orchestrator. It is stateless per call and
// safe for concurrent use.
type Pipeline struct {
	cfg          Config
	patterns     *PatternMatcher
	destinations *DestinationChecker
	classifier   *Classifier
	incidents    incident.Logger
	metrics      *telemetry.Metrics
}

var _ Validator = (*Pipeline)(nil)

// NewPipeline wires the built-in deterministic layers ahead of classifier.
// incidents and metrics may be nil.
func NewPipeline(cfg Config, classifier *Classifier, incidents incident.Logger, metrics *telemetry.Metrics) *Pipeline {
	if cfg.MinNotesLength <= 0 {
		cfg.MinNotesLength = 3
	}
	if cfg.MaxNotesLength <= 0 {
		cfg.MaxNotesLength = 500
	}
	if cfg.MaxDestinationLength <= 0 {
		cfg.MaxDestinationLength = 120
	}
	if cfg.SoftWatchThreshold <= 0 {
		cfg.SoftWatchThreshold = 70
	}
	if cfg.ConfidenceFloor <= 0 {
		cfg.ConfidenceFloor = 50
	}
	if incidents == nil {
		incidents = incident.NopLogger{}
	}
	return &Pipeline{
		cfg:          cfg,
		patterns:     NewPatternMatcher(DefaultPatterns()),
		destinations: DefaultDestinationChecker(),
		classifier:   classifier,
		incidents:    incidents,
		metrics:      metrics,
	}
}

// ValidateUserInput runs the tiered checks and short-circuits on the first
// rejection. It never returns an error: every failure is a verdict.
func (p *Pipeline) ValidateUserInput(ctx context.Context, req Request) Verdict {
	destination := strings.TrimSpace(deref(req.Destination))
	notes := strings.TrimSpace(deref(req.Notes))

	if v, detail, rejected := p.checkInput(destination, notes); rejected {
		return p.rejectDeterministic(ctx, req, StageInput, detail, v)
	}

	if m := p.patterns.Check(Normalize(destination + " " + notes)); m.Flagged {
		v := reject(m.Category, "", 100)
		return p.rejectDeterministic(ctx, req, StagePattern, "rule="+m.Rule, v)
	}

	if m := p.destinations.Check(destination); m.Flagged {
		reason := reasonDestination
		if m.Reason == DestReasonHousehold {
			reason = reasonHousehold
		}
		v := reject(m.Category, reason, 100)
		return p.rejectDeterministic(ctx, req, StageDestination, "reason="+m.Reason, v)
	}

	start := time.Now()
	c := p.classifier.Classify(ctx, destination, notes)
	p.metrics.ObserveClassifier(time.Since(start), c.Failure)

	v := c.Verdict
	switch {
	case c.Failure != "":
		p.metrics.ObserveValidation(StageClassifier, "unavailable")
		p.dispatch(ctx, req, v, incident.OutcomeUnavailable, incident.SeveritySoftWarn,
			fmt.Sprintf("stage=%s failure=%s", StageClassifier, c.Failure))
	case !v.IsValid:
		severity := incident.SeverityHardBlock
		if v.Confidence < p.cfg.ConfidenceFloor {
			severity = incident.SeveritySoftWarn
		}
		p.metrics.ObserveValidation(StageClassifier, "rejected")
		p.dispatch(ctx, req, v, incident.OutcomeRejected, severity, classifierDetail(c))
	case v.Confidence < p.cfg.SoftWatchThreshold:
		p.metrics.ObserveValidation(StageClassifier, "accepted")
		p.dispatch(ctx, req, v, incident.OutcomeWatch, incident.SeveritySoftWarn, classifierDetail(c))
	default:
		p.metrics.ObserveValidation(StageClassifier, "accepted")
	}
	return v
}

// checkInput is step one: presence and length, before any text analysis.
func (p *Pipeline) checkInput(destination, notes string) (Verdict, string, bool) {
	switch {
	case destination == "":
		return reject(CategoryInvalidDestination, reasonMissingDest, 100), "missing destination", true
	case utf8.RuneCountInString(destination) > p.cfg.MaxDestinationLength:
		return reject(CategoryInvalidDestination, reasonDestTooLong, 100), "destination too long", true
	case utf8.RuneCountInString(notes) < p.cfg.MinNotesLength:
		return reject(CategoryNonTravelTask, reasonNotesTooShort, 100), "notes too short", true
	case utf8.RuneCountInString(notes) > p.cfg.MaxNotesLength:
		return reject(CategoryNonTravelTask, reasonNotesTooLong, 100), "notes too long", true
	}
	return Verdict{}, "", false
}

func (p *Pipeline) rejectDeterministic(ctx context.Context, req Request, stage, detail string, v Verdict) Verdict {
	p.metrics.ObserveValidation(stage, "rejected")
	p.dispatch(ctx, req, v, incident.OutcomeRejected, incident.SeverityHardBlock,
		fmt.Sprintf("stage=%s %s", stage, detail))
	return v
}

// dispatch hands an incident to the logger. Logger failures, including
// panics, never reach the caller.
func (p *Pipeline) dispatch(ctx context.Context, req Request, v Verdict, outcome, severity, detail string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("incident logger panicked", "panic", r)
		}
	}()

	text := deref(req.Destination) + "\n" + deref(req.Notes)
	// Unchecked input from an outage may be anything, so it is treated
	// as sensitive.
	sensitive := v.Category.Sensitive() || outcome == incident.OutcomeUnavailable
	digest, excerpt := incident.Redact(text, sensitive)

	p.incidents.Log(context.WithoutCancel(ctx), incident.Record{
		Category:    string(v.Category),
		Severity:    severity,
		Outcome:     outcome,
		InputDigest: digest,
		Excerpt:     excerpt,
		UserID:      req.UserID,
		Confidence:  v.Confidence,
		Detail:      detail,
	})
	p.metrics.ObserveIncident(string(v.Category), severity)
}

// classifierDetail keeps the model's rationale for triage, except on
// the redacted categories where it may paraphrase the input.
func classifierDetail(c Classification) string {
	if c.Verdict.Category.Sensitive() {
		return fmt.Sprintf("stage=%s rationale=redacted", StageClassifier)
	}
	rationale := c.Rationale
	if utf8.RuneCountInString(rationale) > 200 {
		rationale = string([]rune(rationale)[:200])
	}
	return fmt.Sprintf("stage=%s rationale=%q", StageClassifier, rationale)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
