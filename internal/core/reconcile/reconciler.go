// Package reconcile merges pattern output with the generative fallback.
package reconcile

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/ordex/internal/config"
	"github.com/agenthands/ordex/internal/core/common"
	"github.com/agenthands/ordex/internal/core/escalation"
	"github.com/agenthands/ordex/internal/core/extraction"
	"github.com/agenthands/ordex/internal/core/model"
	"github.com/agenthands/ordex/internal/metrics"
)

var errNoGenerative = errors.New("no generative extractor configured")

// GenerativeExtractor is the fallback used when patterns are incomplete.
type GenerativeExtractor interface {
	Extract(ctx context.Context, text string, modelID string) extraction.Result
}

// Options carries per-request settings.
type Options struct {
	// Model overrides the configured generative model.
	Model string
}

type Reconciler struct {
	Policy     *escalation.Policy
	Generative GenerativeExtractor
	Timeout    time.Duration
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

func NewReconciler(policy *escalation.Policy, gen GenerativeExtractor, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *Reconciler {
	if policy == nil {
		policy = escalation.NewPolicy()
	}
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		Policy:     policy,
		Generative: gen,
		Timeout:    timeout,
		Metrics:    m,
		Logger:     logger,
	}
}

// Reconcile returns patterns unchanged when no critical field is missing.
// Otherwise it makes one generative call and fills the gaps of patterns
// with its values; pattern values always win. A failed call contributes
// nothing but the result is still labelled as escalated.
func (r *Reconciler) Reconcile(ctx context.Context, text string, patterns model.FieldSet, opts Options) model.ExtractionResult {
	log := common.Logger(ctx, r.Logger)

	missing := r.Policy.MissingCritical(patterns)
	if len(missing) == 0 {
		return model.ExtractionResult{FieldSet: patterns, Engine: model.EnginePattern}
	}

	log.Info("escalating to generative extraction",
		zap.Strings("missing_critical", fieldNames(missing)),
		zap.String("model", opts.Model),
	)

	gen := r.callGenerative(ctx, text, opts.Model)
	r.Metrics.ObserveGenerative(gen.OK(), gen.Duration)

	var generative model.FieldSet
	if gen.OK() {
		generative = gen.Fields
	} else {
		log.Warn("generative extraction failed, keeping pattern fields",
			zap.Error(gen.Err),
			zap.Duration("elapsed", gen.Duration),
		)
	}

	final := patterns.Merge(generative)
	recovered := recoveredFields(patterns, final)
	r.Metrics.ObserveRecovered(recovered)

	log.Info("reconciled",
		zap.Bool("generative_ok", gen.OK()),
		zap.Strings("recovered", fieldNames(recovered)),
		zap.Strings("still_missing", fieldNames(final.Missing())),
	)

	return model.ExtractionResult{FieldSet: final, Engine: model.EnginePatternGenerative}
}

// callGenerative bounds the call with the fixed timeout and detaches it from
// the caller's cancellation.
func (r *Reconciler) callGenerative(ctx context.Context, text, modelID string) extraction.Result {
	if r.Generative == nil {
		return extraction.Result{Err: errNoGenerative}
	}
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.Timeout)
	defer cancel()
	return r.Generative.Extract(callCtx, text, modelID)
}

func recoveredFields(before, after model.FieldSet) []model.Field {
	var out []model.Field
	for _, f := range model.AllFields {
		if !before.Has(f) && after.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func fieldNames(fields []model.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
