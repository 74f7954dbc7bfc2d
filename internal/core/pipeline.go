package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/ordex/internal/config"
	"github.com/agenthands/ordex/internal/core/escalation"
	"github.com/agenthands/ordex/internal/core/extraction"
	"github.com/agenthands/ordex/internal/core/model"
	"github.com/agenthands/ordex/internal/core/pattern"
	"github.com/agenthands/ordex/internal/core/reconcile"
	"github.com/agenthands/ordex/internal/llm"
	"github.com/agenthands/ordex/internal/metrics"
	"github.com/agenthands/ordex/internal/textsource"
)

// Pipeline runs text through pattern extraction and, when needed, the
// generative fallback. It holds no per-request state.
type Pipeline struct {
	Patterns   pattern.Extractor
	Reconciler *reconcile.Reconciler
	Source     textsource.Source
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

func NewPipeline(cfg *config.Config, llmClient llm.Client, m *metrics.Metrics, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	critical, err := cfg.CriticalFields()
	if err != nil {
		return nil, err
	}

	policy := escalation.NewPolicy(critical...)
	gen := extraction.NewExtractor(llmClient, cfg.Extraction, cfg.LLM.Temperature, logger)

	return &Pipeline{
		Reconciler: reconcile.NewReconciler(policy, gen, cfg.LLM.Timeout.Duration, m, logger),
		Source:     textsource.NewAuto(),
		Metrics:    m,
		Logger:     logger,
	}, nil
}

// Extract never fails: missing fields come back as nil.
func (p *Pipeline) Extract(ctx context.Context, text string, opts reconcile.Options) model.ExtractionResult {
	fields := p.Patterns.Extract(text)
	res := p.Reconciler.Reconcile(ctx, text, fields, opts)
	p.Metrics.ObserveResult(res)
	return res
}

// ExtractPatterns runs only the deterministic stage.
func (p *Pipeline) ExtractPatterns(text string) model.ExtractionResult {
	res := model.ExtractionResult{FieldSet: p.Patterns.Extract(text), Engine: model.EnginePattern}
	p.Metrics.ObserveResult(res)
	return res
}

// ExtractDocument reads the text of a raw document and extracts from it.
// Only reading the document can fail.
func (p *Pipeline) ExtractDocument(ctx context.Context, data []byte, contentType string, opts reconcile.Options) (model.ExtractionResult, error) {
	text, err := p.Source.Text(ctx, data, contentType)
	if err != nil {
		return model.ExtractionResult{}, fmt.Errorf("failed to read document: %w", err)
	}
	return p.Extract(ctx, text, opts), nil
}
