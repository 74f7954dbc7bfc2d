package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/ordex/internal/config"
	"github.com/agenthands/ordex/internal/core/escalation"
	"github.com/agenthands/ordex/internal/core/extraction"
	"github.com/agenthands/ordex/internal/core/model"
	"github.com/agenthands/ordex/internal/core/pattern"
	"github.com/agenthands/ordex/internal/llm"
	"github.com/agenthands/ordex/internal/metrics"
)

const fullGenerative = `{
	"os_num": "9999",
	"data": "01/01/2000",
	"cnpj": "99.999.999/9999-99",
	"valor_total": "500,00",
	"solicitante": "Modelo",
	"descricao": "Descrição do modelo"
}`

func newReconciler(client llm.Client, m *metrics.Metrics) *Reconciler {
	gen := extraction.NewExtractor(client, config.ExtractionConfig{}, 0.1, nil)
	return NewReconciler(escalation.NewPolicy(), gen, time.Second, m, nil)
}

func str(s string) *string { return &s }

func TestCompletePatternsSkipGenerative(t *testing.T) {
	mockLLM := &llm.MockClient{Response: fullGenerative}
	r := newReconciler(mockLLM, nil)

	text := "OS 4521\nDescrição: Troca de peça\nTotal R$ 1.234,56"
	patterns := pattern.Extract(text)

	res := r.Reconcile(context.Background(), text, patterns, Options{})

	assert.Equal(t, model.EnginePattern, res.Engine)
	assert.Equal(t, patterns, res.FieldSet)
	assert.Zero(t, mockLLM.Calls())
}

func TestScenarioMissingValorTotal(t *testing.T) {
	mockLLM := &llm.MockClient{Response: `{"os_num": "1111", "data": null, "cnpj": null,
		"valor_total": "500,00", "solicitante": null, "descricao": "outra coisa"}`}
	r := newReconciler(mockLLM, nil)

	text := "Ordem de Serviço nº 4521 emitida\nDescrição: Troca de peça do motor\nsem valor informado"
	patterns := pattern.Extract(text)
	require.Equal(t, "4521", *patterns.OSNum)
	require.Equal(t, "Troca de peça do motor", *patterns.Descricao)
	require.Nil(t, patterns.ValorTotal)

	res := r.Reconcile(context.Background(), text, patterns, Options{Model: "m"})

	assert.Equal(t, model.EnginePatternGenerative, res.Engine)
	assert.Equal(t, "500,00", *res.ValorTotal)
	assert.Equal(t, "4521", *res.OSNum)
	assert.Equal(t, "Troca de peça do motor", *res.Descricao)
	assert.Equal(t, 1, mockLLM.Calls())
	assert.Equal(t, "m", mockLLM.Requests()[0].Model)
}

func TestPatternValuesAlwaysWin(t *testing.T) {
	mockLLM := &llm.MockClient{Response: fullGenerative}
	r := newReconciler(mockLLM, nil)

	var patterns model.FieldSet
	patterns.Set(model.FieldOSNum, str("4521"))
	patterns.Set(model.FieldCNPJ, str("12.345.678/0001-90"))
	patterns.Set(model.FieldSolicitante, str("Maria"))

	res := r.Reconcile(context.Background(), "x", patterns, Options{})

	assert.Equal(t, "4521", *res.OSNum)
	assert.Equal(t, "12.345.678/0001-90", *res.CNPJ)
	assert.Equal(t, "Maria", *res.Solicitante)
	assert.Equal(t, "01/01/2000", *res.Data)
	assert.Equal(t, "500,00", *res.ValorTotal)
	assert.Equal(t, "Descrição do modelo", *res.Descricao)
}

func TestGenerativeFailureKeepsPatterns(t *testing.T) {
	var patterns model.FieldSet
	patterns.Set(model.FieldOSNum, str("4521"))
	patterns.Set(model.FieldData, str("12/03/2024"))

	for name, client := range map[string]*llm.MockClient{
		"malformed": {Response: "desculpe, não consegui"},
		"transport": {Err: errors.New("dial tcp: i/o timeout")},
		"truncated": {Response: `{"valor_total": "500,00"`},
	} {
		t.Run(name, func(t *testing.T) {
			r := newReconciler(client, nil)

			res := r.Reconcile(context.Background(), "x", patterns, Options{})

			assert.Equal(t, model.EnginePatternGenerative, res.Engine)
			assert.Equal(t, patterns, res.FieldSet)
			assert.Equal(t, 1, client.Calls())
		})
	}
}

func TestEmptyTextEscalates(t *testing.T) {
	mockLLM := &llm.MockClient{Response: `{}`}
	r := newReconciler(mockLLM, nil)

	patterns := pattern.Extract("")
	require.True(t, r.Policy.NeedsFallback(patterns))

	res := r.Reconcile(context.Background(), "", patterns, Options{})

	assert.Equal(t, model.EnginePatternGenerative, res.Engine)
	assert.Equal(t, model.AllFields, res.Missing())
}

type ctxRecorder struct {
	deadline time.Time
	hasDL    bool
	ctxErr   error
}

func (c *ctxRecorder) Extract(ctx context.Context, text string, modelID string) extraction.Result {
	c.deadline, c.hasDL = ctx.Deadline()
	c.ctxErr = ctx.Err()
	return extraction.Result{Err: errors.New("unused")}
}

func TestGenerativeCallIsBoundedAndDetached(t *testing.T) {
	rec := &ctxRecorder{}
	r := NewReconciler(nil, rec, 2*time.Second, nil, nil)

	parent, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	res := r.Reconcile(parent, "x", model.FieldSet{}, Options{})

	assert.Equal(t, model.EnginePatternGenerative, res.Engine)
	assert.True(t, rec.hasDL)
	assert.WithinDuration(t, start.Add(2*time.Second), rec.deadline, time.Second)
	assert.NoError(t, rec.ctxErr)
}

func TestNoGenerativeConfigured(t *testing.T) {
	r := NewReconciler(nil, nil, 0, nil, nil)

	res := r.Reconcile(context.Background(), "x", model.FieldSet{}, Options{})

	assert.Equal(t, model.EnginePatternGenerative, res.Engine)
	assert.Equal(t, config.DefaultTimeout, r.Timeout)
}

func TestReconcileMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := newReconciler(&llm.MockClient{Response: `{"valor_total": "10,00"}`}, m)
	r.Reconcile(context.Background(), "x", model.FieldSet{}, Options{})

	failing := newReconciler(&llm.MockClient{Err: errors.New("boom")}, m)
	failing.Reconcile(context.Background(), "x", model.FieldSet{}, Options{})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerativeCalls.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerativeCalls.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FieldsRecovered.WithLabelValues("valor_total")))
}
