// Package feedback generates short Spanish coaching messages for scoring
// dimensions using an LLM provider.
//
// Feedback is best-effort by design: a slow provider falls back to a canned
// per-dimension message, and any other provider failure yields an empty
// string. A feedback problem never fails the surrounding scores request.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/altavoz-ai/altavoz/internal/observe"
	"github.com/altavoz-ai/altavoz/internal/scoring"
	"github.com/altavoz-ai/altavoz/pkg/provider/llm"
)

// DefaultTimeout bounds a single feedback completion call.
const DefaultTimeout = 3 * time.Second

// Completion parameters. The 80-token cap approximates the 25-word limit the
// prompts ask for.
const (
	feedbackMaxTokens   = 80
	feedbackTemperature = 0.75
)

// timeoutFallbacks are the canned messages returned when the provider does
// not answer within the timeout. Keyed by dimension name.
var timeoutFallbacks = map[string]string{
	scoring.DimensionClarity:    "Continúa trabajando en la precisión de tu habla. Cada práctica te acerca más a una comunicación más clara y efectiva.",
	scoring.DimensionRhythm:     "Sigue practicando para encontrar tu ritmo natural. El ritmo mejora gradualmente con la práctica consciente.",
	scoring.DimensionVocabulary: "Explora nuevas palabras a través de la lectura y conversación. Tu vocabulario se enriquecerá con constancia y curiosidad.",
	DimensionOverall:            "Tu dedicación es valiosa. Continúa trabajando en las diferentes dimensiones de tu habla con paciencia y constancia.",
}

// DimensionOverall is the synthetic dimension covering the mean of all
// present dimensions. It only exists at the feedback/final-scores layer; the
// scoring engine never emits it.
const DimensionOverall = "overall"

// Request describes one dimension to generate feedback for.
type Request struct {
	// Dimension is the dimension name (clarity, rhythm, vocabulary, overall).
	Dimension string

	// Score is the dimension score in [0, 100].
	Score float64

	// Metrics optionally lists the constituent metric results, included in
	// the prompt as context. Nil for the overall dimension.
	Metrics map[string]scoring.MetricResult
}

// Option is a functional option for [NewGenerator].
type Option func(*Generator)

// WithTimeout overrides the per-call completion timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithObserveMetrics attaches OTel instruments for feedback latency and
// provider request accounting.
func WithObserveMetrics(m *observe.Metrics) Option {
	return func(g *Generator) { g.obs = m }
}

// Generator produces per-dimension feedback through an [llm.Provider].
// Safe for concurrent use.
type Generator struct {
	provider llm.Provider
	timeout  time.Duration
	obs      *observe.Metrics
}

// NewGenerator creates a Generator backed by p.
func NewGenerator(p llm.Provider, opts ...Option) *Generator {
	g := &Generator{
		provider: p,
		timeout:  DefaultTimeout,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// ForDimension generates feedback for a single dimension. It never returns
// an error: a timed-out call yields the dimension's fallback message, any
// other provider failure yields "".
func (g *Generator) ForDimension(ctx context.Context, req Request) string {
	start := time.Now()
	system, user := buildPrompts(req)

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.Complete(cctx, llm.CompletionRequest{
		Messages:     []llm.Message{{Role: "user", Content: user}},
		SystemPrompt: system,
		Temperature:  feedbackTemperature,
		MaxTokens:    feedbackMaxTokens,
	})
	if g.obs != nil {
		g.obs.FeedbackDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("feedback generation timed out", "dimension", req.Dimension)
			if g.obs != nil {
				g.obs.RecordProviderRequest(ctx, "llm", "feedback", "timeout")
			}
			if msg, ok := timeoutFallbacks[req.Dimension]; ok {
				return msg
			}
			return fmt.Sprintf("Continúa practicando para mejorar tu %s. Tu esfuerzo es fundamental.", req.Dimension)
		}
		slog.Error("feedback generation failed", "dimension", req.Dimension, "err", err)
		if g.obs != nil {
			g.obs.RecordProviderRequest(ctx, "llm", "feedback", "error")
		}
		return ""
	}
	if g.obs != nil {
		g.obs.RecordProviderRequest(ctx, "llm", "feedback", "ok")
	}
	return strings.TrimSpace(resp.Content)
}

// ForAll generates feedback for every request concurrently and returns a map
// keyed by dimension name. Individual failures degrade to fallback or empty
// feedback exactly as in [Generator.ForDimension].
func (g *Generator) ForAll(ctx context.Context, reqs []Request) map[string]string {
	results := make([]string, len(reqs))
	var grp errgroup.Group
	for i, req := range reqs {
		grp.Go(func() error {
			results[i] = g.ForDimension(ctx, req)
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronises.
	_ = grp.Wait()

	out := make(map[string]string, len(reqs))
	for i, req := range reqs {
		out[req.Dimension] = results[i]
	}
	return out
}

// buildPrompts assembles the Spanish system and user prompts for req.
func buildPrompts(req Request) (system, user string) {
	metricsInfo := formatMetricsInfo(req.Metrics)

	switch req.Dimension {
	case scoring.DimensionClarity:
		system = "Eres un experto en fonoaudiología que proporciona retroalimentación constructiva y alentadora " +
			"en español sobre la claridad del habla. Tu estilo es profesional y motivador. " +
			"IMPORTANTE: NO menciones puntuaciones numéricas en tu respuesta, solo proporciona retroalimentación cualitativa. " +
			"Máximo 25 palabras."
		user = fmt.Sprintf(
			"El estudiante tiene una puntuación de %.2f/100 en la dimensión de CLARIDAD "+
				"(precisión en la transcripción).%s\n\n"+
				"Proporciona retroalimentación constructiva y alentadora en español (máximo 25 palabras, 2-3 oraciones). "+
				"Destaca aspectos positivos cuando los haya y sugiere mejoras específicas si es necesario. "+
				"NO menciones números, puntuaciones o porcentajes en tu respuesta.",
			req.Score, metricsInfo)
	case scoring.DimensionRhythm:
		system = "Eres un experto en fonoaudiología que proporciona retroalimentación constructiva y alentadora " +
			"en español sobre el ritmo del habla. Tu estilo es profesional y motivador. " +
			"IMPORTANTE: NO menciones puntuaciones numéricas en tu respuesta, solo proporciona retroalimentación cualitativa. " +
			"Máximo 25 palabras."
		user = fmt.Sprintf(
			"El estudiante tiene una puntuación de %.2f/100 en la dimensión de RITMO "+
				"(velocidad del habla y uso de palabras de relleno).%s\n\n"+
				"Proporciona retroalimentación constructiva y alentadora en español (máximo 25 palabras, 2-3 oraciones). "+
				"Destaca aspectos positivos cuando los haya y sugiere mejoras específicas sobre el ritmo y uso de muletillas si es necesario. "+
				"NO menciones números, puntuaciones o porcentajes en tu respuesta.",
			req.Score, metricsInfo)
	case scoring.DimensionVocabulary:
		system = "Eres un experto en fonoaudiología que proporciona retroalimentación constructiva y alentadora " +
			"en español sobre la variedad léxica del habla. Tu estilo es profesional y motivador. " +
			"IMPORTANTE: NO menciones puntuaciones numéricas en tu respuesta, solo proporciona retroalimentación cualitativa. " +
			"Máximo 25 palabras."
		user = fmt.Sprintf(
			"El estudiante tiene una puntuación de %.2f/100 en la dimensión de VOCABULARIO "+
				"(variedad léxica).%s\n\n"+
				"Proporciona retroalimentación constructiva y alentadora en español (máximo 25 palabras, 2-3 oraciones). "+
				"Destaca aspectos positivos cuando los haya y sugiere mejoras específicas sobre cómo enriquecer el vocabulario si es necesario. "+
				"NO menciones números, puntuaciones o porcentajes en tu respuesta.",
			req.Score, metricsInfo)
	case DimensionOverall:
		system = "Eres un experto en fonoaudiología que proporciona retroalimentación general constructiva y alentadora " +
			"en español sobre el desempeño general del habla. Tu estilo es profesional y motivador. " +
			"IMPORTANTE: NO menciones puntuaciones numéricas en tu respuesta, solo proporciona retroalimentación cualitativa. " +
			"Máximo 25 palabras."
		user = fmt.Sprintf(
			"El estudiante tiene una puntuación promedio de %.2f/100 en el desempeño general "+
				"(promedio de claridad, ritmo y vocabulario).\n\n"+
				"Proporciona retroalimentación general constructiva y alentadora en español (máximo 25 palabras, 2-3 oraciones). "+
				"Destaca fortalezas y proporciona una visión general del progreso. "+
				"NO menciones números, puntuaciones o porcentajes en tu respuesta.",
			req.Score)
	default:
		system = "Eres un experto en fonoaudiología que proporciona retroalimentación constructiva y alentadora " +
			"en español. Tu estilo es profesional y motivador. " +
			"IMPORTANTE: NO menciones puntuaciones numéricas en tu respuesta, solo proporciona retroalimentación cualitativa. " +
			"Máximo 25 palabras."
		user = fmt.Sprintf(
			"El estudiante tiene una puntuación de %.2f/100 en la dimensión de %s.%s\n\n"+
				"Proporciona retroalimentación constructiva y alentadora en español (máximo 25 palabras, 2-3 oraciones). "+
				"NO menciones números, puntuaciones o porcentajes en tu respuesta.",
			req.Score, req.Dimension, metricsInfo)
	}
	return system, user
}

// formatMetricsInfo renders the related-metrics block for the user prompt.
// Metric names are sorted so prompts are deterministic.
func formatMetricsInfo(metrics map[string]scoring.MetricResult) string {
	if len(metrics) == 0 {
		return ""
	}
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("\nMétricas relacionadas:")
	for _, name := range names {
		m := metrics[name]
		fmt.Fprintf(&b, "\n- %s: valor %.2f, puntuación %.2f/100", name, m.Raw, m.Score)
	}
	return b.String()
}
