package classifier

import (
	"context"
	"fmt"
	"math"
	"slices"

	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/features"
	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/observability"
)

// Label is the screening outcome.
type Label string

const (
	LabelDisorder Label = "Disorder"
	LabelHealthy  Label = "Healthy"
	LabelUnknown  Label = "Unknown"
)

// Result is a classification. Probability is the positive-class
// probability at full precision; Decision is the raw model margin.
type Result struct {
	Label       Label   `json:"label"`
	Probability float64 `json:"probability"`
	Decision    float64 `json:"-"`
}

// Unknown is the result reported when no prediction could be made.
func Unknown() Result { return Result{Label: LabelUnknown} }

// Adapter evaluates the store's current model.
type Adapter struct {
	store   *Store
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewAdapter creates an adapter over store. metrics may be nil.
func NewAdapter(store *Store, log *logger.Logger, metrics *observability.Metrics) *Adapter {
	return &Adapter{store: store, log: log.WithComponent("classifier"), metrics: metrics}
}

// Classify maps v to a label. It never fails: problems are logged,
// counted and reported as Unknown.
func (a *Adapter) Classify(ctx context.Context, v features.Vector) Result {
	return a.classify(ctx, v.Slice())
}

func (a *Adapter) classify(ctx context.Context, x []float64) (res Result) {
	m, err := a.store.Model()
	if err != nil {
		return a.unavailable(ctx, "missing", apperrors.ClassificationUnavailable("model not loaded", err))
	}
	if len(x) != m.Width() {
		return a.unavailable(ctx, "shape", apperrors.ClassificationUnavailable(
			fmt.Sprintf("input has %d features, model expects %d", len(x), m.Width()), nil))
	}
	pos := slices.Index(m.Classes(), a.store.PositiveClass())
	if pos < 0 {
		return a.unavailable(ctx, "positive_class", apperrors.ClassificationUnavailable(
			fmt.Sprintf("class %q not in model classes %v", a.store.PositiveClass(), m.Classes()), nil))
	}

	defer func() {
		if r := recover(); r != nil {
			res = a.unavailable(ctx, "panic", apperrors.ClassificationUnavailable(fmt.Sprintf("model panicked: %v", r), nil))
		}
	}()

	probs := m.Probabilities(x)
	decision := m.Decision(x)
	for _, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return a.unavailable(ctx, "non_finite", apperrors.ClassificationUnavailable("model returned non-finite probability", nil))
		}
	}

	label := LabelHealthy
	if argmax(probs) == pos {
		label = LabelDisorder
	}
	return Result{Label: label, Probability: clamp01(probs[pos]), Decision: decision}
}

func (a *Adapter) unavailable(ctx context.Context, reason string, err *apperrors.AppError) Result {
	a.metrics.RecordClassifierUnavailable(ctx, reason)
	a.log.WithContext(ctx).Warn("classification unavailable", logger.Fields("reason", reason, logger.FieldError, err.Error()))
	return Unknown()
}

// argmax returns the first index of the largest value.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func clamp01(p float64) float64 {
	return math.Min(1, math.Max(0, p))
}
