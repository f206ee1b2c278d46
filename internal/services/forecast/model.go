package forecast

import (
	"fmt"
	"math/rand"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
)

// LinearModel is a linear autoregressive regressor over flattened
// feature windows, fitted by stochastic gradient descent. One Train
// call runs one epoch over the dataset. Weight initialization is drawn
// from a seeded source, so two models built with the same seed and fed
// the same data stay bit-identical.
type LinearModel struct {
	weights []float64 // seqLen*FeatureDim inputs + bias at the end
	seqLen  int
	lr      float64
}

// NewLinearModel creates a model for windows of seqLen feature vectors.
func NewLinearModel(seqLen int, learningRate float64, seed int64) *LinearModel {
	rng := rand.New(rand.NewSource(seed))
	n := seqLen*models.FeatureDim + 1
	w := make([]float64, n)
	for i := range w {
		w[i] = (rng.Float64() - 0.5) * 0.1
	}
	return &LinearModel{weights: w, seqLen: seqLen, lr: learningRate}
}

// Train runs one SGD epoch over the samples.
func (m *LinearModel) Train(samples []models.TrainingSample) error {
	if len(samples) == 0 {
		return fmt.Errorf("linear model: empty training set")
	}
	x := make([]float64, m.seqLen*models.FeatureDim)
	for _, s := range samples {
		if err := m.flatten(s.Window, x); err != nil {
			return err
		}
		pred := m.forward(x)
		grad := pred - s.Label
		for i, v := range x {
			m.weights[i] -= m.lr * grad * v
		}
		m.weights[len(m.weights)-1] -= m.lr * grad
	}
	return nil
}

// Predict returns the normalized next value for a window.
func (m *LinearModel) Predict(window []models.FeatureVector) (float64, error) {
	x := make([]float64, m.seqLen*models.FeatureDim)
	if err := m.flatten(window, x); err != nil {
		return 0, err
	}
	return m.forward(x), nil
}

func (m *LinearModel) forward(x []float64) float64 {
	sum := m.weights[len(m.weights)-1]
	for i, v := range x {
		sum += m.weights[i] * v
	}
	return sum
}

func (m *LinearModel) flatten(window []models.FeatureVector, dst []float64) error {
	if len(window) != m.seqLen {
		return fmt.Errorf("linear model: window length %d, want %d", len(window), m.seqLen)
	}
	for i, fv := range window {
		copy(dst[i*models.FeatureDim:], fv[:])
	}
	return nil
}

var _ domsvc.SequenceModel = (*LinearModel)(nil)
