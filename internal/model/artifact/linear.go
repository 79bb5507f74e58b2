// Package artifact loads serialized classifier artifacts from disk and
// adapts them to the model capability interface. Artifacts are JSON
// documents produced by the offline training pipeline; the rest of the
// service never looks past the adapters.
package artifact

import (
	"errors"
	"math"
)

// linearModel is a logistic-regression artifact: a weight per feature
// plus an intercept, squashed through the logistic function.
type linearModel struct {
	featureNames []string
	coefficients []float64
	intercept    float64
}

type linearDocument struct {
	ModelType    string    `json:"model_type"`
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func newLinearModel(doc linearDocument) (*linearModel, error) {
	if len(doc.Coefficients) == 0 {
		return nil, errors.New("linear artifact has no coefficients")
	}
	if len(doc.FeatureNames) != 0 && len(doc.FeatureNames) != len(doc.Coefficients) {
		return nil, errors.New("linear artifact feature names do not match coefficients")
	}
	return &linearModel{
		featureNames: doc.FeatureNames,
		coefficients: doc.Coefficients,
		intercept:    doc.Intercept,
	}, nil
}

func (m *linearModel) Predict(rows [][]float64) ([]float64, error) {
	probs, err := m.PredictProbabilities(rows)
	if err != nil {
		return nil, err
	}
	labels := make([]float64, len(probs))
	for i, p := range probs {
		if p[1] > 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}

func (m *linearModel) PredictProbabilities(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(m.coefficients) {
			return nil, errors.New("feature row width does not match model")
		}
		z := m.intercept
		for j, v := range row {
			z += m.coefficients[j] * v
		}
		p := sigmoid(z)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

func (m *linearModel) FeatureNames() []string {
	if len(m.featureNames) == 0 {
		return nil
	}
	return m.featureNames
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
