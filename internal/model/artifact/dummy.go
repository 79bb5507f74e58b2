package artifact

import (
	"errors"
	"math"

	"github.com/smallbiznis/returnsight/internal/features"
)

// DummyModel is the deterministic rule-based stand-in used when no real
// artifact loads: expensive items and younger buyers are more likely to
// return. It keeps the service serving instead of hard-failing on
// missing artifacts.
type DummyModel struct {
	priceIdx int
	ageIdx   int
}

func NewDummyModel() *DummyModel {
	d := &DummyModel{priceIdx: -1, ageIdx: -1}
	for i, col := range features.CanonicalColumns {
		switch col {
		case "Product_Price":
			d.priceIdx = i
		case "User_Age":
			d.ageIdx = i
		}
	}
	return d
}

func (d *DummyModel) FeatureNames() []string {
	return features.CanonicalColumns
}

func (d *DummyModel) Predict(rows [][]float64) ([]float64, error) {
	labels := make([]float64, len(rows))
	for i, row := range rows {
		price, age, err := d.priceAge(row)
		if err != nil {
			return nil, err
		}
		if price > 150 || age < 25 {
			labels[i] = 1
		}
	}
	return labels, nil
}

func (d *DummyModel) PredictProbabilities(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		price, age, err := d.priceAge(row)
		if err != nil {
			return nil, err
		}
		p := math.Min(0.8, price/500.0+math.Max(0, 35-age)/100.0)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

func (d *DummyModel) priceAge(row []float64) (float64, float64, error) {
	if d.priceIdx >= len(row) || d.ageIdx >= len(row) {
		return 0, 0, errors.New("feature row width does not match model")
	}
	return row[d.priceIdx], row[d.ageIdx], nil
}
