package artifact

import "errors"

// forestModel is a tree-ensemble artifact: each tree is stored as flat
// parallel arrays (sklearn export layout), leaves hold the return-class
// probability, and the ensemble prediction is the mean over trees.
type forestModel struct {
	featureNames []string
	importances  []float64
	trees        []tree
}

type tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	SplitFeature  []int     `json:"split_feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

type forestDocument struct {
	ModelType          string    `json:"model_type"`
	FeatureNames       []string  `json:"feature_names"`
	FeatureImportances []float64 `json:"feature_importances"`
	Trees              []tree    `json:"trees"`
}

func newForestModel(doc forestDocument) (*forestModel, error) {
	if len(doc.Trees) == 0 {
		return nil, errors.New("forest artifact has no trees")
	}
	for _, t := range doc.Trees {
		n := len(t.ChildrenLeft)
		if n == 0 || len(t.ChildrenRight) != n || len(t.SplitFeature) != n ||
			len(t.Threshold) != n || len(t.Value) != n {
			return nil, errors.New("forest artifact tree arrays are inconsistent")
		}
	}
	return &forestModel{
		featureNames: doc.FeatureNames,
		importances:  doc.FeatureImportances,
		trees:        doc.Trees,
	}, nil
}

func (m *forestModel) Predict(rows [][]float64) ([]float64, error) {
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

func (m *forestModel) PredictProbabilities(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		sum := 0.0
		for _, t := range m.trees {
			leaf, err := t.traverse(row)
			if err != nil {
				return nil, err
			}
			sum += leaf
		}
		p := sum / float64(len(m.trees))
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

func (t tree) traverse(row []float64) (float64, error) {
	node := 0
	for steps := 0; steps <= len(t.ChildrenLeft); steps++ {
		if t.ChildrenLeft[node] < 0 {
			return t.Value[node], nil
		}
		feat := t.SplitFeature[node]
		if feat < 0 || feat >= len(row) {
			return 0, errors.New("feature row width does not match model")
		}
		if row[feat] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
		if node < 0 || node >= len(t.ChildrenLeft) {
			return 0, errors.New("forest artifact has an out-of-range child index")
		}
	}
	return 0, errors.New("forest artifact tree contains a cycle")
}

func (m *forestModel) FeatureNames() []string {
	if len(m.featureNames) == 0 {
		return nil
	}
	return m.featureNames
}

func (m *forestModel) FeatureImportances() []float64 {
	if len(m.importances) == 0 {
		return nil
	}
	return m.importances
}
