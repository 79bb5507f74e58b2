package service

import (
	"path/filepath"
	"sort"

	"github.com/smallbiznis/returnsight/internal/clock"
	"github.com/smallbiznis/returnsight/internal/config"
	"github.com/smallbiznis/returnsight/internal/features"
	"github.com/smallbiznis/returnsight/internal/model/artifact"
	"github.com/smallbiznis/returnsight/internal/model/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Fixed confidence reported when a model cannot emit probabilities. A
// known approximation, not a calibrated confidence.
const labelOnlyConfidence = 0.8

type Params struct {
	fx.In

	Config config.Config
	Rules  *config.RulesHolder
	Log    *zap.Logger
	Clock  clock.Clock
}

// Engine holds the primary and fallback model slots plus the rule-based
// dummy stand-in. Artifacts load once at startup and are read-only
// afterwards; concurrent reads are safe without locking.
type Engine struct {
	log   *zap.Logger
	clock clock.Clock
	rules *config.RulesHolder

	modelsDir string

	primary      domain.Model
	primaryType  string
	fallback     domain.Model
	fallbackType string
	dummy        *artifact.DummyModel

	metadata map[string]domain.Metadata
}

func New(p Params) *Engine {
	e := &Engine{
		log:       p.Log.Named("model.engine"),
		clock:     p.Clock,
		rules:     p.Rules,
		modelsDir: p.Config.ModelsDir,
		dummy:     artifact.NewDummyModel(),
		metadata:  map[string]domain.Metadata{},
	}
	e.loadArtifacts()
	return e
}

// loadArtifacts loads both slots and the metadata document. A missing or
// corrupt artifact is degraded mode, never a startup failure.
func (e *Engine) loadArtifacts() {
	primaryPath := filepath.Join(e.modelsDir, artifact.PrimaryFile)
	if m, typ, err := artifact.Load(primaryPath); err != nil {
		e.log.Warn("primary model not loaded", zap.String("path", primaryPath), zap.Error(err))
	} else {
		e.primary = m
		e.primaryType = typ
		e.log.Info("primary model loaded", zap.String("path", primaryPath), zap.String("type", typ))
	}

	fallbackPath := filepath.Join(e.modelsDir, artifact.FallbackFile)
	if m, typ, err := artifact.Load(fallbackPath); err != nil {
		e.log.Warn("fallback model not loaded", zap.String("path", fallbackPath), zap.Error(err))
	} else {
		e.fallback = m
		e.fallbackType = typ
		e.log.Info("fallback model loaded", zap.String("path", fallbackPath), zap.String("type", typ))
	}

	metadataPath := filepath.Join(e.modelsDir, artifact.MetadataFile)
	if meta, err := artifact.LoadMetadata(metadataPath); err != nil {
		e.log.Warn("model metadata not loaded", zap.String("path", metadataPath), zap.Error(err))
	} else {
		e.metadata = meta
	}

	if e.primary == nil && e.fallback == nil {
		e.log.Warn("no model artifacts available, serving with dummy model",
			zap.String("models_dir", e.modelsDir))
	}
}

// Columns returns the feature columns the active model expects, in its
// declared order, falling back to the canonical training set.
func (e *Engine) Columns() []string {
	for _, m := range []domain.Model{e.primary, e.fallback} {
		if m == nil {
			continue
		}
		if namer, ok := m.(domain.FeatureNamer); ok {
			if names := namer.FeatureNames(); len(names) > 0 {
				return names
			}
		}
	}
	return features.CanonicalColumns
}

// Predict runs the resolution chain primary -> fallback -> dummy over an
// engineered feature set. It never returns an error to its caller: total
// failure yields a well-formed result with Success=false and UNKNOWN
// risk.
func (e *Engine) Predict(fs features.FeatureSet) domain.PredictionResult {
	type slot struct {
		model domain.Model
		name  domain.Slot
		typ   string
	}
	slots := []slot{
		{e.primary, domain.SlotPrimary, e.primaryType},
		{e.fallback, domain.SlotFallback, e.fallbackType},
		{e.dummy, domain.SlotDummy, "DummyModel"},
	}

	var lastErr error
	for _, s := range slots {
		if s.model == nil {
			continue
		}
		result, err := e.predictWith(s.model, s.name, s.typ, fs)
		if err != nil {
			e.log.Warn("model slot failed, trying next",
				zap.String("slot", string(s.name)), zap.Error(err))
			lastErr = err
			continue
		}
		return result
	}

	result := domain.PredictionResult{
		Success:   false,
		RiskLevel: domain.RiskUnknown,
		Timestamp: e.clock.Now(),
	}
	if lastErr != nil {
		result.Error = lastErr.Error()
	} else {
		result.Error = domain.ErrPredictionFailed.Error()
	}
	return result
}

func (e *Engine) predictWith(m domain.Model, slot domain.Slot, typ string, fs features.FeatureSet) (domain.PredictionResult, error) {
	columns := e.columnsFor(m)
	if missing := features.MissingColumns(fs, columns); len(missing) > 0 {
		e.log.Warn("filling missing feature columns with defaults",
			zap.String("slot", string(slot)), zap.Strings("columns", missing))
	}
	row := features.Align(fs, columns)
	rows := [][]float64{row}

	var probability, confidence float64
	if pp, ok := m.(domain.ProbabilityPredictor); ok {
		probs, err := pp.PredictProbabilities(rows)
		if err != nil {
			return domain.PredictionResult{}, err
		}
		vec := probs[0]
		if len(vec) > 1 {
			probability = vec[1]
		} else {
			probability = vec[0]
		}
		confidence = maxOf(vec)
	} else {
		labels, err := m.Predict(rows)
		if err != nil {
			return domain.PredictionResult{}, err
		}
		probability = labels[0]
		confidence = labelOnlyConfidence
	}

	thresholds := e.rules.Get().RiskThresholds
	result := domain.PredictionResult{
		Success:           true,
		WillReturn:        probability > 0.5,
		ReturnProbability: probability,
		ConfidenceScore:   confidence,
		RiskLevel:         domain.RiskLevelFor(probability, thresholds.Low, thresholds.Medium),
		ModelUsed:         slot,
		ModelType:         typ,
		FeatureImportance: importancesFor(m, columns),
		Timestamp:         e.clock.Now(),
	}
	return result, nil
}

func (e *Engine) columnsFor(m domain.Model) []string {
	if namer, ok := m.(domain.FeatureNamer); ok {
		if names := namer.FeatureNames(); len(names) > 0 {
			return names
		}
	}
	return features.CanonicalColumns
}

// importancesFor zips model importances against the columns actually
// passed to Predict, sorted descending. Empty when the model does not
// expose importances.
func importancesFor(m domain.Model, columns []string) []domain.FeatureImportance {
	reporter, ok := m.(domain.ImportanceReporter)
	if !ok {
		return nil
	}
	values := reporter.FeatureImportances()
	if len(values) == 0 {
		return nil
	}
	n := len(values)
	if len(columns) < n {
		n = len(columns)
	}
	out := make([]domain.FeatureImportance, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.FeatureImportance{Feature: columns[i], Importance: values[i]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}

// HealthCheck runs a test prediction through the resolution chain. The
// engine stays healthy on missing artifacts; the slot flags tell the
// operator which models actually loaded.
func (e *Engine) HealthCheck() domain.Health {
	health := domain.Health{
		Status: "healthy",
		ModelsLoaded: domain.SlotHealth{
			Primary:  e.primary != nil,
			Fallback: e.fallback != nil,
		},
		Timestamp: e.clock.Now(),
	}

	probe := features.FeatureSet{
		"Product_Category": 1, "Product_Price": 99.99, "Order_Quantity": 1,
		"User_Age": 30, "User_Gender": 1, "Payment_Method": 1,
		"Shipping_Method": 1, "Discount_Applied": 0, "Total_Order_Value": 99.99,
		"Order_Year": 2024, "Order_Month": 6, "Order_Weekday": 2,
		"User_Location_Num": 1, "Return_Risk_Score": 0, "Price_Per_Item": 99.0,
		"High_Discount": 0, "Young": 0, "High_Value": 0,
	}
	result := e.Predict(probe)
	if result.Success {
		health.TestPrediction = "successful"
	} else {
		health.Status = "unhealthy"
		health.Error = result.Error
	}
	return health
}

// Info reports slot load state and training metadata.
func (e *Engine) Info() domain.Info {
	info := domain.Info{
		Primary:   domain.SlotInfo{Loaded: e.primary != nil, Type: e.primaryType},
		Fallback:  domain.SlotInfo{Loaded: e.fallback != nil, Type: e.fallbackType},
		Metadata:  e.metadata,
		ModelsDir: e.modelsDir,
	}
	return info
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
