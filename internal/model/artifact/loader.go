package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smallbiznis/returnsight/internal/model/domain"
)

// Artifact file names fixed by the training pipeline.
const (
	PrimaryFile  = "return_model.json"
	FallbackFile = "random_forest_model.json"
	MetadataFile = "model_metrics.json"
)

// Load reads one artifact file and adapts it to the model interface.
// Missing, empty, and corrupt files are load errors; callers decide
// whether that is fatal (it never is for the inference engine).
func Load(path string) (domain.Model, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("stat artifact: %w", err)
	}
	if info.Size() == 0 {
		return nil, "", fmt.Errorf("artifact %s is empty", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read artifact: %w", err)
	}

	var header struct {
		ModelType string `json:"model_type"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, "", fmt.Errorf("decode artifact %s: %w", filepath.Base(path), err)
	}

	switch header.ModelType {
	case "logistic_regression", "linear":
		var doc linearDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, "", fmt.Errorf("decode linear artifact: %w", err)
		}
		m, err := newLinearModel(doc)
		if err != nil {
			return nil, "", err
		}
		return m, header.ModelType, nil
	case "random_forest", "gradient_boosting", "tree_ensemble":
		var doc forestDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, "", fmt.Errorf("decode forest artifact: %w", err)
		}
		m, err := newForestModel(doc)
		if err != nil {
			return nil, "", err
		}
		return m, header.ModelType, nil
	default:
		return nil, "", fmt.Errorf("unsupported model_type %q in %s", header.ModelType, filepath.Base(path))
	}
}

// LoadMetadata reads the training metadata document, keyed by slot name.
func LoadMetadata(path string) (map[string]domain.Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat metadata: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("metadata %s is empty", filepath.Base(path))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	out := map[string]domain.Metadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return out, nil
}
