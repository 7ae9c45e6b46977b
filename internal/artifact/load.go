package artifact

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-type-predictor/internal/weather"
)

// Manifest names the artifact files, relative to the directory holding the
// manifest.
type Manifest struct {
	Model        string `yaml:"model"`
	Preprocessor string `yaml:"preprocessor"`
	LabelEncoder string `yaml:"label_encoder"`
}

// Options configures Load.
type Options struct {
	// Dir is the artifact directory.
	Dir string
	// ManifestFile is the manifest name inside Dir.
	ManifestFile string
	// Model, if set, is used instead of the manifest's model file.
	Model weather.Model
}

type featureCounter interface {
	NumFeature() int
}

type classCounter interface {
	NumClass() int
}

// Load reads the manifest and the three artifacts it names. Every failure is
// collected so a broken deployment reports all of its problems at once.
func Load(opts Options) (weather.Artifacts, error) {
	manifestPath := filepath.Join(opts.Dir, opts.ManifestFile)
	var m Manifest
	if err := readYAML(manifestPath, &m); err != nil {
		return weather.Artifacts{}, fmt.Errorf("read artifact manifest: %w", err)
	}

	var (
		result *multierror.Error
		arts   weather.Artifacts
	)

	if m.Preprocessor == "" {
		result = multierror.Append(result, fmt.Errorf("manifest %s: preprocessor is not set", manifestPath))
	} else if pre, err := LoadPreprocessor(filepath.Join(opts.Dir, m.Preprocessor)); err != nil {
		result = multierror.Append(result, err)
	} else {
		arts.Preprocessor = pre
	}

	if m.LabelEncoder == "" {
		result = multierror.Append(result, fmt.Errorf("manifest %s: label_encoder is not set", manifestPath))
	} else if enc, err := LoadLabelEncoder(filepath.Join(opts.Dir, m.LabelEncoder)); err != nil {
		result = multierror.Append(result, err)
	} else {
		arts.Labels = enc
	}

	switch {
	case opts.Model != nil:
		arts.Model = opts.Model
	case m.Model == "":
		result = multierror.Append(result, fmt.Errorf("manifest %s: model is not set", manifestPath))
	default:
		model, err := LoadXGBoostModel(filepath.Join(opts.Dir, m.Model))
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			arts.Model = model
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return weather.Artifacts{}, err
	}
	if err := checkCompatible(arts); err != nil {
		return weather.Artifacts{}, err
	}

	log.Printf("INFO: loaded artifacts from %s (model=%s, classes=%v)", opts.Dir, arts.Model.Name(), arts.Labels.Classes())
	return arts, nil
}

// LoadPreprocessor reads a column transformer from a YAML or JSON file.
func LoadPreprocessor(path string) (*ColumnTransformer, error) {
	var spec PreprocessorSpec
	if err := readYAML(path, &spec); err != nil {
		return nil, fmt.Errorf("read preprocessor: %w", err)
	}
	ct, err := NewColumnTransformer(spec)
	if err != nil {
		return nil, fmt.Errorf("preprocessor %s: %w", path, err)
	}
	return ct, nil
}

// LoadLabelEncoder reads a label encoder from a YAML or JSON file.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	var spec LabelEncoderSpec
	if err := readYAML(path, &spec); err != nil {
		return nil, fmt.Errorf("read label encoder: %w", err)
	}
	enc, err := NewLabelEncoder(spec)
	if err != nil {
		return nil, fmt.Errorf("label encoder %s: %w", path, err)
	}
	return enc, nil
}

// LoadXGBoostModel reads a model saved in XGBoost's JSON format.
func LoadXGBoostModel(path string) (*TreeEnsemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	model, err := ParseXGBoostJSON(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return model, nil
}

// checkCompatible catches artifacts exported from different pipelines.
func checkCompatible(arts weather.Artifacts) error {
	pre, ok := arts.Preprocessor.(*ColumnTransformer)
	if !ok {
		return nil
	}

	var result *multierror.Error
	if fc, ok := arts.Model.(featureCounter); ok && fc.NumFeature() > 0 && fc.NumFeature() != pre.Width() {
		result = multierror.Append(result, fmt.Errorf(
			"preprocessor produces %d features but model %s expects %d", pre.Width(), arts.Model.Name(), fc.NumFeature()))
	}
	if cc, ok := arts.Model.(classCounter); ok && cc.NumClass() != len(arts.Labels.Classes()) {
		result = multierror.Append(result, fmt.Errorf(
			"model %s has %d classes but label encoder has %d", arts.Model.Name(), cc.NumClass(), len(arts.Labels.Classes())))
	}
	return result.ErrorOrNil()
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
