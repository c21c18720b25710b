package scenario

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFeature is returned for feature files that fail validation.
var ErrInvalidFeature = errors.New("invalid feature")

// Feature is one YAML feature file.
type Feature struct {
	Name      string         `yaml:"name"      validate:"required"`
	Scenarios []ScenarioSpec `yaml:"scenarios" validate:"required,min=1,dive"`
}

// ScenarioSpec is a scenario written as sentences.
type ScenarioSpec struct {
	Name  string   `yaml:"name"  validate:"required"`
	Given []string `yaml:"given" validate:"dive,required"`
	When  []string `yaml:"when"  validate:"dive,required"`
	Then  []string `yaml:"then"  validate:"required,min=1,dive,required"`
}

// Scenario is a compiled scenario ready to run.
type Scenario struct {
	Name    string
	Moulds  []*Mould
	Oracles []Oracle
}

//go:embed features/*.yaml
var defaultFeatures embed.FS

//nolint:gochecknoglobals // Validators cache struct metadata and are safe for concurrent use.
var featureValidate = validator.New()

// DefaultFeatures returns the scenarios shipped with the binary.
func DefaultFeatures() ([]*Scenario, error) {
	return loadFS(defaultFeatures, "features")
}

// LoadFeatures reads feature files. Each pattern is a file, a directory
// (all of its *.yaml files) or a glob. No patterns yields the default
// features.
func LoadFeatures(patterns []string) ([]*Scenario, error) {
	if len(patterns) == 0 {
		return DefaultFeatures()
	}

	var scenarios []*Scenario

	for _, pattern := range patterns {
		pattern = filepath.Clean(pattern)

		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			loaded, err := loadFS(os.DirFS(pattern), ".")
			if err != nil {
				return nil, err
			}

			scenarios = append(scenarios, loaded...)

			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no feature file matches %q", ErrInvalidFeature, pattern)
		}

		sort.Strings(matches)

		for _, file := range matches {
			loaded, err := loadFS(os.DirFS(filepath.Dir(file)), filepath.Base(file))
			if err != nil {
				return nil, err
			}

			scenarios = append(scenarios, loaded...)
		}
	}

	return scenarios, nil
}

// loadFS compiles the features matching pattern inside fsys. A directory
// pattern stands for all of its *.yaml files.
func loadFS(fsys fs.FS, pattern string) ([]*Scenario, error) {
	if info, err := fs.Stat(fsys, pattern); err == nil && info.IsDir() {
		pattern = path.Join(pattern, "*.yaml")
	}

	paths, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}

	sort.Strings(paths)

	var scenarios []*Scenario

	for _, name := range paths {
		contents, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read feature %s: %w", name, err)
		}

		feature, err := ParseFeature(contents)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", name, err)
		}

		compiled, err := feature.Compile()
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", name, err)
		}

		scenarios = append(scenarios, compiled...)
	}

	return scenarios, nil
}

// ParseFeature decodes and validates one feature document.
func ParseFeature(contents []byte) (*Feature, error) {
	var feature Feature
	if err := yaml.Unmarshal(contents, &feature); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFeature, err)
	}

	if err := featureValidate.Struct(&feature); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFeature, err)
	}

	return &feature, nil
}

// Compile parses every sentence of the feature.
func (f *Feature) Compile() ([]*Scenario, error) {
	scenarios := make([]*Scenario, 0, len(f.Scenarios))

	for _, spec := range f.Scenarios {
		sc, err := spec.Compile()
		if err != nil {
			return nil, err
		}

		sc.Name = f.Name + ": " + sc.Name
		scenarios = append(scenarios, sc)
	}

	return scenarios, nil
}

// Compile parses the sentences in given, when, then order. Then-sentences
// must yield oracles and the others moulds.
func (s *ScenarioSpec) Compile() (*Scenario, error) {
	sc := &Scenario{Name: s.Name}

	for _, sentence := range append(append([]string(nil), s.Given...), s.When...) {
		step, err := ParseStep(sentence)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}

		if step.Oracle != nil {
			return nil, fmt.Errorf("%w: scenario %q: %q is an outcome", ErrInvalidFeature, s.Name, sentence)
		}

		if step.Mould != nil {
			sc.Moulds = append(sc.Moulds, step.Mould)
		}
	}

	for _, sentence := range s.Then {
		step, err := ParseStep(sentence)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}

		if step.Oracle == nil {
			return nil, fmt.Errorf("%w: scenario %q: %q is not an outcome", ErrInvalidFeature, s.Name, sentence)
		}

		sc.Oracles = append(sc.Oracles, *step.Oracle)
	}

	return sc, nil
}
