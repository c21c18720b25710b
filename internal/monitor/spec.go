package monitor

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Kind selects the trigger semantics.
type Kind string

// Trigger kinds.
const (
	// KindDeadline fires when an arrival on After is not followed by an
	// arrival on Expect within Within seconds.
	KindDeadline Kind = "deadline"
	// KindSilence fires once when Stream delivers nothing for MaxGap seconds.
	KindSilence Kind = "silence"
	// KindUnsolicited fires when Expect delivers without a new arrival on After.
	KindUnsolicited Kind = "unsolicited"
)

// TriggerSpec declares one trigger.
type TriggerSpec struct {
	Name    string  `yaml:"name"`
	Kind    Kind    `yaml:"kind"`
	Message string  `yaml:"message"`
	After   string  `yaml:"after,omitempty"`
	Expect  string  `yaml:"expect,omitempty"`
	Stream  string  `yaml:"stream,omitempty"`
	Within  float64 `yaml:"within,omitempty"`
	MaxGap  float64 `yaml:"max_gap,omitempty"`
}

// Spec is a monitor specification.
type Spec struct {
	// Inputs names the streams; the position is the event slot.
	Inputs   []string      `yaml:"inputs"`
	Triggers []TriggerSpec `yaml:"triggers"`
}

// ErrInvalidSpec is returned for specifications that fail validation.
var ErrInvalidSpec = errors.New("invalid monitor specification")

var (
	//go:embed default.yaml
	defaultSpec []byte

	//go:embed spec.schema.json
	specSchema string

	// compiledSchema is the schema every specification is checked against.
	//nolint:gochecknoglobals // Compiled once, read-only afterwards.
	compiledSchema = jsonschema.MustCompileString("spec.schema.json", specSchema)
)

// DefaultSpec returns the embedded specification of the two-channel system.
func DefaultSpec() (*Spec, error) {
	return ParseSpec(defaultSpec)
}

// LoadSpec reads a specification file; an empty path yields DefaultSpec.
func LoadSpec(path string) (*Spec, error) {
	if path == "" {
		return DefaultSpec()
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read monitor specification: %w", err)
	}

	return ParseSpec(contents)
}

// ParseSpec validates and decodes a YAML specification.
func ParseSpec(contents []byte) (*Spec, error) {
	var document any
	if err := yaml.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}

	var spec Spec
	if err := yaml.Unmarshal(contents, &spec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	if err := spec.validateStreams(); err != nil {
		return nil, err
	}

	return &spec, nil
}

// validateDocument checks the decoded YAML against the embedded schema.
// The document goes through JSON first so the validator only sees JSON types.
func validateDocument(document any) error {
	raw, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	var payload any
	if err = json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	if err = compiledSchema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	return nil
}

// validateStreams checks the cross references the schema cannot express.
func (s *Spec) validateStreams() error {
	inputs := make(map[string]struct{}, len(s.Inputs))
	for _, name := range s.Inputs {
		inputs[name] = struct{}{}
	}

	names := make(map[string]struct{}, len(s.Triggers))

	for _, trigger := range s.Triggers {
		if _, dup := names[trigger.Name]; dup {
			return fmt.Errorf("%w: duplicate trigger %q", ErrInvalidSpec, trigger.Name)
		}

		names[trigger.Name] = struct{}{}

		for _, stream := range []string{trigger.After, trigger.Expect, trigger.Stream} {
			if stream == "" {
				continue
			}

			if _, ok := inputs[stream]; !ok {
				return fmt.Errorf("%w: trigger %q references unknown stream %q", ErrInvalidSpec, trigger.Name, stream)
			}
		}
	}

	return nil
}
