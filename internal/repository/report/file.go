package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/taws-partitions/internal/config"
	"github.com/oshokin/taws-partitions/internal/scenario"
)

// Repository defines persistence operations for scenario reports.
type Repository interface {
	Load(ctx context.Context) ([]scenario.Report, error)
	Save(ctx context.Context, reports []scenario.Report) error
}

// FileRepository persists reports to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON report file.
	path string
	// mu protects concurrent access to the report file.
	mu sync.Mutex
}

// ErrNotFound is returned when the report file does not exist yet.
var ErrNotFound = errors.New("report not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the reports from disk.
func (r *FileRepository) Load(_ context.Context) ([]scenario.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read report file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}

	return fromStruct(&document), nil
}

// Save writes the reports to disk, replacing the previous run.
func (r *FileRepository) Save(_ context.Context, reports []scenario.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := toStruct(reports)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}

// toStruct converts reports into a JSON document.
func toStruct(reports []scenario.Report) (*structpb.Struct, error) {
	var (
		entries = make([]any, 0, len(reports))
		passed  int
	)

	for _, rep := range reports {
		if rep.Passed {
			passed++
		}

		entry := map[string]any{
			"scenario": rep.Scenario,
			"moulds":   toAnySlice(rep.Moulds),
			"oracles":  toAnySlice(rep.Oracles),
			"frames":   rep.Frames,
			"alerted":  rep.Alerted,
			"passed":   rep.Passed,
		}

		if rep.Alerted {
			entry["first_alert_seconds"] = rep.FirstAlert.Seconds()
		}

		if rep.Failure != "" {
			entry["failure"] = rep.Failure
		}

		entries = append(entries, entry)
	}

	return structpb.NewStruct(map[string]any{
		"passed":    passed,
		"failed":    len(reports) - passed,
		"scenarios": entries,
	})
}

// fromStruct converts a JSON document back into reports.
func fromStruct(document *structpb.Struct) []scenario.Report {
	list := document.GetFields()["scenarios"].GetListValue().GetValues()
	reports := make([]scenario.Report, 0, len(list))

	for _, value := range list {
		fields := value.GetStructValue().GetFields()

		rep := scenario.Report{
			Scenario: fields["scenario"].GetStringValue(),
			Moulds:   toStrings(fields["moulds"]),
			Oracles:  toStrings(fields["oracles"]),
			Frames:   int(fields["frames"].GetNumberValue()),
			Alerted:  fields["alerted"].GetBoolValue(),
			Passed:   fields["passed"].GetBoolValue(),
			Failure:  fields["failure"].GetStringValue(),
		}

		if rep.Alerted {
			rep.FirstAlert = time.Duration(fields["first_alert_seconds"].GetNumberValue() * float64(time.Second))
		}

		reports = append(reports, rep)
	}

	return reports
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

func toStrings(value *structpb.Value) []string {
	list := value.GetListValue().GetValues()
	if len(list) == 0 {
		return nil
	}

	out := make([]string, len(list))
	for i, v := range list {
		out[i] = v.GetStringValue()
	}

	return out
}
