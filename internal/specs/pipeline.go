package specs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Result is the outcome for one record.
type Result struct {
	ID       string                 `json:"id"`
	Record   Record                 `json:"-"`
	Errors   []ValidationError      `json:"errors"`
	Warnings []NormalizationWarning `json:"warnings,omitempty"`
}

// Valid reports whether the normalized record conforms to the schema.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Pipeline normalizes then validates every record of a dataset.
type Pipeline struct {
	Normalizer *Normalizer
	Validator  *Validator
	Logger     *slog.Logger
}

func NewPipeline(s *Schema, rules Rules, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Normalizer: NewNormalizer(rules),
		Validator:  NewValidator(s),
		Logger:     logger,
	}
}

// Process runs each record independently; a bad record never stops the rest.
// The returned dataset holds the normalized records in input order and shape.
func (p *Pipeline) Process(ctx context.Context, ds *Dataset) (*Dataset, []Result, error) {
	out := &Dataset{Keyed: ds.Keyed, Entries: make([]Entry, 0, len(ds.Entries))}
	results := make([]Result, 0, len(ds.Entries))
	for _, e := range ds.Entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		norm, warns := p.Normalizer.Normalize(e.Record)
		for _, w := range warns {
			p.Logger.Warn("normalization", "id", e.ID, "field", w.Field, "value", w.Value, "msg", w.Message)
		}
		errs := p.Validator.Validate(norm)
		if len(errs) > 0 {
			p.Logger.Info("record invalid", "id", e.ID, "errors", len(errs))
		}
		out.Entries = append(out.Entries, Entry{ID: e.ID, Record: norm})
		results = append(results, Result{ID: e.ID, Record: norm, Errors: errs, Warnings: warns})
	}
	return out, results, nil
}

// Config drives a file-to-file run.
type Config struct {
	InputPath  string
	OutputPath string
	ReportPath string
	// SchemaPath replaces the embedded schema when set.
	SchemaPath string
	Rules      *Rules
	Logger     *slog.Logger
}

// RunResult summarizes a run.
type RunResult struct {
	RunID      string   `json:"run_id"`
	Records    int      `json:"records"`
	Valid      int      `json:"valid"`
	Invalid    int      `json:"invalid"`
	Warnings   int      `json:"warnings"`
	Output     string   `json:"output,omitempty"`
	Report     string   `json:"report,omitempty"`
	InvalidIDs []string `json:"invalid_ids,omitempty"`
	Results    []Result `json:"-"`
}

// Run loads the schema before touching any data. A *ConfigurationError aborts
// the run and leaves no output or report behind.
func Run(ctx context.Context, cfg Config) (RunResult, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	var (
		schema *Schema
		err    error
	)
	if cfg.SchemaPath != "" {
		schema, err = LoadSchema(cfg.SchemaPath)
	} else {
		schema, err = DefaultSchema()
	}
	if err != nil {
		return RunResult{RunID: runID}, err
	}

	ds, err := LoadDataset(cfg.InputPath)
	if err != nil {
		return RunResult{RunID: runID}, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset loaded", "path", cfg.InputPath, "records", len(ds.Entries))

	rules := DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}
	normalized, results, err := NewPipeline(schema, rules, logger).Process(ctx, ds)
	if err != nil {
		return RunResult{RunID: runID}, err
	}

	res := RunResult{RunID: runID, Records: len(results), Results: results}
	for _, r := range results {
		res.Warnings += len(r.Warnings)
		if r.Valid() {
			res.Valid++
			continue
		}
		res.Invalid++
		res.InvalidIDs = append(res.InvalidIDs, r.ID)
	}

	if cfg.OutputPath != "" {
		if err := WriteJSONFile(cfg.OutputPath, normalized); err != nil {
			return res, fmt.Errorf("write output: %w", err)
		}
		res.Output = cfg.OutputPath
		logger.Info("normalized dataset written", "path", cfg.OutputPath)
	}
	if cfg.ReportPath != "" {
		var buf bytes.Buffer
		if err := WriteReport(&buf, results); err != nil {
			return res, fmt.Errorf("render report: %w", err)
		}
		if err := WriteFileAtomic(cfg.ReportPath, buf.Bytes()); err != nil {
			return res, fmt.Errorf("write report: %w", err)
		}
		res.Report = cfg.ReportPath
		logger.Info("report written", "path", cfg.ReportPath)
	}

	logger.Info("run complete", "records", res.Records, "valid", res.Valid, "invalid", res.Invalid)
	return res, nil
}
