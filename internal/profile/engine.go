package profile

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/arjunks/datahound/pkg/models"
)

// Enricher is the optional model-enrichment seam. An implementation takes
// the deterministic ground truth plus the raw inputs and returns a
// reconciled result, or an error when the collaborator exchange failed.
// Errors are absorbed by the engine: the deterministic result stands in.
type Enricher interface {
	Enrich(ctx context.Context, req EnrichRequest) (*models.ProfileResult, error)
}

// EnrichRequest carries everything the enrichment layer needs. All fields
// are read-only; the deterministic result is the authoritative baseline the
// reply is reconciled against.
type EnrichRequest struct {
	Rows          []models.Row
	Columns       []string
	Config        models.ProfileConfig
	Fields        models.FieldIdentification
	Thresholds    models.Thresholds
	Deterministic models.ProfileResult
}

// Options tune engine behavior that is not part of a single request.
type Options struct {
	// DefaultMethod is the threshold method used when a request does not
	// select one. Empty falls back to IQR.
	DefaultMethod string
	// Locale is the BCP 47 tag used for narrative number formatting.
	// Defaults to "en".
	Locale string
	// MaxParallel bounds how many group partitions run concurrently.
	// Defaults to GOMAXPROCS. Correctness does not depend on parallelism;
	// partitions share no state.
	MaxParallel int
}

// Engine runs the full profiling pipeline. All entities it produces are
// created fresh per call and immutable once returned; there is no
// cross-call caching.
type Engine struct {
	enricher      Enricher
	logger        *slog.Logger
	printer       *message.Printer
	defaultMethod string
	maxParallel   int
}

// NewEngine creates an Engine. A nil enricher disables model enrichment
// entirely: every result is produced by the deterministic pipeline.
func NewEngine(enricher Enricher, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	tag := language.English
	if opts.Locale != "" {
		if parsed, err := language.Parse(opts.Locale); err == nil {
			tag = parsed
		}
	}
	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		enricher:      enricher,
		logger:        logger,
		printer:       message.NewPrinter(tag),
		defaultMethod: opts.DefaultMethod,
		maxParallel:   maxParallel,
	}
}

// Analyze profiles a dataset. Without a grouping field it runs the pipeline
// once over all rows under the implicit "all" partition; with one it runs
// the full pipeline independently per distinct grouping value, recomputing
// field identification and thresholds per partition. Rows whose grouping
// cell is missing land in the "null" sentinel group.
func (e *Engine) Analyze(ctx context.Context, rows []models.Row, columns []string, cfg models.ProfileConfig, method models.MethodConfig) (*models.Report, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	if err := validateConfig(columns, cfg); err != nil {
		return nil, err
	}
	if method.Method == "" {
		method.Method = e.defaultMethod
	}
	method = method.Normalize()

	if cfg.GroupByField == "" {
		result, err := e.profilePartition(ctx, models.AllGroupKey, rows, columns, cfg, method)
		if err != nil {
			return nil, err
		}
		return &models.Report{
			Groups: map[string]*models.GroupResult{
				models.AllGroupKey: {Key: models.AllGroupKey, Profile: *result},
			},
			AllCategories: result.Categories,
			Rules:         result.Rules,
			Params:        result.Params,
			RowCount:      len(rows),
		}, nil
	}

	partitions := partitionRows(rows, cfg.GroupByField)
	keys := make([]string, 0, len(partitions))
	for k := range partitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	report := &models.Report{
		GroupField: cfg.GroupByField,
		Groups:     make(map[string]*models.GroupResult, len(keys)),
		RowCount:   len(rows),
	}

	results := make([]*models.ProfileResult, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)
	for i, key := range keys {
		part := partitions[key]
		if len(part) == 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("group %q has no rows; skipped", key))
			e.logger.Warn("empty group partition skipped", "group", key)
			continue
		}
		g.Go(func() error {
			result, err := e.profilePartition(gctx, key, part, columns, cfg, method)
			if err != nil {
				return fmt.Errorf("group %q: %w", key, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, key := range keys {
		result := results[i]
		if result == nil {
			continue
		}
		report.Groups[key] = &models.GroupResult{Key: key, Profile: *result}
		report.AllCategories = append(report.AllCategories, result.Categories...)
		// Rules/params are shared from the first processed partition; all
		// partitions run under the same method configuration.
		if len(report.Rules) == 0 {
			report.Rules = result.Rules
			report.Params = result.Params
		}
	}
	return report, nil
}

// profilePartition runs the single-partition pipeline: identify fields,
// compute thresholds, classify, then hand the ground truth to the enricher
// when one is configured. Enrichment failures never propagate: the
// deterministic result is returned instead.
func (e *Engine) profilePartition(ctx context.Context, key string, rows []models.Row, columns []string, cfg models.ProfileConfig, method models.MethodConfig) (*models.ProfileResult, error) {
	ident := Identify(rows, columns, cfg)
	if ident.PrimaryValueField == "" {
		return nil, fmt.Errorf("no value field identified: %w", ErrFieldNotFound)
	}
	if ident.PrimaryCountField == "" {
		return nil, fmt.Errorf("no count field identified: %w", ErrFieldNotFound)
	}

	th := ComputeThresholds(rows, ident.PrimaryValueField, ident.PrimaryCountField, method)
	if th.Value == nil {
		return nil, fmt.Errorf("%s thresholds for value field %q: %w",
			th.Method, ident.PrimaryValueField, ErrThresholdUnavailable)
	}
	if th.Count == nil {
		return nil, fmt.Errorf("%s thresholds for count field %q: %w",
			th.Method, ident.PrimaryCountField, ErrThresholdUnavailable)
	}

	aux := cfg.AuxFields()
	categories := Classify(rows, ident, th, aux)
	deterministic := models.ProfileResult{
		Categories: categories,
		Analysis:   Describe(e.printer, ident, th, categories, len(rows)),
		Indicators: FlattenIndicators(key, categories, ident, aux),
		Rules:      BuildRules(ident, th),
		Params:     BuildParams(ident, th),
		Fields:     ident,
		Thresholds: th,
		Source:     models.SourceDeterministic,
		RowCount:   len(rows),
	}

	if e.enricher == nil {
		return &deterministic, nil
	}

	enriched, err := e.enricher.Enrich(ctx, EnrichRequest{
		Rows:          rows,
		Columns:       columns,
		Config:        cfg,
		Fields:        ident,
		Thresholds:    th,
		Deterministic: deterministic,
	})
	if err != nil {
		e.logger.Warn("model enrichment failed; using deterministic result",
			"group", key, "error", err)
		return &deterministic, nil
	}
	return enriched, nil
}

func validateConfig(columns []string, cfg models.ProfileConfig) error {
	if cfg.GroupByField != "" && !contains(columns, cfg.GroupByField) {
		return fmt.Errorf("group-by field %q: %w", cfg.GroupByField, ErrFieldNotFound)
	}
	if cfg.SubjectField != "" && !contains(columns, cfg.SubjectField) {
		return fmt.Errorf("subject field %q: %w", cfg.SubjectField, ErrFieldNotFound)
	}
	for _, f := range cfg.AnalysisFields {
		if f.FieldName != "" && !contains(columns, f.FieldName) {
			return fmt.Errorf("analysis field %q: %w", f.FieldName, ErrFieldNotFound)
		}
	}
	return nil
}

// partitionRows splits rows by the distinct values of the grouping column.
// Missing cells map to the "null" sentinel so those rows are never dropped.
func partitionRows(rows []models.Row, field string) map[string][]models.Row {
	partitions := make(map[string][]models.Row)
	for _, row := range rows {
		key := models.NullGroupKey
		if cell, ok := row[field]; ok && cell.Kind != models.KindMissing {
			key = cell.Text()
		}
		partitions[key] = append(partitions[key], row)
	}
	return partitions
}
