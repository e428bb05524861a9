// Package services orchestrates the batch pipeline: input reading,
// normalization, validation against the remote snapshot, plan building,
// and sequential execution of the planned remote operations.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vknys/ingot/internal/codec"
	"github.com/vknys/ingot/internal/csvio"
	"github.com/vknys/ingot/internal/filesystem"
	"github.com/vknys/ingot/internal/graph"
	"github.com/vknys/ingot/internal/normalize"
	"github.com/vknys/ingot/internal/plan"
	"github.com/vknys/ingot/internal/taxonomy"
	"github.com/vknys/ingot/pkg/ingot"
)

// BatchService implements the Checker and Runner interfaces.
//
// Thread-Safety: NOT safe for concurrent Check() or Run() calls on the
// same instance. Create separate instances for concurrent batches.
type BatchService struct {
	gatewayFactory GatewayFactory
	approver       ingot.Approver
	logger         ingot.Logger
	fs             filesystem.Provider
}

// NewBatchService creates a new BatchService with all dependencies
// injected.
//
// Panic vs. Error Boundary Rationale:
//   - Panics on nil dependencies: These are programmer errors that should
//     fail loudly at application startup, not during a batch run.
//   - Returns errors for runtime conditions: Configuration validation,
//     connection failures, and input errors are recoverable runtime
//     conditions that should be handled by the caller, not panics.
func NewBatchService(
	gatewayFactory GatewayFactory,
	approver ingot.Approver,
	logger ingot.Logger,
	fs filesystem.Provider,
) *BatchService {
	if gatewayFactory == nil {
		panic("gatewayFactory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if fs == nil {
		panic("fs cannot be nil")
	}
	return &BatchService{
		gatewayFactory: gatewayFactory,
		approver:       approver,
		logger:         logger,
		fs:             fs,
	}
}

// validated carries the intermediate results of the validation pipeline
// into the execution phase.
type validated struct {
	report  *ingot.ValidationReport
	records []*ingot.Record
	graph   *graph.Graph
	gateway Gateway
}

// Check validates the batch described by config without mutating remote
// state. Unmatched terms that would be created are assigned batch-local
// placeholder IDs and reported as warnings.
func (s *BatchService) Check(ctx context.Context, config ingot.BatchConfig) (*ingot.ValidationReport, error) {
	v, err := s.validate(ctx, config, false)
	if v.gateway != nil {
		defer v.gateway.Close()
	}
	if err != nil {
		return v.report, err
	}
	return v.report, nil
}

// Run validates and then executes the batch described by config. Remote
// operations are issued one at a time; the run aborts before any mutation
// if validation fails, and stops at the first failed operation.
func (s *BatchService) Run(ctx context.Context, config ingot.BatchConfig) (*ingot.ValidationReport, error) {
	v, err := s.validate(ctx, config, true)
	if v.gateway != nil {
		defer v.gateway.Close()
	}
	if err != nil {
		return v.report, err
	}

	if !v.report.Pass() {
		return v.report, fmt.Errorf("batch has %d validation errors: %w", v.report.ErrorCount(), ingot.ErrValidationFailed)
	}

	if config.Task == ingot.TaskDelete || config.Task == ingot.TaskDeleteMedia {
		approved, err := s.approver.RequestApproval(ctx, config.Host, len(v.records))
		if err != nil {
			return v.report, fmt.Errorf("approval failed: %w", err)
		}
		if !approved {
			return v.report, fmt.Errorf("delete task was not approved: %w", ingot.ErrApprovalDenied)
		}
	}

	planBuilder := plan.NewBuilder(config, v.gateway.MediaLookup(), s.logger)
	p := planBuilder.Build(ctx, v.graph, v.records, v.report)
	if !v.report.Pass() {
		return v.report, fmt.Errorf("batch has %d validation errors: %w", v.report.ErrorCount(), ingot.ErrValidationFailed)
	}

	if err := s.execute(ctx, config, p, v.gateway); err != nil {
		return v.report, err
	}

	s.logger.Info("Batch completed: %d operations performed", p.Len())
	return v.report, nil
}

// validate runs the shared validation pipeline. When forRun is true,
// unmatched term names are created remotely as they resolve; otherwise
// placeholder IDs stand in for them.
func (s *BatchService) validate(ctx context.Context, config ingot.BatchConfig, forRun bool) (validated, error) {
	v := validated{report: ingot.NewValidationReport()}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return v, err
	}

	s.logger.Verbose("Starting %s batch against %s (run %s)", config.Task, config.Host, v.report.RunID)

	gateway := s.gatewayFactory(config, s.logger)
	v.gateway = gateway
	if err := gateway.Ping(ctx); err != nil {
		return v, err
	}

	if config.Task == ingot.TaskCreateFromFiles {
		return s.validateFromFiles(ctx, config, v)
	}

	schema, err := gateway.FetchFieldSchema(ctx, config.ContentType)
	if err != nil {
		return v, err
	}

	snapshot, err := gateway.LoadTaxonomy(ctx, referencedVocabularies(schema))
	if err != nil {
		return v, err
	}

	var creator ingot.TermCreator
	if forRun && config.AllowTermCreation {
		creator = gateway.TermCreator()
	}
	resolver := taxonomy.NewResolver(snapshot, creator, s.logger)

	registry := codec.NewRegistry(codec.Options{
		Subdelimiter:      config.Subdelimiter,
		Resolver:          resolver,
		AllowTermCreation: config.AllowTermCreation,
	})

	table, err := s.readInput(config, v.report)
	if err != nil {
		return v, err
	}
	if v.report.Fatal {
		return v, nil
	}

	normalizer := normalize.NewNormalizer(registry, schema, config, s.logger)
	v.records = normalizer.NormalizeTable(ctx, table, v.report)
	if v.report.Fatal {
		return v, nil
	}

	s.checkRemoteEntities(ctx, config, v.records, gateway.EntityChecker(), v.report)
	s.checkFiles(ctx, config, v.records, gateway.FileChecker(s.fs, config.InputDir), v.report)

	graphBuilder := graph.NewBuilder(s.fs, config, s.logger)
	v.graph = graphBuilder.Build(v.records, v.report)

	s.logger.Info("Validated %d records: %d errors, %d warnings",
		len(v.records), v.report.ErrorCount(), v.report.WarningCount())
	return v, nil
}

// validateFromFiles synthesizes one record per file in the input
// directory. No CSV metadata is involved; titles default to the file's
// base name.
func (s *BatchService) validateFromFiles(ctx context.Context, config ingot.BatchConfig, v validated) (validated, error) {
	names, err := s.fs.ReadDir(config.InputDir)
	if err != nil {
		return v, fmt.Errorf("input directory %q is not readable: %w", config.InputDir, ingot.ErrInputNotFound)
	}
	if len(names) == 0 {
		v.report.SetFatal("input directory %q contains no files", config.InputDir)
		return v, nil
	}

	sort.Strings(names)
	for i, name := range names {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		v.records = append(v.records, &ingot.Record{
			ID:        stem,
			RowNumber: i + 1,
			Title:     stem,
			File:      name,
			Fields:    map[string]ingot.FieldValue{},
		})
	}

	v.graph = graph.NewBuilder(s.fs, config, s.logger).Build(v.records, v.report)
	s.logger.Info("Prepared %d records from files in %q", len(v.records), config.InputDir)
	return v, nil
}

// readInput opens and reads the batch's CSV file. Tasks that address
// existing remote content are keyed by their remote ID column, so the
// reader's presence and uniqueness checks follow the task.
func (s *BatchService) readInput(config ingot.BatchConfig, rep *ingot.ValidationReport) (*csvio.Table, error) {
	path := config.InputCSV
	if !filepath.IsAbs(path) {
		path = filepath.Join(config.InputDir, config.InputCSV)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("input CSV %q: %w", path, ingot.ErrInputNotFound)
	}
	defer f.Close()

	idColumn := config.IDColumn
	switch config.Task {
	case ingot.TaskUpdate, ingot.TaskDelete, ingot.TaskAddMedia:
		idColumn = ingot.NodeIDColumn
	case ingot.TaskDeleteMedia:
		idColumn = ingot.MediaIDColumn
	}

	table := csvio.Read(f, csvio.Options{
		Delimiter:     config.Delimiter,
		IDColumn:      idColumn,
		IgnoreColumns: config.IgnoreColumns,
		StartRow:      config.StartRow,
		StopRow:       config.StopRow,
	}, rep)
	return table, nil
}

// checkRemoteEntities verifies that the node or media IDs named by the
// batch exist remotely. Only tasks that target existing entities are
// checked.
func (s *BatchService) checkRemoteEntities(ctx context.Context, config ingot.BatchConfig, records []*ingot.Record, checker ingot.EntityChecker, rep *ingot.ValidationReport) {
	for _, rec := range records {
		if rep.RowHasErrors(rec.RowNumber) {
			continue
		}

		switch config.Task {
		case ingot.TaskUpdate, ingot.TaskDelete, ingot.TaskAddMedia:
			exists, err := checker.NodeExists(ctx, rec.NodeID)
			if err != nil {
				rep.AddError(rec.RowNumber, ingot.NodeIDColumn, "could not verify node %d: %v", rec.NodeID, err)
				continue
			}
			if !exists {
				rep.AddError(rec.RowNumber, ingot.NodeIDColumn, "node %d does not exist", rec.NodeID)
			}

		case ingot.TaskDeleteMedia:
			exists, err := checker.MediaExists(ctx, rec.MediaID)
			if err != nil {
				rep.AddError(rec.RowNumber, ingot.MediaIDColumn, "could not verify media %d: %v", rec.MediaID, err)
				continue
			}
			if !exists {
				rep.AddError(rec.RowNumber, ingot.MediaIDColumn, "media %d does not exist", rec.MediaID)
			}
		}
	}
}

// checkFiles verifies the file references of tasks that ingest files.
func (s *BatchService) checkFiles(ctx context.Context, config ingot.BatchConfig, records []*ingot.Record, checker ingot.FileChecker, rep *ingot.ValidationReport) {
	switch config.Task {
	case ingot.TaskCreate, ingot.TaskCreateFromFiles, ingot.TaskAddMedia:
	default:
		return
	}

	for _, rec := range records {
		if rec.File == "" || rep.RowHasErrors(rec.RowNumber) {
			continue
		}
		if err := checker.CheckFile(ctx, rec.File); err != nil {
			rep.AddError(rec.RowNumber, ingot.FileColumn, "%v", err)
		}
	}
}

// execute performs the planned steps in order, feeding created node IDs
// forward into deferred reference slots and recording created nodes in
// the rollback manifest when one is configured.
func (s *BatchService) execute(ctx context.Context, config ingot.BatchConfig, p *ingot.Plan, gateway Gateway) error {
	executor := gateway.Executor(config, s.logger)

	var manifest *csvio.Manifest
	if config.RollbackCSVPath != "" && (config.Task == ingot.TaskCreate || config.Task == ingot.TaskCreateFromFiles) {
		var err error
		manifest, err = csvio.NewManifest(config.RollbackCSVPath)
		if err != nil {
			return err
		}
		defer manifest.Close()
	}

	for step := p.Next(); step != nil; step = p.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		id, err := executor.ExecuteStep(ctx, step)
		if err != nil {
			return fmt.Errorf("step %s failed: %v: %w", step.Kind, err, ingot.ErrExecutionFailed)
		}
		p.MarkExecuted(step)

		switch step.Kind {
		case ingot.StepCreateNode:
			step.NodeID = id
			p.Resolve(step.Record.ID, id)
			if manifest != nil {
				if err := manifest.Append(step.Record.ID, id); err != nil {
					return err
				}
			}
		case ingot.StepCreateMedia:
			step.MediaID = id
		}
	}

	return nil
}

// referencedVocabularies collects the vocabulary IDs referenced by any
// field in the schema, deduplicated and sorted.
func referencedVocabularies(schema ingot.FieldSchema) []string {
	seen := make(map[string]bool)
	var out []string
	for _, def := range schema {
		for _, vocab := range def.Vocabularies {
			if !seen[vocab] {
				seen[vocab] = true
				out = append(out, vocab)
			}
		}
	}
	sort.Strings(out)
	return out
}

var _ ingot.Checker = (*BatchService)(nil)
var _ ingot.Runner = (*BatchService)(nil)
