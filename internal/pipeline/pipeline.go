// Package pipeline orchestrates a full analysis run: load the daily
// records from their sources, aggregate them and write the output files.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"sleeplog/internal/aggregate"
	"sleeplog/internal/clock"
	"sleeplog/internal/config"
	"sleeplog/internal/export"
	"sleeplog/internal/logparse"
	"sleeplog/internal/record"
	"sleeplog/internal/sheets"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Steps   []StepResult
	Records []record.DailyRecord
	Written []string
}

// Inputs names the data sources and output destination of a run. At
// least one source must be set.
type Inputs struct {
	LogFile   string
	CSVFile   string
	XLSXFile  string
	SheetsURL string

	OutputDir  string
	LabelFiles bool
}

// Pipeline runs the load / validate / aggregate / export steps.
type Pipeline struct {
	cfg     *config.Config
	schema  *record.Schema
	evening clock.Time
}

// New creates a new pipeline.
func New(cfg *config.Config) (*Pipeline, error) {
	schema, err := cfg.Schema()
	if err != nil {
		return nil, err
	}
	evening, err := cfg.EveningStart()
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, schema: schema, evening: evening}, nil
}

// Run executes the full pipeline.
func (p *Pipeline) Run(ctx context.Context, in Inputs) *Result {
	r := &Result{}

	res, step := p.runLoad(ctx, in)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}
	r.Records = res.Records

	step = p.runValidate(res)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	weekly, step := p.runAggregate(res)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}
	overall := aggregate.Overall(weekly)

	written, step := p.runExport(in, res, weekly, overall)
	r.Steps = append(r.Steps, step)
	r.Written = written
	return r
}

// DryRun loads and validates the sources and reports what a run would
// produce, without writing anything.
func (p *Pipeline) DryRun(ctx context.Context, in Inputs) *Result {
	r := &Result{}

	res, step := p.runLoad(ctx, in)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}
	r.Records = res.Records

	step = p.runValidate(res)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	weekly, step := p.runAggregate(res)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	annotated := 0
	for _, wn := range res.Notes {
		if len(wn.Notes) > 0 {
			annotated++
		}
	}
	r.Steps = append(r.Steps, StepResult{
		Name: "Export",
		Summary: fmt.Sprintf("[dry-run] would write %d weeks of statistics and %d annotation files to %s",
			len(weekly), annotated, in.OutputDir),
	})
	return r
}

func (p *Pipeline) runLoad(ctx context.Context, in Inputs) (*logparse.Result, StepResult) {
	log.Println("Step 1/4: Loading records...")
	merged := &logparse.Result{}
	sources := 0

	opts := logparse.Options{
		Year:         p.cfg.Log.DefaultYear,
		EveningStart: p.evening,
	}
	if in.LogFile != "" {
		res, err := logparse.ParseFile(in.LogFile, p.schema, opts)
		if err != nil {
			return nil, StepResult{Name: "Load", Err: fmt.Errorf("parsing %s: %w", in.LogFile, err)}
		}
		merged.Records = append(merged.Records, res.Records...)
		merged.Notes = append(merged.Notes, res.Notes...)
		sources++
	}

	sheetOpts := sheets.Options{EveningStart: p.evening}
	if in.SheetsURL != "" {
		path, err := p.downloadSheet(ctx, in)
		if err != nil {
			return nil, StepResult{Name: "Load", Err: err}
		}
		in.CSVFile = path
	}
	if in.CSVFile != "" {
		recs, err := sheets.ParseCSV(in.CSVFile, p.schema, sheetOpts)
		if err != nil {
			return nil, StepResult{Name: "Load", Err: fmt.Errorf("parsing %s: %w", in.CSVFile, err)}
		}
		merged.Records = append(merged.Records, recs...)
		sources++
	}
	if in.XLSXFile != "" {
		recs, err := sheets.ParseXLSX(in.XLSXFile, p.schema, sheetOpts)
		if err != nil {
			return nil, StepResult{Name: "Load", Err: fmt.Errorf("parsing %s: %w", in.XLSXFile, err)}
		}
		merged.Records = append(merged.Records, recs...)
		sources++
	}

	if sources == 0 {
		return nil, StepResult{Name: "Load", Err: fmt.Errorf("no input sources given")}
	}
	sort.Slice(merged.Records, func(i, j int) bool {
		return merged.Records[i].Date.Before(merged.Records[j].Date)
	})
	return merged, StepResult{
		Name:    "Load",
		Summary: fmt.Sprintf("Loaded %d records from %d source(s)", len(merged.Records), sources),
	}
}

func (p *Pipeline) downloadSheet(ctx context.Context, in Inputs) (string, error) {
	dir := in.OutputDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, "sheet.csv")
	if err := sheets.Download(ctx, in.SheetsURL, path); err != nil {
		return "", fmt.Errorf("downloading sheet: %w", err)
	}
	return path, nil
}

// runValidate re-checks dates across sources. Each parser already
// rejects duplicates within its own file; merging can introduce new
// ones.
func (p *Pipeline) runValidate(res *logparse.Result) StepResult {
	log.Println("Step 2/4: Validating records...")
	if err := record.CheckDuplicateDates(res.Records); err != nil {
		return StepResult{Name: "Validate", Err: err}
	}
	return StepResult{
		Name:    "Validate",
		Summary: fmt.Sprintf("%d records, no duplicate dates", len(res.Records)),
	}
}

func (p *Pipeline) runAggregate(res *logparse.Result) (map[string]aggregate.Row, StepResult) {
	log.Println("Step 3/4: Aggregating weeks...")
	weekly := aggregate.Weekly(res.Records, p.schema)
	nonEmpty := 0
	for _, row := range weekly {
		if len(row) > 0 {
			nonEmpty++
		}
	}
	return weekly, StepResult{
		Name:    "Aggregate",
		Summary: fmt.Sprintf("Aggregated %d week(s), %d with data", len(weekly), nonEmpty),
	}
}

func (p *Pipeline) runExport(in Inputs, res *logparse.Result, weekly map[string]aggregate.Row, overall aggregate.Row) ([]string, StepResult) {
	log.Println("Step 4/4: Writing output files...")
	opts := export.Options{Dir: in.OutputDir, LabelFiles: in.LabelFiles}
	written, err := export.WriteAll(opts, res, p.schema, weekly, overall)
	if err != nil {
		return written, StepResult{Name: "Export", Err: err}
	}
	return written, StepResult{
		Name:    "Export",
		Summary: fmt.Sprintf("Wrote %d file(s) to %s", len(written), in.OutputDir),
	}
}
