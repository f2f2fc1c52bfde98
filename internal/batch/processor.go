// Package batch parses many price-list files with one configuration and groups
// them per supplier.
package batch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"

	"golang.org/x/sync/errgroup"
)

// ParseFunc parses one file.
type ParseFunc func(path string) (*models.ParseResult, error)

// FileResult is the outcome of one file of a batch. Err is set when the file
// could not be parsed at all; row errors live in Result.
type FileResult struct {
	Path     string
	Result   *models.ParseResult
	Err      error
	Duration time.Duration
}

// Failed reports whether the file could not be parsed.
func (r FileResult) Failed() bool {
	return r.Err != nil
}

// Processor parses files concurrently.
type Processor struct {
	parse   ParseFunc
	workers int
	logger  logging.Logger
}

// NewProcessor creates a Processor running at most workers parses at once.
func NewProcessor(parse ParseFunc, workers int, logger logging.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Processor{parse: parse, workers: workers, logger: logger}
}

// ParseFiles parses every file and returns the results in input order. A file
// that fails does not stop the others; only cancellation of ctx does.
func (p *Processor) ParseFiles(ctx context.Context, files []string) ([]FileResult, error) {
	results := make([]FileResult, len(files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	for i, file := range files {
		i, file := i, file
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			start := time.Now()
			result, err := p.parse(file)
			results[i] = FileResult{Path: file, Result: result, Err: err, Duration: time.Since(start)}

			log := p.logger.WithFields(
				logging.F(logging.FieldInputFile, filepath.Base(file)),
				logging.F(logging.FieldDuration, results[i].Duration.Milliseconds()))
			if err != nil {
				log.WithError(err).Error("Failed to parse file")
				return nil
			}
			log.Debug("Parsed file",
				logging.F(logging.FieldCount, len(result.Items)),
				logging.F(logging.FieldErrorCount, len(result.Errors)))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	p.logger.Info("Batch parsed",
		logging.F(logging.FieldCount, len(files)),
		logging.F(logging.FieldErrorCount, failed))
	return results, nil
}

// Output file suffixes of a batch run.
const (
	ItemsSuffix  = "_items.csv"
	ReportSuffix = "_errors.csv"
)

// OutputFilename returns the file written for input inside outDir: the input
// base name without extension followed by suffix.
func OutputFilename(input, outDir, suffix string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+suffix)
}
