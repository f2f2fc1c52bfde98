package batch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/pricelist"
)

// FileGroup is a set of files belonging to the same supplier.
type FileGroup struct {
	SupplierID string
	Files      []string
}

// Aggregator groups batch files by supplier and merges their results.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(logger logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Aggregator{logger: logger}
}

// SupplierFromFilename derives a supplier id from a file name: the lower-cased
// base name up to the first underscore, so "ACME_2026-03.csv" maps to "acme".
func SupplierFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.Index(base, "_"); i > 0 {
		base = base[:i]
	}
	return strings.ToLower(strings.TrimSpace(base))
}

// GroupFilesBySupplier groups files by SupplierFromFilename. Groups are sorted
// by supplier and keep the input order of their files.
func (a *Aggregator) GroupFilesBySupplier(files []string) []FileGroup {
	bySupplier := make(map[string]*FileGroup)
	for _, file := range files {
		id := SupplierFromFilename(file)
		group, ok := bySupplier[id]
		if !ok {
			group = &FileGroup{SupplierID: id}
			bySupplier[id] = group
		}
		group.Files = append(group.Files, file)
		a.logger.Debug("File mapped to supplier",
			logging.F(logging.FieldInputFile, filepath.Base(file)),
			logging.F(logging.FieldSupplier, id))
	}

	groups := make([]FileGroup, 0, len(bySupplier))
	for _, group := range bySupplier {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].SupplierID < groups[j].SupplierID
	})

	a.logger.Info("Grouped files by supplier",
		logging.F(logging.FieldCount, len(files)),
		logging.F("supplier_groups", len(groups)))
	return groups
}

// Merge combines the results of one supplier's files into a single result.
// Messages are prefixed with the file name. An item key seen in several files
// is reported as a warning; the later file wins when the result is synced.
// Merge fails when any file could not be parsed.
func (a *Aggregator) Merge(results []FileResult) (*models.ParseResult, error) {
	merged := models.NewParseResult()
	var failed []string
	firstSeen := make(map[string]string)
	duplicates := 0

	for _, r := range results {
		name := filepath.Base(r.Path)
		if r.Failed() {
			failed = append(failed, fmt.Sprintf("%s: %v", name, r.Err))
			continue
		}
		merged.TotalRows += r.Result.TotalRows
		merged.ProcessedRows += r.Result.ProcessedRows
		for _, msg := range r.Result.Errors {
			merged.Errors = append(merged.Errors, name+": "+msg)
		}
		for _, msg := range r.Result.Warnings {
			merged.Warnings = append(merged.Warnings, name+": "+msg)
		}
		for _, item := range r.Result.Items {
			key := pricelist.ItemKey(item)
			if prev, ok := firstSeen[key]; ok && prev != name {
				duplicates++
				merged.Warnings = append(merged.Warnings,
					fmt.Sprintf("%s: row %d: %s also present in %s", name, item.Row, key, prev))
			} else if !ok {
				firstSeen[key] = name
			}
			merged.Items = append(merged.Items, item)
		}
	}

	if duplicates > 0 {
		a.logger.Warn("Found items present in several files", logging.F(logging.FieldCount, duplicates))
	}
	if len(failed) > 0 {
		return merged, fmt.Errorf("%d file(s) could not be parsed: %s", len(failed), strings.Join(failed, "; "))
	}
	return merged, nil
}
