package pricelist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"

	"github.com/google/uuid"
)

// ErrPartialResult is returned when a result with row errors is synced
// without AllowPartial.
var ErrPartialResult = errors.New("parse result contains row errors")

// SyncOptions controls how a parse result is merged into the stored list.
type SyncOptions struct {
	// DryRun computes the plan without saving it.
	DryRun bool
	// AllowPartial syncs the valid items of a result that has row errors.
	AllowPartial bool
	// RemoveMissing drops stored items absent from the import.
	RemoveMissing bool
	// Name and Currency are applied to the list when set.
	Name     string
	Currency string
}

// SyncPlan describes the changes an import makes to a supplier's list.
type SyncPlan struct {
	SupplierID string
	Created    []PriceListItem
	Updated    []PriceListItem
	Unchanged  []PriceListItem
	Removed    []PriceListItem
	Applied    bool
}

// HasChanges reports whether the plan modifies the stored list.
func (p *SyncPlan) HasChanges() bool {
	return len(p.Created) > 0 || len(p.Updated) > 0 || len(p.Removed) > 0
}

// Summary renders the plan counters on one line.
func (p *SyncPlan) Summary() string {
	return fmt.Sprintf("supplier %s: %d created, %d updated, %d unchanged, %d removed",
		p.SupplierID, len(p.Created), len(p.Updated), len(p.Unchanged), len(p.Removed))
}

// Synchronizer merges parse results into a Repository.
type Synchronizer struct {
	repo   Repository
	logger logging.Logger
	now    func() time.Time
}

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer(repo Repository, logger logging.Logger) *Synchronizer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Synchronizer{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Sync merges result into the list of supplierID. Items are matched by key;
// when an import repeats a key the later row wins. Stored items keep their
// order and new ones are appended in import order.
func (s *Synchronizer) Sync(ctx context.Context, supplierID string, result *models.ParseResult, opts SyncOptions) (*SyncPlan, error) {
	if supplierID == "" {
		return nil, errors.New("supplier id is required")
	}
	if result == nil {
		return nil, errors.New("parse result is nil")
	}
	if result.HasErrors() && !opts.AllowPartial {
		return nil, fmt.Errorf("%w: %d of %d rows failed", ErrPartialResult, len(result.Errors), result.TotalRows)
	}

	existing, err := s.repo.FindBySupplier(ctx, supplierID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	if existing == nil {
		existing = &PriceList{
			ID:         uuid.New(),
			SupplierID: supplierID,
			CreatedAt:  now,
		}
	}

	incoming, order := dedupe(result.Items)
	plan := &SyncPlan{SupplierID: supplierID}
	merged := make([]PriceListItem, 0, len(existing.Items)+len(order))
	seen := make(map[string]bool, len(existing.Items))

	for _, old := range existing.Items {
		seen[old.Key] = true
		next, ok := incoming[old.Key]
		switch {
		case !ok && opts.RemoveMissing:
			plan.Removed = append(plan.Removed, old)
		case !ok:
			merged = append(merged, old)
		case next.Equal(old):
			plan.Unchanged = append(plan.Unchanged, old)
			merged = append(merged, old)
		default:
			plan.Updated = append(plan.Updated, next)
			merged = append(merged, next)
		}
	}
	for _, key := range order {
		if seen[key] {
			continue
		}
		item := incoming[key]
		plan.Created = append(plan.Created, item)
		merged = append(merged, item)
	}

	log := s.logger.WithFields(
		logging.F(logging.FieldSupplier, supplierID),
		logging.F(logging.FieldOperation, "sync"))

	if opts.DryRun {
		log.Info("Dry run, price list not saved", logging.F(logging.FieldStatus, plan.Summary()))
		return plan, nil
	}

	metaChanged := (opts.Name != "" && opts.Name != existing.Name) ||
		(opts.Currency != "" && opts.Currency != existing.Currency)
	if !plan.HasChanges() && !metaChanged && !existing.UpdatedAt.IsZero() {
		log.Info("Price list already up to date")
		return plan, nil
	}

	updated := *existing
	updated.Items = merged
	updated.UpdatedAt = now
	if opts.Name != "" {
		updated.Name = opts.Name
	}
	if opts.Currency != "" {
		updated.Currency = opts.Currency
	}
	if err := s.repo.Save(ctx, &updated); err != nil {
		return nil, err
	}
	plan.Applied = true

	log.Info("Price list synchronized",
		logging.F(logging.FieldStatus, plan.Summary()),
		logging.F(logging.FieldCount, len(merged)))
	return plan, nil
}

func dedupe(items []models.ParsedPriceListItem) (map[string]PriceListItem, []string) {
	byKey := make(map[string]PriceListItem, len(items))
	order := make([]string, 0, len(items))
	for _, parsed := range items {
		item := FromParsed(parsed)
		if item.Key == "" {
			continue
		}
		if _, ok := byKey[item.Key]; !ok {
			order = append(order, item.Key)
		}
		byKey[item.Key] = item
	}
	return byKey, order
}
