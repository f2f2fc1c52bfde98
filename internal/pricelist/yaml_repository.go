package pricelist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"fjacquet/pricelist-import/internal/logging"

	"gopkg.in/yaml.v3"
)

// DefaultPriceListsFile is used when no store file is configured.
const DefaultPriceListsFile = "pricelists.yaml"

type priceListsFile struct {
	PriceLists []PriceList `yaml:"price_lists"`
}

// YAMLRepository keeps every price list in one YAML file. It suits single
// operator setups; concurrent processes writing the same file are not supported.
type YAMLRepository struct {
	file   string
	logger logging.Logger
	mu     sync.Mutex
}

// NewYAMLRepository creates a repository backed by file.
func NewYAMLRepository(file string, logger logging.Logger) *YAMLRepository {
	if file == "" {
		file = DefaultPriceListsFile
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &YAMLRepository{file: file, logger: logger}
}

func (r *YAMLRepository) load() (priceListsFile, error) {
	var doc priceListsFile
	data, err := os.ReadFile(r.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("error reading price list store: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("error parsing price list store %s: %w", r.file, err)
	}
	return doc, nil
}

// FindBySupplier implements Repository.
func (r *YAMLRepository) FindBySupplier(ctx context.Context, supplierID string) (*PriceList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.PriceLists {
		if doc.PriceLists[i].SupplierID == supplierID {
			list := doc.PriceLists[i]
			return &list, nil
		}
	}
	return nil, ErrNotFound
}

// Save implements Repository; it replaces the supplier's previous list.
func (r *YAMLRepository) Save(ctx context.Context, list *PriceList) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range doc.PriceLists {
		if doc.PriceLists[i].SupplierID == list.SupplierID {
			doc.PriceLists[i] = *list
			replaced = true
			break
		}
	}
	if !replaced {
		doc.PriceLists = append(doc.PriceLists, *list)
	}
	sort.Slice(doc.PriceLists, func(i, j int) bool {
		return doc.PriceLists[i].SupplierID < doc.PriceLists[j].SupplierID
	})

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling price lists: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.file), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(r.file, data, 0644); err != nil {
		return fmt.Errorf("error writing price list store: %w", err)
	}

	r.logger.Debug("Saved price list",
		logging.F(logging.FieldSupplier, list.SupplierID),
		logging.F(logging.FieldCount, len(list.Items)),
		logging.F(logging.FieldFile, r.file))
	return nil
}

// List implements Repository.
func (r *YAMLRepository) List(ctx context.Context) ([]PriceList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	if doc.PriceLists == nil {
		return []PriceList{}, nil
	}
	return doc.PriceLists, nil
}
