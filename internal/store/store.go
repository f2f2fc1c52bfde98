// Package store provides the named parser templates operators reuse across
// imports from the same supplier.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parsererror"
	"fjacquet/pricelist-import/internal/schema"

	"gopkg.in/yaml.v3"
)

// DefaultTemplatesFile is used when no templates file is configured.
const DefaultTemplatesFile = "templates.yaml"

// TemplateProvider is what commands need from a template store.
type TemplateProvider interface {
	Get(name string) (models.ParserConfig, error)
	List() ([]models.ParserConfig, error)
	Save(cfg models.ParserConfig) error
	Resolve(cfg models.ParserConfig) (models.ParserConfig, error)
}

type templatesFile struct {
	Templates []models.ParserConfig `yaml:"templates"`
}

// TemplateStore manages parser templates kept in one YAML file:
//
//	templates:
//	  - template_name: acme
//	    type: csv
//	    config: {...}
type TemplateStore struct {
	TemplatesFile string

	logger    logging.Logger
	mu        sync.RWMutex
	loaded    bool
	path      string
	templates map[string]models.ParserConfig
}

// NewTemplateStore creates a store backed by file (DefaultTemplatesFile when empty).
func NewTemplateStore(file string, logger logging.Logger) *TemplateStore {
	if file == "" {
		file = DefaultTemplatesFile
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &TemplateStore{
		TemplatesFile: file,
		logger:        logger,
		templates:     map[string]models.ParserConfig{},
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *TemplateStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("templates", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "pricelist-import", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// Load reads the templates file. A missing file is an empty store; an invalid
// template fails the whole load.
func (s *TemplateStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *TemplateStore) loadLocked() error {
	s.loaded = true
	s.templates = map[string]models.ParserConfig{}

	path, err := s.FindConfigFile(s.TemplatesFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Templates file not found", logging.F(logging.FieldFile, s.TemplatesFile))
			return nil
		}
		return fmt.Errorf("error resolving templates file: %w", err)
	}
	s.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading templates file: %w", err)
	}

	var doc templatesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("error parsing templates file %s: %w", path, err)
	}

	for i, tpl := range doc.Templates {
		if tpl.TemplateName == "" {
			return fmt.Errorf("templates[%d]: template_name is required", i)
		}
		if err := schema.Validate(tpl); err != nil {
			return fmt.Errorf("templates[%d] (%s): %w", i, tpl.TemplateName, err)
		}
		if _, dup := s.templates[tpl.TemplateName]; dup {
			return fmt.Errorf("templates[%d]: duplicate template %q", i, tpl.TemplateName)
		}
		s.templates[tpl.TemplateName] = tpl
	}

	s.logger.Debug("Loaded parser templates",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(s.templates)))
	return nil
}

func (s *TemplateStore) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Load()
}

// Get returns the named template.
func (s *TemplateStore) Get(name string) (models.ParserConfig, error) {
	if err := s.ensureLoaded(); err != nil {
		return models.ParserConfig{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[name]
	if !ok {
		return models.ParserConfig{}, &parsererror.TemplateNotFoundError{Name: name}
	}
	return tpl, nil
}

// List returns every template sorted by name.
func (s *TemplateStore) List() ([]models.ParserConfig, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ParserConfig, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateName < out[j].TemplateName })
	return out, nil
}

// Save validates cfg and stores it under cfg.TemplateName, replacing any
// template of that name, then rewrites the file.
func (s *TemplateStore) Save(cfg models.ParserConfig) error {
	if cfg.TemplateName == "" {
		return fmt.Errorf("cannot save a template without template_name")
	}
	if err := schema.Validate(cfg); err != nil {
		return err
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[cfg.TemplateName] = cfg

	path := s.path
	if path == "" {
		path = s.TemplatesFile
		s.path = path
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	doc := templatesFile{Templates: make([]models.ParserConfig, 0, len(names))}
	for _, name := range names {
		doc.Templates = append(doc.Templates, s.templates[name])
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling templates: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing templates: %w", err)
	}

	s.logger.Debug("Saved parser template",
		logging.F(logging.FieldTemplate, cfg.TemplateName),
		logging.F(logging.FieldFile, path))
	return nil
}

// Resolve replaces a bare {template_name: X} reference with the stored
// template; complete configurations are returned as given.
func (s *TemplateStore) Resolve(cfg models.ParserConfig) (models.ParserConfig, error) {
	if !cfg.IsTemplateReference() {
		return cfg, nil
	}
	return s.Get(cfg.TemplateName)
}
