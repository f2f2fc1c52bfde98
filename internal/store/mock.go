package store

import (
	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parsererror"
)

// MockTemplateStore is an in-memory TemplateProvider for tests.
type MockTemplateStore struct {
	Templates map[string]models.ParserConfig

	// Error flags for testing error conditions
	ListError error
	SaveError error
}

// NewMockTemplateStore returns a mock holding tpls, keyed by template name.
func NewMockTemplateStore(tpls ...models.ParserConfig) *MockTemplateStore {
	m := &MockTemplateStore{Templates: map[string]models.ParserConfig{}}
	for _, tpl := range tpls {
		m.Templates[tpl.TemplateName] = tpl
	}
	return m
}

// Get returns the named template.
func (m *MockTemplateStore) Get(name string) (models.ParserConfig, error) {
	tpl, ok := m.Templates[name]
	if !ok {
		return models.ParserConfig{}, &parsererror.TemplateNotFoundError{Name: name}
	}
	return tpl, nil
}

// List returns the templates in no particular order.
func (m *MockTemplateStore) List() ([]models.ParserConfig, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]models.ParserConfig, 0, len(m.Templates))
	for _, tpl := range m.Templates {
		out = append(out, tpl)
	}
	return out, nil
}

// Save stores cfg.
func (m *MockTemplateStore) Save(cfg models.ParserConfig) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	if m.Templates == nil {
		m.Templates = map[string]models.ParserConfig{}
	}
	m.Templates[cfg.TemplateName] = cfg
	return nil
}

// Resolve looks up template references.
func (m *MockTemplateStore) Resolve(cfg models.ParserConfig) (models.ParserConfig, error) {
	if !cfg.IsTemplateReference() {
		return cfg, nil
	}
	return m.Get(cfg.TemplateName)
}
