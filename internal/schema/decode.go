package schema

import (
	"bytes"
	"fmt"
	"os"

	"fjacquet/pricelist-import/internal/models"
	"fjacquet/pricelist-import/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// Decode reads a YAML or JSON parser configuration and validates it.
// A bare template reference ({template_name: x}) is returned unvalidated;
// resolve it through the template store first.
func Decode(data []byte) (models.ParserConfig, error) {
	var cfg models.ParserConfig
	if len(bytes.TrimSpace(data)) == 0 {
		verr := &parsererror.ConfigValidationError{}
		verr.Add("", "parser configuration is empty")
		return cfg, verr
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return models.ParserConfig{}, err
	}
	if cfg.IsTemplateReference() {
		return cfg, nil
	}
	if err := Validate(cfg); err != nil {
		return models.ParserConfig{}, err
	}
	return cfg, nil
}

// DecodeFile reads and decodes a parser configuration file.
func DecodeFile(path string) (models.ParserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ParserConfig{}, fmt.Errorf("error reading parser configuration: %w", err)
	}
	cfg, err := Decode(data)
	if err != nil {
		return models.ParserConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ValidateRaw checks an untyped configuration object against the schema of the
// declared parser type, e.g. a decoded JSON request body.
func ValidateRaw(parserType string, raw map[string]interface{}) (models.ParserConfig, error) {
	doc := map[string]interface{}{
		"type":   parserType,
		"config": raw,
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return models.ParserConfig{}, fmt.Errorf("error encoding configuration: %w", err)
	}
	return Decode(data)
}

// Encode renders cfg in the document form accepted by Decode.
func Encode(cfg models.ParserConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}
