package models

import (
	"fmt"
	"sort"
	"strings"

	"fjacquet/pricelist-import/internal/parsererror"

	"gopkg.in/yaml.v3"
)

type yamlPair struct {
	key   string
	value *yaml.Node
}

func orderedPairs(node *yaml.Node) []yamlPair {
	pairs := make([]yamlPair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		pairs = append(pairs, yamlPair{key: node.Content[i].Value, value: node.Content[i+1]})
	}
	return pairs
}

func mappingPairs(node *yaml.Node) map[string]*yaml.Node {
	out := make(map[string]*yaml.Node, len(node.Content)/2)
	for _, p := range orderedPairs(node) {
		out[p.key] = p.value
	}
	return out
}

func rejectUnknownKeys(pairs map[string]*yaml.Node, allowed ...string) error {
	var unknown []string
	for key := range pairs {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown key(s) %s", strings.Join(unknown, ", "))
	}
	return nil
}

// decodeErr strips the yaml package prefix from a decode error.
func decodeErr(err error) string {
	msg := strings.TrimPrefix(err.Error(), "yaml: unmarshal errors:\n")
	return strings.TrimSpace(strings.TrimPrefix(msg, "yaml: "))
}

// UnmarshalYAML accepts a single column name or a list of candidates.
func (r *ColumnRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = ColumnRef{node.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*r = ColumnRef(names)
		return nil
	}
	return fmt.Errorf("column reference must be a name or a list of names")
}

// MarshalYAML writes a single candidate as a plain scalar.
func (r ColumnRef) MarshalYAML() (interface{}, error) {
	if len(r) == 1 {
		return r[0], nil
	}
	return []string(r), nil
}

// UnmarshalYAML decodes {type, template_name, config}, choosing the config
// variant from type. Unknown keys are rejected at every level and all problems
// are reported together as a *parsererror.ConfigValidationError.
func (c *ParserConfig) UnmarshalYAML(node *yaml.Node) error {
	verr := &parsererror.ConfigValidationError{}
	if node.Kind != yaml.MappingNode {
		verr.Add("", "parser configuration must be a mapping")
		return verr
	}

	out := ParserConfig{}
	var configNode *yaml.Node
	for _, p := range orderedPairs(node) {
		switch p.key {
		case "type":
			out.Type = ParserType(strings.ToLower(strings.TrimSpace(p.value.Value)))
		case "template_name":
			out.TemplateName = p.value.Value
		case "config":
			configNode = p.value
		default:
			verr.Add(p.key, "unknown key")
		}
	}

	switch {
	case configNode == nil && out.TemplateName == "":
		verr.Add("config", "is required unless template_name is given")
	case configNode == nil:
		// template reference, resolved later
	case out.Type == ParserTypeCSV:
		out.CSV = decodeCsvConfig(configNode, verr)
	case out.Type == ParserTypeFixedWidth:
		out.FixedWidth = decodeFixedWidthConfig(configNode, verr)
	case out.Type == "":
		verr.Add("type", "is required")
	default:
		verr.Add("type", "unknown parser type %q (expected %q or %q)", out.Type, ParserTypeCSV, ParserTypeFixedWidth)
	}

	if err := verr.OrNil(); err != nil {
		return err
	}
	*c = out
	return nil
}

// MarshalYAML writes the {type, template_name, config} document form.
func (c ParserConfig) MarshalYAML() (interface{}, error) {
	doc := struct {
		Type         ParserType  `yaml:"type,omitempty"`
		TemplateName string      `yaml:"template_name,omitempty"`
		Config       interface{} `yaml:"config,omitempty"`
	}{Type: c.Type, TemplateName: c.TemplateName}
	switch {
	case c.CSV != nil:
		doc.Config = c.CSV
	case c.FixedWidth != nil:
		doc.Config = c.FixedWidth
	}
	return doc, nil
}

func decodeCsvConfig(node *yaml.Node, verr *parsererror.ConfigValidationError) *CsvConfig {
	cfg := NewCsvConfig()
	if node.Kind != yaml.MappingNode {
		verr.Add("config", "must be a mapping")
		return cfg
	}
	for _, p := range orderedPairs(node) {
		path := "config." + p.key
		switch p.key {
		case "delimiter":
			decodeScalar(p.value, &cfg.Delimiter, path, verr)
		case "quote_char":
			decodeScalar(p.value, &cfg.QuoteChar, path, verr)
		case "has_header":
			decodeScalar(p.value, &cfg.HasHeader, path, verr)
		case "skip_rows":
			decodeScalar(p.value, &cfg.SkipRows, path, verr)
		case "sheet":
			decodeScalar(p.value, &cfg.Sheet, path, verr)
		case "column_mapping":
			cfg.ColumnMapping = decodeColumnMapping(p.value, path, verr)
		case "transformations":
			cfg.Transformations = decodeTransformations(p.value, path, verr)
		default:
			verr.Add(path, "unknown key")
		}
	}
	return cfg
}

func decodeFixedWidthConfig(node *yaml.Node, verr *parsererror.ConfigValidationError) *FixedWidthConfig {
	cfg := &FixedWidthConfig{}
	if node.Kind != yaml.MappingNode {
		verr.Add("config", "must be a mapping")
		return cfg
	}
	for _, p := range orderedPairs(node) {
		path := "config." + p.key
		switch p.key {
		case "skip_rows":
			decodeScalar(p.value, &cfg.SkipRows, path, verr)
		case "fixed_width_columns":
			cfg.Columns = decodeFixedWidthColumns(p.value, path, verr)
		case "transformations":
			cfg.Transformations = decodeTransformations(p.value, path, verr)
		default:
			verr.Add(path, "unknown key")
		}
	}
	return cfg
}

func decodeScalar(node *yaml.Node, out interface{}, path string, verr *parsererror.ConfigValidationError) {
	if node.Kind != yaml.ScalarNode {
		verr.Add(path, "must be a scalar value")
		return
	}
	if err := node.Decode(out); err != nil {
		verr.Add(path, "%s", decodeErr(err))
	}
}

func decodeColumnMapping(node *yaml.Node, path string, verr *parsererror.ConfigValidationError) map[string]ColumnRef {
	mapping := map[string]ColumnRef{}
	if node.Kind != yaml.MappingNode {
		verr.Add(path, "must be a mapping of field to column name(s)")
		return mapping
	}
	for _, p := range orderedPairs(node) {
		var ref ColumnRef
		if err := p.value.Decode(&ref); err != nil {
			verr.Add(path+"."+p.key, "%s", decodeErr(err))
			continue
		}
		mapping[p.key] = ref
	}
	return mapping
}

func decodeFixedWidthColumns(node *yaml.Node, path string, verr *parsererror.ConfigValidationError) []FixedWidthColumn {
	if node.Kind != yaml.SequenceNode {
		verr.Add(path, "must be a list of {field, start, width}")
		return nil
	}
	columns := make([]FixedWidthColumn, 0, len(node.Content))
	for i, item := range node.Content {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		if item.Kind != yaml.MappingNode {
			verr.Add(itemPath, "must be a mapping")
			continue
		}
		col := FixedWidthColumn{}
		seen := map[string]bool{}
		for _, p := range orderedPairs(item) {
			seen[p.key] = true
			switch p.key {
			case "field":
				decodeScalar(p.value, &col.Field, itemPath+".field", verr)
			case "start":
				decodeScalar(p.value, &col.Start, itemPath+".start", verr)
			case "width":
				decodeScalar(p.value, &col.Width, itemPath+".width", verr)
			default:
				verr.Add(itemPath+"."+p.key, "unknown key")
			}
		}
		for _, required := range []string{"field", "start", "width"} {
			if !seen[required] {
				verr.Add(itemPath+"."+required, "is required")
			}
		}
		columns = append(columns, col)
	}
	return columns
}

func decodeTransformations(node *yaml.Node, path string, verr *parsererror.ConfigValidationError) map[string][]Transformation {
	out := map[string][]Transformation{}
	if node.Kind != yaml.MappingNode {
		verr.Add(path, "must be a mapping of field to transformation list")
		return out
	}
	for _, p := range orderedPairs(node) {
		fieldPath := path + "." + p.key
		items := []*yaml.Node{p.value}
		if p.value.Kind == yaml.SequenceNode {
			items = p.value.Content
		}
		list := make([]Transformation, 0, len(items))
		for i, item := range items {
			var t Transformation
			if err := item.Decode(&t); err != nil {
				verr.Add(fmt.Sprintf("%s[%d]", fieldPath, i), "%s", decodeErr(err))
				continue
			}
			list = append(list, t)
		}
		out[p.key] = list
	}
	return out
}
