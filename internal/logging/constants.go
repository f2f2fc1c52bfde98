package logging

// Standardized field names for structured logging.
// Keep these stable: operators filter import logs on them.
const (
	FieldFile       = "file_path"
	FieldParser     = "parser"
	FieldTemplate   = "template"
	FieldSupplier   = "supplier_id"
	FieldRow        = "row"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldTotalRows  = "total_rows"
	FieldErrorCount = "error_count"
	FieldWarnings   = "warning_count"
	FieldDelimiter  = "delimiter"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
