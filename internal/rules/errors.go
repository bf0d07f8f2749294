package rules

import "fmt"

// ConfigError codes. Configuration errors are fatal at startup: the run
// fails before any row processing.
const (
	ErrCodeLoad          = "CFG_LOAD"
	ErrCodeSchema        = "CFG_SCHEMA"
	ErrCodeLegacyCode    = "CFG_LEGACY_CODE"
	ErrCodeOverride      = "CFG_OVERRIDE"
	ErrCodeUnknownWinner = "CFG_UNKNOWN_WINNER"
	ErrCodeDuplicateRule = "CFG_DUPLICATE_RULE"
)

// ConfigError represents a malformed rule table.
type ConfigError struct {
	Code    string // error category
	Field   string // offending table/field, e.g. "legacy_codes.ROM"
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newConfigError(code, field, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}
