package common

import (
	"fmt"
	"slices"
	"strings"

	"hirescope/internal/errors"
	"hirescope/internal/formatters"
)

var formatAliases = map[string]string{
	"md":  "markdown",
	"txt": "text",
}

// NormalizeFormat lower-cases format and resolves short aliases.
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if alias, ok := formatAliases[f]; ok {
		return alias
	}
	return f
}

// ValidateOutputFormat checks that format has a registered formatter and,
// when supportedFormats is non-empty, that it is one of them.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	allowed := supportedFormats
	if len(allowed) == 0 {
		allowed = formatters.GlobalRegistry.GetSupportedFormats()
		slices.Sort(allowed)
	}

	if slices.Contains(allowed, format) && slices.Contains(formatters.GlobalRegistry.GetSupportedFormats(), format) {
		return nil
	}

	return errors.NewValidationError(errors.CodeInvalidFormat,
		fmt.Sprintf("unsupported output format %q (supported: %s)", format, strings.Join(allowed, ", ")), nil)
}
