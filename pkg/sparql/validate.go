package sparql

import (
	"log/slog"
	"net/url"
	"strings"
	"unicode"
)

// unsafeURIChars are characters that could break out of a quoted <...> URI
// position in a generated query.
const unsafeURIChars = "<>\"'{}|\\^`[]"

// ValidateCollectionURI checks that uri is usable inside a quoted URI position
// of a SPARQL query. expectedHost, when non-empty, is the authority the
// collection is expected to live under; a mismatch only logs a warning since
// mirrors of the vocabulary service are legitimate.
func ValidateCollectionURI(uri, expectedHost string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		return &ValidationError{URI: uri, Reason: "must start with http:// or https://"}
	}
	if i := strings.IndexAny(uri, unsafeURIChars); i >= 0 {
		return &ValidationError{URI: uri, Reason: "contains unsafe character " + string(uri[i])}
	}
	for _, r := range uri {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return &ValidationError{URI: uri, Reason: "contains whitespace or control character"}
		}
	}

	if expectedHost != "" {
		parsed, err := url.Parse(uri)
		if err != nil || !strings.Contains(parsed.Host, expectedHost) {
			logger.Warn("collection URI host differs from expected authority",
				slog.String("uri", uri),
				slog.String("expected_host", expectedHost))
		}
	}
	return nil
}
