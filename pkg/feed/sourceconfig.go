package feed

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SourceConfigError reports malformed translation_config JSON on a source.
// It is a distinct, reportable condition rather than a silent fallback, but
// never fatal: publication proceeds with defaults.
type SourceConfigError struct {
	SourceID int64
	Err      error
}

func (e *SourceConfigError) Error() string {
	return fmt.Sprintf("invalid translation_config for source %d: %v", e.SourceID, e.Err)
}

func (e *SourceConfigError) Unwrap() error { return e.Err }

// SourceConfig is the validated shape of a source's translation_config JSON.
// All fields are optional; missing values fall through the resolution tiers
// in Resolver.Resolve.
type SourceConfig struct {
	// MemberTypes are the RDF types declared on each published member.
	MemberTypes []string `json:"member_types"`

	// TimestampPath overrides the property used as the feed timestamp path.
	TimestampPath string `json:"timestamp_path"`

	// VersionOfPath overrides the property linking a member to its concept.
	VersionOfPath string `json:"version_of_path"`
}

// ParseSourceConfig parses and validates a source's translation_config.
// An empty config is valid and yields the zero value.
func ParseSourceConfig(sourceID int64, raw string) (SourceConfig, error) {
	var cfg SourceConfig
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return SourceConfig{}, &SourceConfigError{SourceID: sourceID, Err: err}
	}
	for _, t := range cfg.MemberTypes {
		if strings.TrimSpace(t) == "" {
			return SourceConfig{}, &SourceConfigError{
				SourceID: sourceID,
				Err:      fmt.Errorf("member_types contains an empty entry"),
			}
		}
	}
	return cfg, nil
}
