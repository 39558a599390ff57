package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSourceConfig(t *testing.T) {
	cfg, err := ParseSourceConfig(1, `{
		"member_types": ["skos:Concept", "<http://ex/Term>"],
		"timestamp_path": "dcterms:issued",
		"version_of_path": "dcterms:isVersionOf"
	}`)
	require.NoError(t, err)
	require.Equal(t, []string{"skos:Concept", "<http://ex/Term>"}, cfg.MemberTypes)
	require.Equal(t, "dcterms:issued", cfg.TimestampPath)
	require.Equal(t, "dcterms:isVersionOf", cfg.VersionOfPath)
}

func TestParseSourceConfigEmptyIsValid(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n"} {
		cfg, err := ParseSourceConfig(1, raw)
		require.NoError(t, err)
		require.Equal(t, SourceConfig{}, cfg)
	}
}

func TestParseSourceConfigMalformedJSON(t *testing.T) {
	_, err := ParseSourceConfig(7, `{"member_types": [`)
	require.Error(t, err)
	var sce *SourceConfigError
	require.ErrorAs(t, err, &sce)
	require.Equal(t, int64(7), sce.SourceID)
}

func TestParseSourceConfigRejectsEmptyMemberType(t *testing.T) {
	_, err := ParseSourceConfig(1, `{"member_types": ["skos:Concept", "  "]}`)
	require.Error(t, err)
	var sce *SourceConfigError
	require.ErrorAs(t, err, &sce)
}
