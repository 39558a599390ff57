package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindForProperty(t *testing.T) {
	kind, ok := KindForProperty("http://www.w3.org/2004/02/skos/core#definition")
	require.True(t, ok)
	require.Equal(t, KindDefinition, kind)
	require.Equal(t, "skos:definition", kind.CURIE())
	require.Equal(t, "http://www.w3.org/2004/02/skos/core#definition", kind.URI())
}

func TestKindForPropertyRejectsUnknown(t *testing.T) {
	for _, uri := range []string{
		"http://www.w3.org/2004/02/skos/core#scopeNote",
		"http://purl.org/dc/terms/modified",
		"",
	} {
		_, ok := KindForProperty(uri)
		require.False(t, ok, "property %q must not resolve", uri)
	}
}

func TestPropertyURIs(t *testing.T) {
	uris := PropertyURIs()
	require.Len(t, uris, 7)
	require.Equal(t, "http://www.w3.org/2004/02/skos/core#prefLabel", uris[0])

	// Every listed property resolves back to its kind.
	for _, uri := range uris {
		_, ok := KindForProperty(uri)
		require.True(t, ok)
	}
}
