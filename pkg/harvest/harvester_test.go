package harvest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marine-term-translations/vocabfeed/pkg/db"
	"github.com/marine-term-translations/vocabfeed/pkg/sparql"
)

type sparqlRow map[string]map[string]string

func literal(v, lang string) map[string]string {
	m := map[string]string{"type": "literal", "value": v}
	if lang != "" {
		m["xml:lang"] = lang
	}
	return m
}

func uriTerm(v string) map[string]string {
	return map[string]string{"type": "uri", "value": v}
}

func writeBindings(t *testing.T, w http.ResponseWriter, rows []sparqlRow) {
	t.Helper()
	payload := map[string]any{"results": map[string]any{"bindings": rows}}
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

// fakeEndpoint serves a two-concept vocabulary paginated one concept per page.
func fakeEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string][]sparqlRow{
		"OFFSET 0": {
			{
				"concept":  uriTerm("http://ex/1"),
				"property": uriTerm("http://www.w3.org/2004/02/skos/core#prefLabel"),
				"value":    literal("Sea", "en"),
			},
			{
				"concept":  uriTerm("http://ex/1"),
				"property": uriTerm("http://www.w3.org/2004/02/skos/core#definition"),
				"value":    literal("A large body of salt water", "en"),
			},
		},
		"OFFSET 1": {
			{
				"concept":  uriTerm("http://ex/2"),
				"property": uriTerm("http://www.w3.org/2004/02/skos/core#prefLabel"),
				"value":    literal("Temperature", "en"),
			},
		},
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query := r.PostForm.Get("query")

		if strings.Contains(query, "COUNT(DISTINCT ?concept)") {
			writeBindings(t, w, []sparqlRow{{"count": literal("2", "")}})
			return
		}
		for marker, rows := range pages {
			if strings.Contains(query, marker) {
				writeBindings(t, w, rows)
				return
			}
		}
		t.Errorf("unexpected query: %s", query)
		w.WriteHeader(http.StatusBadRequest)
	}))
}

func TestHarvesterRun(t *testing.T) {
	conn := setupTestDB(t)
	srv := fakeEndpoint(t)
	defer srv.Close()

	client := sparql.NewClient(srv.URL, nil)
	client.Retry = sparql.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}

	h := NewHarvester(conn, client, nil)
	h.BatchSize = 1

	stats, err := h.Run(context.Background(), "http://ex/collection")
	require.NoError(t, err)
	require.Equal(t, 2, stats.TermsInserted)
	require.Equal(t, 3, stats.FieldsInserted)
	require.Equal(t, 3, stats.OriginalsInserted)

	var uris []string
	rows, err := conn.Query(`SELECT uri FROM terms ORDER BY uri`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var uri string
		require.NoError(t, rows.Scan(&uri))
		uris = append(uris, uri)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"http://ex/1", "http://ex/2"}, uris)
}

func TestHarvesterRunIsIdempotent(t *testing.T) {
	conn := setupTestDB(t)
	srv := fakeEndpoint(t)
	defer srv.Close()

	client := sparql.NewClient(srv.URL, nil)
	client.Retry = sparql.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}

	h := NewHarvester(conn, client, nil)
	h.BatchSize = 1

	_, err := h.Run(context.Background(), "http://ex/collection")
	require.NoError(t, err)

	stats, err := h.Run(context.Background(), "http://ex/collection")
	require.NoError(t, err)
	require.Equal(t, 0, stats.TermsInserted)
	require.Equal(t, 2, stats.TermsUpdated)
	require.Equal(t, 0, stats.OriginalsInserted)
}

func TestHarvesterRunRejectsInvalidURI(t *testing.T) {
	conn := setupTestDB(t)
	h := NewHarvester(conn, sparql.NewClient("http://unused", nil), nil)

	_, err := h.Run(context.Background(), "http://ex/x> . ?s ?p ?o")
	require.Error(t, err)
	var ve *sparql.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestHarvesterRunRequiresSchema(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	h := NewHarvester(conn, sparql.NewClient("http://unused", nil), nil)

	_, err = h.Run(context.Background(), "http://ex/collection")
	require.ErrorIs(t, err, db.ErrSchemaMissing)
}
