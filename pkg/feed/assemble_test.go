package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marine-term-translations/vocabfeed/pkg/db"
)

func reviewRow(term, field, lang, value string, modified time.Time) db.ReviewRow {
	return db.ReviewRow{
		TermURI:    term,
		FieldTerm:  field,
		Language:   lang,
		Value:      value,
		ModifiedAt: modified,
	}
}

func TestAssembleGroupsByTermInFirstSeenOrder(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []db.ReviewRow{
		reviewRow("http://ex/2", "skos:prefLabel", "es", "temperatura", base),
		reviewRow("http://ex/1", "skos:prefLabel", "es", "mar", base.Add(time.Hour)),
		reviewRow("http://ex/2", "skos:definition", "es", "medida de calor", base.Add(2*time.Hour)),
	}

	records := Assemble(rows)
	require.Len(t, records, 2)
	require.Equal(t, "http://ex/2", records[0].Concept)
	require.Equal(t, "http://ex/1", records[1].Concept)
	require.Equal(t, []string{"skos:prefLabel", "skos:definition"}, records[0].FieldOrder)
}

func TestAssembleKeepsAllLanguageVariants(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []db.ReviewRow{
		reviewRow("http://ex/1", "skos:prefLabel", "es", "mar", base),
		reviewRow("http://ex/1", "skos:prefLabel", "fr", "mer", base),
		reviewRow("http://ex/1", "skos:prefLabel", "nl", "zee", base),
	}

	records := Assemble(rows)
	require.Len(t, records, 1)
	require.Equal(t, []ValueLang{
		{Value: "mar", Language: "es"},
		{Value: "mer", Language: "fr"},
		{Value: "zee", Language: "nl"},
	}, records[0].Fields["skos:prefLabel"])
}

func TestAssembleRecordModifiedIsMaxAcrossRows(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []db.ReviewRow{
		reviewRow("http://ex/1", "skos:prefLabel", "es", "mar", base.Add(time.Hour)),
		reviewRow("http://ex/1", "skos:definition", "es", "cuerpo de agua", base),
	}

	records := Assemble(rows)
	require.Len(t, records, 1)
	require.Equal(t, base.Add(time.Hour), records[0].Modified)
}

func TestAssembleFallsBackToFieldURI(t *testing.T) {
	rows := []db.ReviewRow{{
		TermURI:    "http://ex/1",
		FieldURI:   "http://www.w3.org/2004/02/skos/core#prefLabel",
		Language:   "es",
		Value:      "mar",
		ModifiedAt: time.Now(),
	}}

	records := Assemble(rows)
	require.Equal(t, []string{"http://www.w3.org/2004/02/skos/core#prefLabel"}, records[0].FieldOrder)
}

func TestFragmentTime(t *testing.T) {
	records := []TermRecord{
		{Modified: time.Date(2024, 5, 1, 10, 0, 0, 500_000_000, time.UTC)},
		{Modified: time.Date(2024, 5, 1, 12, 0, 1, 999_000_000, time.UTC)},
	}
	require.Equal(t, time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC), FragmentTime(records))
}
