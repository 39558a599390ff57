package feed

import (
	"time"

	"github.com/marine-term-translations/vocabfeed/pkg/db"
)

// ValueLang is one translated value with its language tag.
type ValueLang struct {
	Value    string
	Language string
}

// TermRecord is the per-term unit of a fragment: all newly approved values
// for one concept, grouped per field with every language variant preserved.
type TermRecord struct {
	Concept    string
	Modified   time.Time
	FieldOrder []string
	Fields     map[string][]ValueLang
}

// fieldKey identifies a field in the assembled record; the compact identifier
// is preferred, falling back to the full property IRI.
func fieldKey(r db.ReviewRow) string {
	if r.FieldTerm != "" {
		return r.FieldTerm
	}
	return r.FieldURI
}

// Assemble groups selected rows into term records, in order of first
// appearance. Each record's Modified is the maximum effective modification
// time across its rows.
func Assemble(rows []db.ReviewRow) []TermRecord {
	byTerm := make(map[string]*TermRecord)
	var order []string

	for _, row := range rows {
		rec, ok := byTerm[row.TermURI]
		if !ok {
			rec = &TermRecord{
				Concept:  row.TermURI,
				Modified: row.ModifiedAt,
				Fields:   make(map[string][]ValueLang),
			}
			byTerm[row.TermURI] = rec
			order = append(order, row.TermURI)
		}
		if row.ModifiedAt.After(rec.Modified) {
			rec.Modified = row.ModifiedAt
		}

		key := fieldKey(row)
		if _, seen := rec.Fields[key]; !seen {
			rec.FieldOrder = append(rec.FieldOrder, key)
		}
		rec.Fields[key] = append(rec.Fields[key], ValueLang{
			Value:    row.Value,
			Language: row.Language,
		})
	}

	out := make([]TermRecord, 0, len(order))
	for _, uri := range order {
		out = append(out, *byTerm[uri])
	}
	return out
}

// FragmentTime is the fragment's self-declared effective time: the maximum
// modification time across all included records, truncated to whole seconds.
// Its epoch value is also the fragment's filename.
func FragmentTime(records []TermRecord) time.Time {
	var max time.Time
	for _, r := range records {
		if r.Modified.After(max) {
			max = r.Modified
		}
	}
	return max.Truncate(time.Second)
}
