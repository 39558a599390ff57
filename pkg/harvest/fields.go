// Package harvest folds SKOS collection data fetched from the query endpoint
// into the relational store without ever destroying curation layered on top:
// merging is strictly append/skip.
package harvest

import "strings"

const skosNamespace = "http://www.w3.org/2004/02/skos/core#"

// FieldKind is the closed enumeration of SKOS properties offered for
// translation. Anything outside it is dropped by the merge engine as an
// explicit, counted branch.
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindPrefLabel
	KindAltLabel
	KindDefinition
	KindNotation
	KindBroader
	KindNarrower
	KindRelated
)

var kindNames = map[FieldKind]string{
	KindPrefLabel:  "prefLabel",
	KindAltLabel:   "altLabel",
	KindDefinition: "definition",
	KindNotation:   "notation",
	KindBroader:    "broader",
	KindNarrower:   "narrower",
	KindRelated:    "related",
}

// Kinds lists the supported field kinds in their canonical order.
func Kinds() []FieldKind {
	return []FieldKind{
		KindPrefLabel, KindAltLabel, KindDefinition, KindNotation,
		KindBroader, KindNarrower, KindRelated,
	}
}

func (k FieldKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// URI returns the full property IRI for the kind.
func (k FieldKind) URI() string {
	if n, ok := kindNames[k]; ok {
		return skosNamespace + n
	}
	return ""
}

// CURIE returns the compact skos: identifier for the kind.
func (k FieldKind) CURIE() string {
	if n, ok := kindNames[k]; ok {
		return "skos:" + n
	}
	return ""
}

// KindForProperty resolves a property IRI against the allow-list.
func KindForProperty(uri string) (FieldKind, bool) {
	name, ok := strings.CutPrefix(uri, skosNamespace)
	if !ok {
		return KindUnknown, false
	}
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// PropertyURIs returns the allow-listed property IRIs in canonical order, as
// passed to the data query builder.
func PropertyURIs() []string {
	kinds := Kinds()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.URI())
	}
	return out
}
