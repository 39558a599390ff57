package feed

import (
	"fmt"
	"strings"
	"time"
)

// FragmentData is the fully-resolved, serialization-agnostic input to a
// Renderer: the record structure plus control parameters for one fragment.
type FragmentData struct {
	SourceID    string
	PrefixURI   string
	Timestamp   int64
	Predecessor int64
	Meta        FeedMetadata
	Records     []TermRecord
}

// StreamIRI is the identifier of the event stream this fragment belongs to.
func (f *FragmentData) StreamIRI() string {
	return fmt.Sprintf("%s/ldes/%s", strings.TrimRight(f.PrefixURI, "/"), f.SourceID)
}

// NodeIRI is the identifier of a fragment node by timestamp.
func (f *FragmentData) NodeIRI(ts int64) string {
	return fmt.Sprintf("%s/%d%s", f.StreamIRI(), ts, FragmentExt)
}

// Renderer turns a resolved fragment into wire-format content. It is treated
// as a pure function: no side effects are expected of it.
type Renderer interface {
	Render(f *FragmentData) ([]byte, error)
}

// TurtleRenderer renders fragments as Turtle.
type TurtleRenderer struct{}

// orderedPrefixes keeps the prefix block stable across runs.
var orderedPrefixes = []struct{ prefix, iri string }{
	{"ldes", "https://w3id.org/ldes#"},
	{"tree", "https://w3id.org/tree#"},
	{"dcterms", "http://purl.org/dc/terms/"},
	{"skos", "http://www.w3.org/2004/02/skos/core#"},
	{"xsd", "http://www.w3.org/2001/XMLSchema#"},
}

// Render serializes the fragment: the stream header with its declared
// property paths, the node with its backward relation when a predecessor
// exists, and one member block per term record.
func (r *TurtleRenderer) Render(f *FragmentData) ([]byte, error) {
	var sb strings.Builder

	for _, p := range orderedPrefixes {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", p.prefix, p.iri)
	}
	sb.WriteString("\n")

	stream := f.StreamIRI()
	node := f.NodeIRI(f.Timestamp)

	fmt.Fprintf(&sb, "<%s>\n", stream)
	sb.WriteString("    a ldes:EventStream ;\n")
	fmt.Fprintf(&sb, "    ldes:timestampPath %s ;\n", formatTerm(f.Meta.TimestampPath))
	fmt.Fprintf(&sb, "    ldes:versionOfPath %s ;\n", formatTerm(f.Meta.VersionOfPath))
	fmt.Fprintf(&sb, "    tree:view <%s> .\n\n", node)

	fmt.Fprintf(&sb, "<%s>\n", node)
	sb.WriteString("    a tree:Node")
	if f.Predecessor > 0 {
		predTime := time.Unix(f.Predecessor, 0).UTC().Format(time.RFC3339)
		sb.WriteString(" ;\n")
		sb.WriteString("    tree:relation [\n")
		sb.WriteString("        a tree:LessThanRelation ;\n")
		fmt.Fprintf(&sb, "        tree:path %s ;\n", formatTerm(f.Meta.TimestampPath))
		fmt.Fprintf(&sb, "        tree:node <%s> ;\n", f.NodeIRI(f.Predecessor))
		fmt.Fprintf(&sb, "        tree:value \"%s\"^^xsd:dateTime\n", predTime)
		sb.WriteString("    ] .\n\n")
	} else {
		sb.WriteString(" .\n\n")
	}

	for _, rec := range f.Records {
		r.writeMember(&sb, f, stream, rec)
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// writeMember writes one versioned member and its stream membership.
func (r *TurtleRenderer) writeMember(sb *strings.Builder, f *FragmentData, stream string, rec TermRecord) {
	memberIRI := fmt.Sprintf("%s#%d", rec.Concept, f.Timestamp)

	fmt.Fprintf(sb, "<%s> tree:member <%s> .\n", stream, memberIRI)
	fmt.Fprintf(sb, "<%s>\n", memberIRI)
	for _, t := range f.Meta.MemberTypes {
		fmt.Fprintf(sb, "    a %s ;\n", formatTerm(t))
	}
	fmt.Fprintf(sb, "    %s <%s> ;\n", formatTerm(f.Meta.VersionOfPath), rec.Concept)
	fmt.Fprintf(sb, "    %s \"%s\"^^xsd:dateTime",
		formatTerm(f.Meta.TimestampPath),
		rec.Modified.UTC().Format(time.RFC3339))

	for _, field := range rec.FieldOrder {
		for _, vl := range rec.Fields[field] {
			sb.WriteString(" ;\n")
			fmt.Fprintf(sb, "    %s %s", formatTerm(field), formatObject(vl))
		}
	}
	sb.WriteString(" .\n")
}

// formatTerm renders a predicate or type position: full IRIs are bracketed,
// already-bracketed IRIs and compact identifiers pass through.
func formatTerm(term string) string {
	if strings.HasPrefix(term, "<") {
		return term
	}
	if strings.HasPrefix(term, "http://") || strings.HasPrefix(term, "https://") {
		return "<" + term + ">"
	}
	return term
}

// formatObject renders a value: URIs become IRI references (relation fields
// like skos:broader carry concept URIs as values), everything else a literal
// with its language tag when present.
func formatObject(vl ValueLang) string {
	if strings.HasPrefix(vl.Value, "http://") || strings.HasPrefix(vl.Value, "https://") {
		return "<" + vl.Value + ">"
	}
	lit := "\"" + escapeLiteral(vl.Value) + "\""
	if vl.Language != "" {
		return lit + "@" + vl.Language
	}
	return lit
}

func escapeLiteral(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", "\\n",
		"\r", "\\r",
		"\t", "\\t",
	)
	return replacer.Replace(s)
}
