package sparql

import (
	"fmt"
	"strings"
)

const skosPrefix = "PREFIX skos: <http://www.w3.org/2004/02/skos/core#>\n"

// CountQuery counts the distinct members of a collection. The caller is
// responsible for validating collectionURI first.
func CountQuery(collectionURI string) string {
	var sb strings.Builder
	sb.WriteString(skosPrefix)
	sb.WriteString("SELECT (COUNT(DISTINCT ?concept) AS ?count)\n")
	sb.WriteString("WHERE {\n")
	fmt.Fprintf(&sb, "    <%s> skos:member ?concept .\n", collectionURI)
	sb.WriteString("}\n")
	return sb.String()
}

// DataQuery selects (concept, property, value) triples for collection members,
// restricted to the given property allow-list. No DISTINCT: language variants
// of the same property on the same concept must all surface as separate rows.
// limit/offset paginate the result; values < 0 omit the clause.
func DataQuery(collectionURI string, properties []string, limit, offset int) string {
	var sb strings.Builder
	sb.WriteString(skosPrefix)
	sb.WriteString("SELECT ?concept ?property ?value\n")
	sb.WriteString("WHERE {\n")
	fmt.Fprintf(&sb, "    <%s> skos:member ?concept .\n", collectionURI)
	sb.WriteString("    VALUES ?property {")
	for _, p := range properties {
		fmt.Fprintf(&sb, " <%s>", p)
	}
	sb.WriteString(" }\n")
	sb.WriteString("    ?concept ?property ?value .\n")
	sb.WriteString("}\n")
	sb.WriteString("ORDER BY ?concept ?property\n")
	if limit >= 0 {
		fmt.Fprintf(&sb, "LIMIT %d\n", limit)
	}
	if offset >= 0 {
		fmt.Fprintf(&sb, "OFFSET %d\n", offset)
	}
	return sb.String()
}
