package attackforge

import (
	"net/url"
	"strconv"
	"strings"
)

// Fields and tag names used by the resolution lookups.
const (
	fieldExternalID = "external_id"
	fieldCustomTags = "custom_tags"
	tagPluginID     = "pluginID"
)

// URLParam configures the query string appended by BuildURL.
type URLParam func(*urlParams)

type urlParams struct {
	query   string
	skip    int
	hasSkip bool
}

// WithQuery sets the q parameter. An empty query is omitted.
func WithQuery(q string) URLParam {
	return func(p *urlParams) {
		p.query = q
	}
}

// WithFilter sets the q parameter to the rendered filter.
func WithFilter(f Filter) URLParam {
	return func(p *urlParams) {
		if f != nil {
			p.query = f.String()
		}
	}
}

// WithSkip sets the skip parameter. Zero is a valid offset and is emitted.
func WithSkip(n int) URLParam {
	return func(p *urlParams) {
		p.skip = n
		p.hasSkip = true
	}
}

// BuildURL appends the q and skip parameters to endpoint, in that order.
// The first appended parameter is introduced with '?' unless endpoint already
// carries a query string, in which case '&' is used throughout.
//
// The query text is inserted verbatim. Braces and quotes of the filter
// grammar are preserved; nothing is URL-escaped at this stage.
func BuildURL(endpoint string, params ...URLParam) string {
	var p urlParams
	for _, param := range params {
		param(&p)
	}

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}

	var b strings.Builder
	b.WriteString(endpoint)
	if p.query != "" {
		b.WriteString(sep)
		b.WriteString("q=")
		b.WriteString(p.query)
		sep = "&"
	}
	if p.hasSkip {
		b.WriteString(sep)
		b.WriteString("skip=")
		b.WriteString(strconv.Itoa(p.skip))
	}
	return b.String()
}

// Filter is a predicate in the remote store's query language.
type Filter interface {
	String() string
}

type eqFilter struct {
	field string
	value string
}

// Eq matches records whose field equals value:
//
//	{ field: { $eq: "value" } }
func Eq(field, value string) Filter {
	return eqFilter{field: field, value: value}
}

func (f eqFilter) String() string {
	return "{ " + f.field + ": { $eq: " + quote(f.value) + " } }"
}

type tagMatchFilter struct {
	field string
	name  string
	value string
}

// TagMatch matches records whose array field holds an element with the
// given name and value:
//
//	{field: { $elemMatch: { name: { $eq: "name" }, value: { $eq: "value" } } }}
func TagMatch(field, name, value string) Filter {
	return tagMatchFilter{field: field, name: name, value: value}
}

func (f tagMatchFilter) String() string {
	return "{" + f.field + ": { $elemMatch: { name: { $eq: " + quote(f.name) +
		" }, value: { $eq: " + quote(f.value) + " } } }}"
}

type andFilter []Filter

// And joins filters. The query language treats adjacent predicates as a
// conjunction, so they are concatenated without a separator.
func And(filters ...Filter) Filter {
	return andFilter(filters)
}

func (f andFilter) String() string {
	var b strings.Builder
	for _, part := range f {
		if part != nil {
			b.WriteString(part.String())
		}
	}
	return b.String()
}

type libraryScope struct {
	filter    Filter
	libraryID string
}

// LibraryScope restricts filter to one writeup library. The constraint is
// not part of the filter grammar: it rides along as a separate
// belongs_to_library parameter right after the q value, which is how the
// library endpoint expects it.
func LibraryScope(filter Filter, libraryID string) Filter {
	return libraryScope{filter: filter, libraryID: libraryID}
}

func (f libraryScope) String() string {
	var s string
	if f.filter != nil {
		s = f.filter.String()
	}
	return s + "&belongs_to_library=" + escapeParamValue(f.libraryID)
}

// ExternalIDFilter matches assets imported with the given external ID.
func ExternalIDFilter(externalID string) Filter {
	return Eq(fieldExternalID, externalID)
}

// PluginFilter matches records tagged with the given scanner plugin ID.
func PluginFilter(pluginID string) Filter {
	return TagMatch(fieldCustomTags, tagPluginID, pluginID)
}

// escapeParamValue escapes a query parameter value, encoding spaces as %20.
func escapeParamValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote renders s as a string literal that cannot terminate early.
func quote(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}
