package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser replaces HTML in string fields with its readable text.
type Normaliser struct {
	fields map[string]bool
}

// New creates a normaliser. With no fields given every string field that
// contains markup is stripped.
func New(fields ...string) *Normaliser {
	n := &Normaliser{}
	if len(fields) > 0 {
		n.fields = make(map[string]bool, len(fields))
		for _, f := range fields {
			n.fields[f] = true
		}
	}
	return n
}

// Normalise returns doc with markup removed from its data.
func (n *Normaliser) Normalise(_ context.Context, doc domain.Document) (domain.Document, error) {
	if doc.Data == nil {
		return doc, nil
	}
	data := make(map[string]any, len(doc.Data))
	for k, v := range doc.Data {
		if n.fields != nil && !n.fields[k] {
			data[k] = v
			continue
		}
		data[k] = stripValue(v)
	}
	doc.Data = data
	return doc, nil
}

func stripValue(v any) any {
	switch val := v.(type) {
	case string:
		if !hasMarkup(val) {
			return val
		}
		return stripHTML(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = stripValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, item := range val {
			if hasMarkup(item) {
				item = stripHTML(item)
			}
			out[i] = item
		}
		return out
	default:
		return v
	}
}

func hasMarkup(s string) bool {
	return anyTag.MatchString(s) || strings.Contains(s, "&")
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	anyTag            = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
	multiNewlines     = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes HTML tags and extracts readable text content.
func stripHTML(content string) string {
	// Drop elements whose bodies are never readable text
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Block boundaries become line breaks
	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	var result []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
