// Package scrape holds small goquery parsing helpers shared by the site adapters.
package scrape

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Texts returns the trimmed, non-empty text contents of every node matching
// the selector, in document order.
func Texts(doc *goquery.Document, selector string) []string {
	var texts []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}

// AttrFirst returns the first non-empty value among the named attributes.
// Lazy-loading sites put the real URL in data-src and a placeholder in src,
// so attribute priority matters.
func AttrFirst(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if value, ok := sel.Attr(name); ok && value != "" {
			return value
		}
	}
	return ""
}

// Atoi parses a digit string already validated by a regexp capture group.
func Atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
