// Package markup serializes the table elements of a document into the
// single HTML blob the table scorer compares.
package markup

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/akashuv-21/parase/internal/logger"
	"github.com/akashuv-21/parase/internal/models"
)

const (
	containerOpen  = "<html><body>"
	containerClose = "</body></html>"

	// EmptyBlob is the container of a document without tables.
	EmptyBlob = containerOpen + containerClose
)

var (
	tableOpenTag = regexp.MustCompile(`(?i)<table[\s>]`)
	sectionTags  = []string{"<thead>", "</thead>", "<tbody>", "</tbody>"}
)

// ExtractTables wraps the html of every table element of doc in its own
// table tag, in document order, inside one html/body container.
// Prediction markup is cleaned of any table wrapper it already carries.
func ExtractTables(doc models.Document, isPrediction bool) string {
	var b strings.Builder
	b.WriteString(containerOpen)
	for _, elem := range doc.Elements {
		if !elem.Is(models.CategoryTable) {
			continue
		}

		tableHTML := elem.Content.HTML
		if isPrediction {
			tableHTML = RemoveTableTags(tableHTML)
		}

		b.WriteString("<table>")
		b.WriteString(tableHTML)
		b.WriteString("</table>")
	}
	b.WriteString(containerClose)

	return b.String()
}

// HasTableContent reports whether the blob holds anything besides the
// empty container.
func HasTableContent(blob string) bool {
	inner := strings.Replace(blob, containerOpen, "", 1)
	inner = strings.Replace(inner, containerClose, "", 1)
	return inner != ""
}

// RemoveTableTags returns the inner markup of the first table in
// tableHTML: the serialized element children of that table. Markup
// without a table tag is returned unchanged.
func RemoveTableTags(tableHTML string) string {
	if !tableOpenTag.MatchString(tableHTML) {
		return tableHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		logger.Debug("keeping prediction table markup as is: %v", err)
		return tableHTML
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return tableHTML
	}

	var b strings.Builder
	table.Children().Each(func(_ int, child *goquery.Selection) {
		outer, err := goquery.OuterHtml(child)
		if err != nil {
			logger.Debug("dropping unserializable table child: %v", err)
			return
		}
		b.WriteString(outer)
	})
	return b.String()
}

// Normalize brings a table string into the container form and removes
// header and body section tags. Bare table rows are given a table wrapper.
func Normalize(s string) string {
	switch {
	case strings.HasPrefix(s, containerOpen):
	case strings.HasPrefix(s, "<table") && strings.HasSuffix(s, "</table>"):
		s = containerOpen + s + containerClose
	case strings.TrimSpace(s) == "":
		s = EmptyBlob
	default:
		s = containerOpen + "<table>" + s + "</table>" + containerClose
	}

	for _, tok := range sectionTags {
		s = strings.ReplaceAll(s, tok, "")
	}
	return s
}
