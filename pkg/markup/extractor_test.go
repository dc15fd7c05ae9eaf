package markup

import (
	"testing"

	"github.com/akashuv-21/parase/internal/models"
	"github.com/stretchr/testify/assert"
)

func table(html string) models.Element {
	return models.Element{Category: "table", Content: models.Content{HTML: html}}
}

func paragraph(text string) models.Element {
	return models.Element{Category: "paragraph", Content: models.Content{Text: text}}
}

func TestExtractTables(t *testing.T) {
	doc := models.Document{Elements: []models.Element{
		paragraph("intro"),
		table("<tr><td>1</td></tr>"),
		paragraph("between"),
		{Category: "Table", Content: models.Content{HTML: "<tr><td>2</td></tr>"}},
	}}

	got := ExtractTables(doc, false)

	assert.Equal(t,
		"<html><body><table><tr><td>1</td></tr></table><table><tr><td>2</td></tr></table></body></html>",
		got)
	assert.True(t, HasTableContent(got))
}

func TestExtractTablesWithoutTables(t *testing.T) {
	doc := models.Document{Elements: []models.Element{paragraph("only text")}}

	got := ExtractTables(doc, true)

	assert.Equal(t, EmptyBlob, got)
	assert.False(t, HasTableContent(got))
}

func TestExtractTablesCleansPredictionWrapper(t *testing.T) {
	doc := models.Document{Elements: []models.Element{
		table("<table><tr><td>A</td></tr></table>"),
	}}

	assert.Equal(t,
		"<html><body><table><tbody><tr><td>A</td></tr></tbody></table></body></html>",
		ExtractTables(doc, true))

	// ground truth is taken verbatim
	assert.Equal(t,
		"<html><body><table><table><tr><td>A</td></tr></table></table></body></html>",
		ExtractTables(doc, false))
}

func TestRemoveTableTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no wrapper",
			in:   "<tr><td>A</td></tr>",
			want: "<tr><td>A</td></tr>",
		},
		{
			name: "wrapper with attributes",
			in:   `<table border="1"><thead><tr><td>H</td></tr></thead><tbody><tr><td rowspan="2">v</td></tr></tbody></table>`,
			want: `<thead><tr><td>H</td></tr></thead><tbody><tr><td rowspan="2">v</td></tr></tbody>`,
		},
		{
			name: "only first table survives",
			in:   "<table><tr><td>1</td></tr></table><p>note</p><table><tr><td>2</td></tr></table>",
			want: "<tbody><tr><td>1</td></tr></tbody>",
		},
		{
			name: "empty table",
			in:   "<table></table>",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveTableTags(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "container untouched",
			in:   "<html><body><table><tr><td>A</td></tr></table></body></html>",
			want: "<html><body><table><tr><td>A</td></tr></table></body></html>",
		},
		{
			name: "bare table",
			in:   "<table><tr><td>A</td></tr></table>",
			want: "<html><body><table><tr><td>A</td></tr></table></body></html>",
		},
		{
			name: "bare rows",
			in:   "<tr><td>A</td></tr>",
			want: "<html><body><table><tr><td>A</td></tr></table></body></html>",
		},
		{
			name: "sections removed",
			in:   "<table><thead><tr><td>H</td></tr></thead><tbody><tr><td>v</td></tr></tbody></table>",
			want: "<html><body><table><tr><td>H</td></tr><tr><td>v</td></tr></table></body></html>",
		},
		{
			name: "empty",
			in:   "",
			want: EmptyBlob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
