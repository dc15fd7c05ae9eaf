package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCorpus = `{
  "doc1.jpg": {
    "elements": [
      {
        "coordinates": [{"x": 0.1, "y": 0.1}, {"x": 0.9, "y": 0.1}, {"x": 0.9, "y": 0.2}, {"x": 0.1, "y": 0.2}],
        "category": "paragraph",
        "id": 0,
        "content": {"text": "Hello world", "html": "", "markdown": ""}
      },
      {
        "coordinates": [],
        "category": "table",
        "id": 1,
        "content": {"text": "", "html": "<tr><td>A</td></tr>", "markdown": ""}
      }
    ]
  }
}`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestLoadPair(t *testing.T) {
	label := writeFile(t, "label.json", validCorpus)
	pred := writeFile(t, "pred.json", validCorpus)

	gt, pr, err := LoadPair(label, pred)
	require.NoError(t, err)

	require.Contains(t, gt, "doc1.jpg")
	doc := gt["doc1.jpg"]
	require.Len(t, doc.Elements, 2)
	assert.Equal(t, "paragraph", doc.Elements[0].Category)
	assert.Equal(t, "Hello world", doc.Elements[0].Content.Text)
	assert.Len(t, doc.Elements[0].Coordinates, 4)
	assert.Equal(t, 0.9, doc.Elements[0].Coordinates[1].X)
	assert.Equal(t, 1, doc.Elements[1].ID)
	assert.Equal(t, "<tr><td>A</td></tr>", doc.Elements[1].Content.HTML)
	assert.Equal(t, gt, pr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "not found")

	_, err = Load(t.TempDir())
	assert.ErrorContains(t, err, "not found")

	_, err = Load(writeFile(t, "data.txt", validCorpus))
	assert.ErrorContains(t, err, "not supported")

	_, err = Load(writeFile(t, "broken.json", "{not json"))
	assert.ErrorContains(t, err, "decoding corpus")
}

func TestValidate(t *testing.T) {
	good, err := Parse([]byte(validCorpus))
	require.NoError(t, err)

	tests := []struct {
		name     string
		gt, pred string
		side     string
		key      string
	}{
		{"valid", validCorpus, validCorpus, "", ""},
		{"empty ground truth", `{}`, validCorpus, SideGroundTruth, ""},
		{"empty prediction", validCorpus, `{}`, SidePrediction, ""},
		{"missing elements", `{"a": {}}`, validCorpus, SideGroundTruth, "elements"},
		{"null document", validCorpus, `{"a": null}`, SidePrediction, "elements"},
		{"missing category", validCorpus, `{"a": {"elements": [{"content": {"text": ""}}]}}`, SidePrediction, "category"},
		{"missing content", `{"a": {"elements": [{"category": "table"}]}}`, validCorpus, SideGroundTruth, "content"},
		{"missing text", `{"a": {"elements": [{"category": "table", "content": {"html": "<tr></tr>"}}]}}`, validCorpus, SideGroundTruth, "text"},
		{"null text", `{"a": {"elements": [{"category": "table", "content": {"text": null}}]}}`, validCorpus, SideGroundTruth, "text"},
		{"prediction missing document", validCorpus, `{"other.jpg": {"elements": []}}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt, err := Parse([]byte(tt.gt))
			require.NoError(t, err)
			pred, err := Parse([]byte(tt.pred))
			require.NoError(t, err)

			err = Validate(gt, pred)
			if tt.side == "" {
				assert.NoError(t, err)
				return
			}

			var serr *SchemaError
			require.True(t, errors.As(err, &serr), "got %v", err)
			assert.Equal(t, tt.side, serr.Side)
			assert.Equal(t, tt.key, serr.Key)
			if tt.key != "" {
				assert.Equal(t, "a", serr.DocumentID)
				assert.Contains(t, serr.Error(), tt.key)
			}
		})
	}

	assert.NotEmpty(t, good.Corpus())
}
