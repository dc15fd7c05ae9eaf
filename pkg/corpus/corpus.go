// Package corpus loads ground truth and prediction files and checks that
// they have the shape the scorers rely on.
package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/akashuv-21/parase/internal/models"
	"github.com/pkg/errors"
)

// Raw is a decoded corpus file in which missing keys are still
// distinguishable from empty values.
type Raw map[string]*RawDocument

type RawDocument struct {
	Elements *[]RawElement `json:"elements"`
}

type RawElement struct {
	ID          int            `json:"id"`
	Category    *string        `json:"category"`
	Coordinates []models.Point `json:"coordinates"`
	Content     *RawContent    `json:"content"`
}

type RawContent struct {
	Text     *string `json:"text"`
	HTML     string  `json:"html"`
	Markdown string  `json:"markdown"`
}

// Parse decodes a corpus from JSON.
func Parse(data []byte) (Raw, error) {
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding corpus")
	}
	return raw, nil
}

// Load reads a corpus from a .json file.
func Load(path string) (Raw, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, errors.Errorf("file %s not found", path)
	}
	if ext := filepath.Ext(path); ext != ".json" {
		return nil, errors.Errorf("file format %q not supported", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	raw, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return raw, nil
}

// LoadPair loads and validates a ground truth and a prediction corpus.
func LoadPair(labelPath, predPath string) (models.Corpus, models.Corpus, error) {
	gt, err := Load(labelPath)
	if err != nil {
		return nil, nil, err
	}
	pred, err := Load(predPath)
	if err != nil {
		return nil, nil, err
	}

	if err := Validate(gt, pred); err != nil {
		return nil, nil, err
	}
	return gt.Corpus(), pred.Corpus(), nil
}

// Corpus converts a validated raw corpus into the document model.
func (r Raw) Corpus() models.Corpus {
	corpus := make(models.Corpus, len(r))
	for id, raw := range r {
		var doc models.Document
		if raw != nil && raw.Elements != nil {
			doc.Elements = make([]models.Element, 0, len(*raw.Elements))
			for _, e := range *raw.Elements {
				doc.Elements = append(doc.Elements, e.element())
			}
		}
		corpus[id] = doc
	}
	return corpus
}

func (e RawElement) element() models.Element {
	elem := models.Element{ID: e.ID, Coordinates: e.Coordinates}
	if e.Category != nil {
		elem.Category = *e.Category
	}
	if e.Content != nil {
		elem.Content.HTML = e.Content.HTML
		elem.Content.Markdown = e.Content.Markdown
		if e.Content.Text != nil {
			elem.Content.Text = *e.Content.Text
		}
	}
	return elem
}
