package corpus

import (
	"fmt"
	"sort"

	"github.com/akashuv-21/parase/internal/logger"
)

const (
	SideGroundTruth = "ground truth"
	SidePrediction  = "prediction"
)

// SchemaError reports a corpus that does not follow the document model.
// It is fatal for the whole evaluation.
type SchemaError struct {
	Side       string
	DocumentID string
	Key        string
	Message    string
}

func (e *SchemaError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s data: %s", e.Side, e.Message)
	}
	return fmt.Sprintf("%s does not have %q key in the %s file, check that the correct data is passed",
		e.DocumentID, e.Key, e.Side)
}

// Validate checks both corpora before any scoring happens. Documents
// missing from the prediction are reported but not rejected; the
// evaluators skip them.
func Validate(gt, pred Raw) error {
	if len(gt) == 0 {
		return &SchemaError{Side: SideGroundTruth, Message: "corpus is empty"}
	}
	if len(pred) == 0 {
		return &SchemaError{Side: SidePrediction, Message: "corpus is empty"}
	}

	for _, id := range sortedKeys(gt) {
		if _, ok := pred[id]; !ok {
			logger.Warn("%s not found in prediction, it will be skipped", id)
		}
	}

	if err := checkFormat(gt, SideGroundTruth); err != nil {
		return err
	}
	return checkFormat(pred, SidePrediction)
}

func checkFormat(raw Raw, side string) error {
	for _, id := range sortedKeys(raw) {
		doc := raw[id]
		if doc == nil || doc.Elements == nil {
			return &SchemaError{Side: side, DocumentID: id, Key: "elements"}
		}

		for _, elem := range *doc.Elements {
			if elem.Category == nil {
				return &SchemaError{Side: side, DocumentID: id, Key: "category"}
			}
			if elem.Content == nil {
				return &SchemaError{Side: side, DocumentID: id, Key: "content"}
			}
			if elem.Content.Text == nil {
				return &SchemaError{Side: side, DocumentID: id, Key: "text"}
			}
		}
	}
	return nil
}

// sortedKeys keeps error reporting deterministic.
func sortedKeys(raw Raw) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
