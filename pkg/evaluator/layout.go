package evaluator

import (
	"context"

	"github.com/akashuv-21/parase/internal/logger"
	"github.com/akashuv-21/parase/internal/models"
	"github.com/akashuv-21/parase/internal/types"
	"github.com/akashuv-21/parase/pkg/processor"
	"github.com/akashuv-21/parase/pkg/textdist"
	"github.com/pkg/errors"
)

type LayoutConfig struct {
	Workers int
	// IgnoreClasses defaults to figure, table and chart when nil.
	IgnoreClasses    []string
	StringsToRemove  []string
	NormalizeUnicode bool
	OnProgress       types.ProgressFunc
}

// LayoutEvaluator computes the NID text similarity over a corpus.
type LayoutEvaluator struct {
	config    LayoutConfig
	processor processor.Processor
}

func NewLayoutEvaluator(config LayoutConfig) *LayoutEvaluator {
	config.Workers = defaultWorkers(config.Workers)
	if config.IgnoreClasses == nil {
		config.IgnoreClasses = processor.DefaultIgnoreClasses()
	}

	return &LayoutEvaluator{
		config: config,
		processor: processor.NewWithConfig(processor.ProcessorConfig{
			IgnoreClasses:    config.IgnoreClasses,
			StringsToRemove:  config.StringsToRemove,
			NormalizeUnicode: config.NormalizeUnicode,
		}),
	}
}

// CalcNID returns the normalized indel similarity of two texts on a 0..100
// scale. Agreement on an empty page scores 100; a prediction that misses
// all of a non-empty page scores 0.
func CalcNID(gtText, predText string) float64 {
	switch {
	case gtText == "" && predText == "":
		return 100
	case gtText != "" && predText == "":
		return 0
	}
	return textdist.Ratio(gtText, predText)
}

// Evaluate scores every ground truth document with a prediction. The
// corpus score is the mean NID rescaled to [0,1].
func (e *LayoutEvaluator) Evaluate(ctx context.Context, gt, pred models.Corpus) (*types.Report, error) {
	report := &types.Report{Mode: types.ModeLayout, Documents: []types.DocumentScore{}}

	keys, skipped := matchingKeys(gt, pred)
	for _, id := range skipped {
		logger.Warn("%s not found in prediction, skipping", id)
	}
	report.Skipped = skipped

	if len(keys) == 0 {
		report.Warning = "no documents to evaluate"
		return report, nil
	}

	scores := make([]types.DocumentScore, len(keys))
	err := forEach(ctx, e.config.Workers, len(keys), func(i int) {
		id := keys[i]
		gtText := e.processor.Process(gt[id])
		predText := e.processor.Process(pred[id])
		scores[i] = types.DocumentScore{DocumentID: id, NID: CalcNID(gtText, predText) / 100}
		if e.config.OnProgress != nil {
			e.config.OnProgress(id)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "evaluating layout")
	}

	var sum float64
	for _, s := range scores {
		sum += s.NID
	}
	report.NID = sum / float64(len(scores))
	report.Documents = scores

	return report, nil
}
