package evaluator

import (
	"context"

	"github.com/akashuv-21/parase/internal/logger"
	"github.com/akashuv-21/parase/internal/models"
	"github.com/akashuv-21/parase/internal/types"
	"github.com/akashuv-21/parase/pkg/markup"
	"github.com/akashuv-21/parase/pkg/tabletree"
	"github.com/akashuv-21/parase/pkg/ted"
	"github.com/pkg/errors"
)

// ErrNoTables is returned together with a zero-score report when no ground
// truth document contains a table. It is a warning, not a failure.
var ErrNoTables = errors.New("no tables found in the ground truth dataset")

type TableConfig struct {
	Workers     int
	IgnoreNodes []string
	OnProgress  types.ProgressFunc
}

// TableEvaluator computes TEDS and TEDS-S over a corpus.
type TableEvaluator struct {
	config    TableConfig
	structure tabletree.Parser
	content   tabletree.Parser
}

func NewTableEvaluator(config TableConfig) *TableEvaluator {
	config.Workers = defaultWorkers(config.Workers)

	return &TableEvaluator{
		config: config,
		structure: tabletree.NewWithConfig(tabletree.ParserConfig{
			StructureOnly: true,
			IgnoreNodes:   config.IgnoreNodes,
		}),
		content: tabletree.NewWithConfig(tabletree.ParserConfig{
			IgnoreNodes: config.IgnoreNodes,
		}),
	}
}

type tablePair struct {
	id     string
	gtBlob string
	prBlob string
}

// Evaluate scores every ground truth document that has at least one table
// against its prediction and averages the results.
func (e *TableEvaluator) Evaluate(ctx context.Context, gt, pred models.Corpus) (*types.Report, error) {
	report := &types.Report{Mode: types.ModeTable, Documents: []types.DocumentScore{}}

	keys, skipped := matchingKeys(gt, pred)
	for _, id := range skipped {
		logger.Warn("%s not found in prediction, skipping", id)
	}
	report.Skipped = skipped

	pairs := make([]tablePair, 0, len(keys))
	for _, id := range keys {
		gtBlob := markup.ExtractTables(gt[id], false)
		if !markup.HasTableContent(gtBlob) {
			continue
		}
		pairs = append(pairs, tablePair{
			id:     id,
			gtBlob: gtBlob,
			prBlob: markup.ExtractTables(pred[id], true),
		})
	}

	if len(pairs) == 0 {
		report.Warning = ErrNoTables.Error()
		return report, ErrNoTables
	}
	logger.Info("scoring tables of %d documents with %d workers", len(pairs), e.config.Workers)

	scores := make([]types.DocumentScore, len(pairs))
	err := forEach(ctx, e.config.Workers, len(pairs), func(i int) {
		scores[i] = e.scoreDocument(pairs[i])
		if e.config.OnProgress != nil {
			e.config.OnProgress(pairs[i].id)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "evaluating tables")
	}

	var teds, tedsS float64
	for _, s := range scores {
		teds += s.TEDS
		tedsS += s.TEDSS
	}
	report.TEDS = teds / float64(len(scores))
	report.TEDSS = tedsS / float64(len(scores))
	report.Documents = scores

	return report, nil
}

func (e *TableEvaluator) scoreDocument(p tablePair) types.DocumentScore {
	score := types.DocumentScore{DocumentID: p.id}

	var errs []error
	var err error
	score.TEDS, err = e.score(e.content, ted.ContentCost{}, p.gtBlob, p.prBlob)
	if err != nil {
		errs = append(errs, err)
	}
	score.TEDSS, err = e.score(e.structure, ted.StructureCost{}, p.gtBlob, p.prBlob)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		score.Error = errs[0].Error()
		logger.Debug("%s scored 0: %v", p.id, errs[0])
	}
	return score
}

// ScorePair returns the TEDS and TEDS-S similarity of a single table pair.
// Either argument may be a container blob, a bare table, or bare rows.
// Unparseable or missing tables score 0.
func (e *TableEvaluator) ScorePair(gtMarkup, predMarkup string) (teds, tedsS float64) {
	teds, _ = e.score(e.content, ted.ContentCost{}, gtMarkup, predMarkup)
	tedsS, _ = e.score(e.structure, ted.StructureCost{}, gtMarkup, predMarkup)
	return teds, tedsS
}

func (e *TableEvaluator) score(parser tabletree.Parser, cost ted.CostModel, gtBlob, prBlob string) (float64, error) {
	truth, err := parser.Parse(markup.Normalize(gtBlob))
	if err != nil {
		return 0, errors.Wrap(err, "ground truth")
	}
	pred, err := parser.Parse(markup.Normalize(prBlob))
	if err != nil {
		return 0, errors.Wrap(err, "prediction")
	}
	return ted.Similarity(truth, pred, cost), nil
}
