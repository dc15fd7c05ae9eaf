// Package evaluator scores a prediction corpus against its ground truth:
// NID over page text in layout mode, TEDS and TEDS-S over tables in table
// mode.
package evaluator

import (
	"context"

	"github.com/akashuv-21/parase/internal/models"
	"github.com/akashuv-21/parase/internal/types"
	"github.com/pkg/errors"
)

// Options carries the settings of both evaluators; each mode reads the
// fields it needs.
type Options struct {
	Mode             types.Mode
	Workers          int
	IgnoreClasses    []string
	StringsToRemove  []string
	NormalizeUnicode bool
	IgnoreNodes      []string
	OnProgress       types.ProgressFunc
}

// Evaluate runs the evaluator selected by opts.Mode. In table mode a
// corpus without tables yields a zero report together with ErrNoTables.
func Evaluate(ctx context.Context, opts Options, gt, pred models.Corpus) (*types.Report, error) {
	switch opts.Mode {
	case types.ModeLayout:
		return NewLayoutEvaluator(LayoutConfig{
			Workers:          opts.Workers,
			IgnoreClasses:    opts.IgnoreClasses,
			StringsToRemove:  opts.StringsToRemove,
			NormalizeUnicode: opts.NormalizeUnicode,
			OnProgress:       opts.OnProgress,
		}).Evaluate(ctx, gt, pred)
	case types.ModeTable:
		return NewTableEvaluator(TableConfig{
			Workers:     opts.Workers,
			IgnoreNodes: opts.IgnoreNodes,
			OnProgress:  opts.OnProgress,
		}).Evaluate(ctx, gt, pred)
	}
	return nil, errors.Errorf("%s mode not supported", opts.Mode)
}

// Total is the number of documents Evaluate will report progress for.
func Total(mode types.Mode, gt, pred models.Corpus) int {
	keys, _ := matchingKeys(gt, pred)
	if mode != types.ModeTable {
		return len(keys)
	}

	n := 0
	for _, id := range keys {
		for _, elem := range gt[id].Elements {
			if elem.Is(models.CategoryTable) {
				n++
				break
			}
		}
	}
	return n
}
