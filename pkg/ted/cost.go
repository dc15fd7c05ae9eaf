package ted

import (
	"github.com/akashuv-21/parase/pkg/tabletree"
	"github.com/akashuv-21/parase/pkg/textdist"
)

// CostModel prices the elementary edit operations between tree nodes.
// Implementations must be pure: the same arguments always cost the same.
type CostModel interface {
	Delete(n *tabletree.Node) float64
	Insert(n *tabletree.Node) float64
	Rename(a, b *tabletree.Node) float64
}

// StructureCost compares tags and cell spans only.
type StructureCost struct{}

// ContentCost additionally grades structurally equal cells by the
// normalized Levenshtein distance of their content tokens.
type ContentCost struct{}

var (
	_ CostModel = StructureCost{}
	_ CostModel = ContentCost{}
)

// CostFor returns the cost model for TEDS-S (structureOnly) or TEDS.
func CostFor(structureOnly bool) CostModel {
	if structureOnly {
		return StructureCost{}
	}
	return ContentCost{}
}

func (StructureCost) Delete(*tabletree.Node) float64 { return 1 }
func (StructureCost) Insert(*tabletree.Node) float64 { return 1 }

func (StructureCost) Rename(a, b *tabletree.Node) float64 {
	if structuralMismatch(a, b) {
		return 1
	}
	return 0
}

func (ContentCost) Delete(*tabletree.Node) float64 { return 1 }
func (ContentCost) Insert(*tabletree.Node) float64 { return 1 }

func (ContentCost) Rename(a, b *tabletree.Node) float64 {
	if structuralMismatch(a, b) {
		return 1
	}
	if a.IsCell() && (len(a.Content) > 0 || len(b.Content) > 0) {
		return textdist.NormalizedLevenshtein(a.Content, b.Content)
	}
	return 0
}

func structuralMismatch(a, b *tabletree.Node) bool {
	return a.Tag != b.Tag || a.Rowspan != b.Rowspan || a.Colspan != b.Colspan
}
