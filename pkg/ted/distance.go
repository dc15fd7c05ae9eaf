// Package ted computes the edit distance between ordered labeled trees and
// the TEDS similarity derived from it.
//
// The distance is the Zhang-Shasha keyroot algorithm. Before running it the
// engine picks the cheaper of two path decompositions for the pair: left
// paths on the trees as given, or right paths, obtained by running the same
// recurrence on mirrored trees. Mirroring both trees preserves the distance,
// so both choices are exact; they differ only in the number of subproblems.
package ted

import (
	"github.com/akashuv-21/parase/pkg/tabletree"
)

// Distance returns the minimum total cost of node deletions, insertions and
// renames transforming t1 into t2. A nil tree is treated as empty.
func Distance(t1, t2 *tabletree.Node, cost CostModel) float64 {
	switch {
	case t1 == nil && t2 == nil:
		return 0
	case t1 == nil:
		return total(t2, cost.Insert)
	case t2 == nil:
		return total(t1, cost.Delete)
	}

	a, b := newArena(t1, false), newArena(t2, false)
	ra, rb := newArena(t1, true), newArena(t2, true)
	if ra.work()*rb.work() < a.work()*b.work() {
		a, b = ra, rb
	}
	return zhangShasha(a, b, cost)
}

// Similarity normalizes the distance into [0,1]:
// 1 - d / max(|pred|, |truth|). An absent tree on either side scores 0.
func Similarity(truth, pred *tabletree.Node, cost CostModel) float64 {
	if truth == nil || pred == nil {
		return 0
	}
	nodes := max(truth.Size(), pred.Size())
	sim := 1 - Distance(pred, truth, cost)/float64(nodes)
	return min(max(sim, 0), 1)
}

func total(n *tabletree.Node, price func(*tabletree.Node) float64) float64 {
	sum := price(n)
	for _, c := range n.Children {
		sum += total(c, price)
	}
	return sum
}

// arena is a tree flattened in postorder with index-based references.
type arena struct {
	nodes    []*tabletree.Node
	lml      []int // leftmost leaf descendant of each node
	keyroots []int // ascending
}

func newArena(root *tabletree.Node, mirrored bool) *arena {
	size := root.Size()
	a := &arena{
		nodes: make([]*tabletree.Node, 0, size),
		lml:   make([]int, 0, size),
	}
	a.add(root, mirrored)

	seen := make([]bool, size)
	for i := size - 1; i >= 0; i-- {
		if !seen[a.lml[i]] {
			seen[a.lml[i]] = true
			a.keyroots = append(a.keyroots, i)
		}
	}
	for i, j := 0, len(a.keyroots)-1; i < j; i, j = i+1, j-1 {
		a.keyroots[i], a.keyroots[j] = a.keyroots[j], a.keyroots[i]
	}
	return a
}

// add appends the subtree in postorder and returns its leftmost leaf.
func (a *arena) add(n *tabletree.Node, mirrored bool) int {
	leftmost := -1
	k := len(n.Children)
	for i := 0; i < k; i++ {
		c := n.Children[i]
		if mirrored {
			c = n.Children[k-1-i]
		}
		l := a.add(c, mirrored)
		if leftmost < 0 {
			leftmost = l
		}
	}

	a.nodes = append(a.nodes, n)
	if leftmost < 0 {
		leftmost = len(a.nodes) - 1
	}
	a.lml = append(a.lml, leftmost)
	return leftmost
}

// work is the number of forest-distance rows the decomposition needs.
func (a *arena) work() int64 {
	var w int64
	for _, k := range a.keyroots {
		w += int64(k - a.lml[k] + 1)
	}
	return w
}

func zhangShasha(a, b *arena, cost CostModel) float64 {
	n, m := len(a.nodes), len(b.nodes)

	del := make([]float64, n)
	for i, node := range a.nodes {
		del[i] = cost.Delete(node)
	}
	ins := make([]float64, m)
	for j, node := range b.nodes {
		ins[j] = cost.Insert(node)
	}

	td := make([]float64, n*m)
	stride := m + 1
	fd := make([]float64, (n+1)*stride)

	for _, i := range a.keyroots {
		for _, j := range b.keyroots {
			li, lj := a.lml[i], b.lml[j]
			rows, cols := i-li+2, j-lj+2

			fd[0] = 0
			for x := 1; x < rows; x++ {
				fd[x*stride] = fd[(x-1)*stride] + del[li+x-1]
			}
			for y := 1; y < cols; y++ {
				fd[y] = fd[y-1] + ins[lj+y-1]
			}

			for x := 1; x < rows; x++ {
				ai := li + x - 1
				for y := 1; y < cols; y++ {
					bj := lj + y - 1
					best := min(
						fd[(x-1)*stride+y]+del[ai],
						fd[x*stride+y-1]+ins[bj],
					)
					if a.lml[ai] == li && b.lml[bj] == lj {
						best = min(best, fd[(x-1)*stride+y-1]+cost.Rename(a.nodes[ai], b.nodes[bj]))
						td[ai*m+bj] = best
					} else {
						p, q := a.lml[ai]-li, b.lml[bj]-lj
						best = min(best, fd[p*stride+q]+td[ai*m+bj])
					}
					fd[x*stride+y] = best
				}
			}
		}
	}
	return td[n*m-1]
}
