// Package topk selects the k best scored positions from a stream without
// sorting the whole stream.
package topk

import (
	"container/heap"
	"sort"
)

// Candidate is a scored position in an index.
type Candidate struct {
	Pos   int
	Score float64
}

// Better reports whether a ranks ahead of b: higher score first, then the
// earlier position.
func Better(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Pos < b.Pos
}

// candidates implements heap.Interface with the worst kept candidate on top.
type candidates []Candidate

func (h candidates) Len() int           { return len(h) }
func (h candidates) Less(i, j int) bool { return Better(h[j], h[i]) }
func (h candidates) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *candidates) Push(x interface{}) {
	*h = append(*h, x.(Candidate))
}

func (h *candidates) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Selector keeps the k best candidates pushed so far.
type Selector struct {
	k int
	h candidates
}

// New returns a selector bounded to k candidates. k <= 0 keeps nothing.
func New(k int) *Selector {
	if k < 0 {
		k = 0
	}
	return &Selector{k: k, h: make(candidates, 0, k)}
}

// Push offers a candidate to the selector.
func (s *Selector) Push(pos int, score float64) {
	if s.k == 0 {
		return
	}
	c := Candidate{Pos: pos, Score: score}
	if len(s.h) < s.k {
		heap.Push(&s.h, c)
		return
	}
	if Better(c, s.h[0]) {
		s.h[0] = c
		heap.Fix(&s.h, 0)
	}
}

// Len returns the number of kept candidates.
func (s *Selector) Len() int { return len(s.h) }

// Sorted returns the kept candidates best first.
func (s *Selector) Sorted() []Candidate {
	out := append([]Candidate(nil), s.h...)
	sort.Slice(out, func(i, j int) bool { return Better(out[i], out[j]) })
	return out
}
