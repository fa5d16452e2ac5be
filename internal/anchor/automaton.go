// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package anchor

// automaton is an Aho-Corasick multi-pattern matcher over runes. All terms
// are matched in a single pass over the text in O(n + m + z) time, where n is
// the text length, m the total pattern length and z the number of hits.
//
// The automaton is immutable once built and safe for concurrent scans.
type automaton struct {
	root    *acNode
	terms   []string
	lengths []int
}

type acNode struct {
	next  map[rune]*acNode
	fail  *acNode
	out   []int // indices of terms ending at this node
	depth int
}

// hit is one raw match; start and end are rune offsets, end exclusive.
type hit struct {
	term  int
	start int
	end   int
}

func newACNode(depth int) *acNode {
	return &acNode{next: make(map[rune]*acNode), depth: depth}
}

// newAutomaton builds the trie and failure links for terms. Terms must
// already be normalized.
func newAutomaton(terms []string) *automaton {
	a := &automaton{
		root:    newACNode(0),
		terms:   terms,
		lengths: make([]int, len(terms)),
	}
	for i, t := range terms {
		runes := []rune(t)
		a.lengths[i] = len(runes)
		a.insert(i, runes)
	}
	a.buildFailureLinks()
	return a
}

func (a *automaton) insert(idx int, term []rune) {
	if len(term) == 0 {
		return
	}
	n := a.root
	for _, r := range term {
		child, ok := n.next[r]
		if !ok {
			child = newACNode(n.depth + 1)
			n.next[r] = child
		}
		n = child
	}
	n.out = append(n.out, idx)
}

// buildFailureLinks links every node to its longest proper suffix that is
// also a trie path (BFS, so shallower nodes are always linked first).
func (a *automaton) buildFailureLinks() {
	queue := make([]*acNode, 0, len(a.root.next))
	for _, child := range a.root.next {
		child.fail = a.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for r, child := range cur.next {
			queue = append(queue, child)

			f := cur.fail
			for f != nil && f.next[r] == nil {
				f = f.fail
			}
			if f == nil {
				child.fail = a.root
				continue
			}
			child.fail = f.next[r]
			child.out = append(child.out, child.fail.out...)
		}
	}
}

// scan returns every occurrence of every term in text.
func (a *automaton) scan(text []rune) []hit {
	var hits []hit
	n := a.root
	for i, r := range text {
		for n != a.root && n.next[r] == nil {
			n = n.fail
		}
		if next, ok := n.next[r]; ok {
			n = next
		}
		for _, idx := range n.out {
			hits = append(hits, hit{term: idx, start: i - a.lengths[idx] + 1, end: i + 1})
		}
	}
	return hits
}
