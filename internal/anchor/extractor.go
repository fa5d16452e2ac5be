// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

// Package anchor extracts classified anchor terms from free text.
//
// Anchors are the named entities and keyword phrases used both to resolve a
// signal to a taxonomy topic and to decide whether two signals describe the
// same story. Each anchor carries a class; only person, topic-specific and
// event anchors are high-value for story matching.
//
// Example:
//
//	ex := anchor.New(nil)
//	anchors := ex.Extract("Trump announces new tariffs on China")
//	// [{china country} {tariffs event} {trump person}]
package anchor

import (
	"sort"

	"github.com/tomtom215/storyline/internal/models"
)

// Term is a lexicon entry.
type Term struct {
	Text  string
	Class models.AnchorClass
}

// Extractor finds lexicon terms in text on word boundaries. It is immutable
// and safe for concurrent use; build a new one to change the lexicon.
type Extractor struct {
	matcher *automaton
	classes map[string]models.AnchorClass
}

// New builds an extractor from the built-in lexicon plus extra terms. An
// extra term replaces the built-in class of the same term, so a taxonomy can
// demote a built-in person or event to generic. Among extras the most
// specific class wins.
func New(extra []Term) *Extractor {
	classes := mostSpecific(DefaultTerms())
	for term, class := range mostSpecific(extra) {
		classes[term] = class
	}
	return build(classes)
}

// NewWithTerms builds an extractor from exactly the given terms. When a term
// appears more than once the most specific class wins.
func NewWithTerms(terms []Term) *Extractor {
	return build(mostSpecific(terms))
}

func mostSpecific(terms []Term) map[string]models.AnchorClass {
	classes := make(map[string]models.AnchorClass, len(terms))
	for _, t := range terms {
		norm := Normalize(t.Text)
		if norm == "" {
			continue
		}
		if existing, ok := classes[norm]; ok && classRank(existing) >= classRank(t.Class) {
			continue
		}
		classes[norm] = t.Class
	}
	return classes
}

func build(classes map[string]models.AnchorClass) *Extractor {
	keys := make([]string, 0, len(classes))
	for k := range classes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &Extractor{
		matcher: newAutomaton(keys),
		classes: classes,
	}
}

// Extract returns the distinct anchors found in text, sorted by term.
func (e *Extractor) Extract(text string) []models.Anchor {
	runes := []rune(Normalize(text))
	if len(runes) == 0 {
		return nil
	}

	found := make(map[string]struct{})
	for _, h := range e.matcher.scan(runes) {
		if !boundaryBefore(runes, h.start) || !boundaryAfter(runes, h.end) {
			continue
		}
		found[e.matcher.terms[h.term]] = struct{}{}
	}

	anchors := make([]models.Anchor, 0, len(found))
	for term := range found {
		anchors = append(anchors, models.Anchor{Term: term, Class: e.classes[term]})
	}
	sort.Slice(anchors, func(i, j int) bool {
		return anchors[i].Term < anchors[j].Term
	})
	return anchors
}

// Class returns the class registered for a term, if any.
func (e *Extractor) Class(term string) (models.AnchorClass, bool) {
	c, ok := e.classes[Normalize(term)]
	return c, ok
}

// Len returns the number of distinct terms in the lexicon.
func (e *Extractor) Len() int {
	return len(e.classes)
}

func classRank(c models.AnchorClass) int {
	switch c {
	case models.AnchorMechanism:
		return 0
	case models.AnchorGeneric:
		return 1
	case models.AnchorCountry:
		return 2
	case models.AnchorEvent:
		return 3
	case models.AnchorPerson:
		return 4
	case models.AnchorTopicSpecific:
		return 5
	default:
		return -1
	}
}
