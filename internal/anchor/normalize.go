// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package anchor

import (
	"strings"
	"unicode"
)

// arabicFold maps Arabic letter variants that writers use interchangeably
// onto a single form.
var arabicFold = map[rune]rune{
	'أ': 'ا',
	'إ': 'ا',
	'آ': 'ا',
	'ى': 'ي',
	'ة': 'ه',
	'ؤ': 'و',
	'ئ': 'ي',
}

// arabicProclitics are single-letter prefixes (and, so, with, for, like)
// that attach directly to the following word.
var arabicProclitics = map[rune]struct{}{
	'و': {},
	'ف': {},
	'ب': {},
	'ل': {},
	'ك': {},
}

// Normalize lowercases text, folds Arabic letter variants, strips tatweel and
// diacritics, and collapses runs of whitespace to one space.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := false
	for _, r := range text {
		switch {
		case r == 'ـ' || unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsSpace(r):
			if b.Len() > 0 {
				space = true
			}
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		if folded, ok := arabicFold[r]; ok {
			r = folded
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// isWordRune reports whether r is part of a word for boundary checks.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isArabic(r rune) bool {
	return unicode.Is(unicode.Arabic, r)
}

// boundaryBefore reports whether the match starting at start begins a word.
// An Arabic match may be preceded by one proclitic letter.
func boundaryBefore(text []rune, start int) bool {
	if start <= 0 {
		return true
	}
	prev := text[start-1]
	if !isWordRune(prev) {
		return true
	}
	if _, ok := arabicProclitics[prev]; ok && isArabic(text[start]) {
		return start-1 == 0 || !isWordRune(text[start-2])
	}
	return false
}

// boundaryAfter reports whether the match ending at end (exclusive) ends a word.
func boundaryAfter(text []rune, end int) bool {
	return end >= len(text) || !isWordRune(text[end])
}
