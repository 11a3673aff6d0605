// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package editor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TextStats summarizes a piece of text. Averages are over non-empty word
// lists and raw line splits respectively.
type TextStats struct {
	Characters    int
	Words         int
	Lines         int
	Spaces        int
	Sentences     int
	AvgWordLength float64
	AvgLineLength float64
}

// Match is one occurrence of a search term, as rune offsets [Start, End).
type Match struct {
	Start int
	End   int
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Analyze computes basic statistics for text. Character counts are runes,
// not bytes. Sentences are the segments produced by splitting on runs of
// terminal punctuation, so trailing punctuation yields an extra empty
// segment.
func Analyze(text string) TextStats {
	words := strings.Fields(text)
	lines := strings.Split(text, "\n")

	stats := TextStats{
		Characters: utf8.RuneCountInString(text),
		Words:      len(words),
		Lines:      len(lines),
		Spaces:     strings.Count(text, " "),
		Sentences:  len(sentenceSplit.Split(text, -1)),
	}

	if len(words) > 0 {
		total := 0
		for _, w := range words {
			total += utf8.RuneCountInString(w)
		}
		stats.AvgWordLength = float64(total) / float64(len(words))
	}
	if len(lines) > 0 {
		total := 0
		for _, l := range lines {
			total += utf8.RuneCountInString(l)
		}
		stats.AvgLineLength = float64(total) / float64(len(lines))
	}
	return stats
}

// Find returns every occurrence of term in text as rune offsets,
// overlapping matches included. An empty term matches nothing.
func Find(text, term string, caseSensitive bool) []Match {
	if term == "" {
		return nil
	}

	haystack := []rune(text)
	needle := []rune(term)
	if !caseSensitive {
		haystack = lowerRunes(haystack)
		needle = lowerRunes(needle)
	}

	var matches []Match
	for start := 0; start+len(needle) <= len(haystack); start++ {
		if runesHavePrefix(haystack[start:], needle) {
			matches = append(matches, Match{Start: start, End: start + len(needle)})
		}
	}
	return matches
}

// Replace substitutes up to count occurrences of old with new; a negative
// count replaces them all. Case-insensitive replacement keeps the
// replacement text's case as given.
func Replace(text, old, new string, caseSensitive bool, count int) string {
	if old == "" || count == 0 {
		return text
	}
	if caseSensitive {
		return strings.Replace(text, old, new, count)
	}

	haystack := []rune(text)
	lowered := lowerRunes(haystack)
	needle := lowerRunes([]rune(old))

	var b strings.Builder
	replaced := 0
	for i := 0; i < len(haystack); {
		if (count < 0 || replaced < count) && runesHavePrefix(lowered[i:], needle) {
			b.WriteString(new)
			i += len(needle)
			replaced++
			continue
		}
		b.WriteRune(haystack[i])
		i++
	}
	return b.String()
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runesHavePrefix(rs, prefix []rune) bool {
	if len(rs) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if rs[i] != r {
			return false
		}
	}
	return true
}
