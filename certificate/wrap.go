package certificate

import (
	"strings"

	"github.com/go-text/typesetting/segmenter"
)

// approximate advance per rune in ems; the notice uses a proportional
// standard font without embedded metrics, matching the fallback used for
// unmeasured fonts elsewhere.
const avgAdvance = 0.5

// wrapLines splits text into lines no wider than maxWidth points at the
// given font size, breaking only at Unicode line-break opportunities.
func wrapLines(text string, maxWidth, fontSize float64) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	perRune := fontSize * avgAdvance
	if perRune <= 0 || maxWidth <= perRune {
		return []string{text}
	}
	maxRunes := int(maxWidth / perRune)

	var seg segmenter.Segmenter
	seg.Init([]rune(text))

	var lines []string
	var current []rune
	iter := seg.LineIterator()
	for iter.Next() {
		piece := iter.Line().Text
		if len(current)+len(piece) > maxRunes && len(current) > 0 {
			lines = append(lines, strings.TrimRight(string(current), " "))
			current = current[:0]
		}
		current = append(current, piece...)
		// A single segment longer than the line goes out as-is rather
		// than being broken mid-word.
	}
	if len(current) > 0 {
		lines = append(lines, strings.TrimRight(string(current), " "))
	}
	return lines
}
