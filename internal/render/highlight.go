package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Highlight renders name with the runes starting at the byte offsets in
// indices drawn in matchStyle and the rest in baseStyle. Offsets that do not
// start a rune are ignored.
func Highlight(name string, indices []int, baseStyle, matchStyle lipgloss.Style) string {
	matched := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		matched[idx] = struct{}{}
	}
	var b strings.Builder
	var run strings.Builder
	runMatched := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runMatched {
			b.WriteString(matchStyle.Render(run.String()))
		} else {
			b.WriteString(baseStyle.Render(run.String()))
		}
		run.Reset()
	}
	for off, r := range name {
		_, isMatch := matched[off]
		if isMatch != runMatched {
			flush()
			runMatched = isMatch
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}
