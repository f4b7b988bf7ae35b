package report

import (
	"fmt"
	"strings"
)

const barWidth = 20

// ProgressBar renders processed out of total as
// "|█████     |25%| (5 of 20 keys tested)". The bar always shows at least
// one block.
func ProgressBar(processed, total int64) string {
	ratio := 1.0
	if total > 0 {
		ratio = float64(processed) / float64(total)
	}

	filled := int(ratio * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	blocks := filled + 1
	if blocks > barWidth+1 {
		blocks = barWidth + 1
	}

	bar := strings.Repeat("█", blocks) + strings.Repeat(" ", barWidth-filled)
	return fmt.Sprintf("|%s|%d%%| (%d of %d keys tested)", bar, int(ratio*100), processed, total)
}
