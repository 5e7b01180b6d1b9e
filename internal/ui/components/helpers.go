// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"
)

// formatTimeRemaining formats a duration as M:SS.
func formatTimeRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSecs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", totalSecs/60, totalSecs%60)
}

// clampWidth keeps w within [lo, hi].
func clampWidth(w, lo, hi int) int {
	if w < lo {
		return lo
	}
	if w > hi {
		return hi
	}
	return w
}
