package offset

import (
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
	"github.com/cpiprint/zap-notify/pkg/security"
)

// Normalize returns the usable offsets in their configured order. Negative
// and out-of-range entries are dropped.
func Normalize(offsets core.Offsets) []int {
	out := make([]int, 0, len(offsets))
	for _, m := range offsets {
		if security.ValidOffset(m) {
			out = append(out, m)
		}
	}
	return out
}

// NotifyInstants places tod on day's calendar date and applies each offset,
// subtracting for before-notifications and adding for after-notifications.
func NotifyInstants(day time.Time, tod core.TimeOfDay, offsets core.Offsets, typ core.NotificationType) []time.Time {
	base := tod.On(day)
	minutes := Normalize(offsets)
	out := make([]time.Time, 0, len(minutes))
	for _, m := range minutes {
		d := time.Duration(m) * time.Minute
		if typ == core.NotifyBefore {
			d = -d
		}
		out = append(out, core.TruncateMinute(base.Add(d)))
	}
	return out
}
