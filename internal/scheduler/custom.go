package scheduler

import (
	"sacncore/internal/clock"
	"sacncore/internal/config"
	"sacncore/internal/logger"
)

// customLayer composes every currently-active CustomBlock, later
// blocks in snap.CustomBlocks overriding earlier ones (§4.3 "Custom
// layer"). Legacy-shaped or dateless blocks are rejected (logged,
// skipped) rather than failing the whole layer.
func customLayer(snap *config.Snapshot, now clock.Now, log logger.Logger) config.ShowIDVector {
	var out config.ShowIDVector
	nowMD := now.MonthDay()
	nowMinutes := now.MinuteOfDay()

	for _, b := range snap.CustomBlocks {
		if b.LegacyShape || (b.StartMonth == 0 && b.StartDay == 0 && b.EndMonth == 0 && b.EndDay == 0) {
			if log != nil {
				log.With(logger.Fields{"module": "scheduler"}).Warnf(
					"rejected custom block %q: legacy shape or missing dates", b.Name)
			}
			continue
		}

		startMD := b.StartMonth*100 + b.StartDay
		endMD := b.EndMonth*100 + b.EndDay

		var inDateRange bool
		if endMD >= startMD {
			inDateRange = startMD <= nowMD && nowMD <= endMD
		} else {
			inDateRange = nowMD >= startMD || nowMD <= endMD
		}
		if !inDateRange {
			continue
		}

		startMinutes := b.StartHour*60 + b.StartMinute
		endMinutes := b.EndHour*60 + b.EndMinute
		if !(startMinutes <= nowMinutes && nowMinutes < endMinutes) {
			continue
		}

		out = LayerVector(out, b.ShowData)
	}

	return out
}
