package scheduler

import (
	"fmt"

	"sacncore/internal/clock"
	"sacncore/internal/config"
)

// weeklyLayer finds the unique active ScheduleBlock for now and copies
// its EventBlock's show data (§4.3 "Weekly layer").
func weeklyLayer(snap *config.Snapshot, now clock.Now) (config.ShowIDVector, error) {
	for _, b := range snap.ScheduleBlocks {
		if b.Day != now.Weekday {
			continue
		}
		windowStart := b.Start - 1
		windowEnd := windowStart + b.Height
		if now.Hour < windowStart || now.Hour >= windowEnd {
			continue
		}
		eb, ok := snap.EventBlocks[b.EventBlockID]
		if !ok {
			return config.ShowIDVector{}, fmt.Errorf("scheduler: weekly block references unknown event block %d", b.EventBlockID)
		}
		return eb.ShowData, nil
	}
	return config.ShowIDVector{}, nil
}
