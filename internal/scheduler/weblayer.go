package scheduler

import (
	"sacncore/internal/config"
	"sacncore/internal/logger"
)

// webLayer composes active WebOverrides, processed in reverse
// declaration order so the first-declared override wins ties
// (applied last onto the running vector) (§4.3 "Web-override layer").
func webLayer(snap *config.Snapshot, log logger.Logger) (config.ShowIDVector, error) {
	var out config.ShowIDVector
	var firstErr error

	for i := len(snap.WebOverrides) - 1; i >= 0; i-- {
		w := snap.WebOverrides[i]
		if !w.Active || w.OverrideID <= 0 {
			continue
		}
		ov, ok := snap.Overrides[w.OverrideID]
		if !ok {
			if firstErr == nil {
				firstErr = &missingOverrideError{webOverrideID: w.ID, overrideID: w.OverrideID}
			}
			continue
		}
		vec, err := ParseShowIDVector(ov.ShowsData)
		if err != nil {
			if log != nil {
				log.With(logger.Fields{"module": "scheduler"}).Warnf("web override %d: %v", w.ID, err)
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = LayerVector(out, vec)
	}

	return out, firstErr
}

type missingOverrideError struct {
	webOverrideID int
	overrideID    int
}

func (e *missingOverrideError) Error() string {
	return "scheduler: web override references missing override id"
}
