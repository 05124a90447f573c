package supervisor

import (
	"testing"
	"time"

	"sacncore/internal/modstatus"
)

type recordingLED struct {
	colors []byte
}

func (w *recordingLED) WriteColor(c byte) error {
	w.colors = append(w.colors, c)
	return nil
}
func (w *recordingLED) Close() error { return nil }

func (w *recordingLED) last() byte {
	if len(w.colors) == 0 {
		return 0
	}
	return w.colors[len(w.colors)-1]
}

type recordingArmer struct {
	calls []bool
}

func (a *recordingArmer) SetWhiteBackupMode(armed bool) {
	a.calls = append(a.calls, armed)
}

func (a *recordingArmer) lastArmed() bool {
	if len(a.calls) == 0 {
		return false
	}
	return a.calls[len(a.calls)-1]
}

func newTestSupervisor() (*Supervisor, *recordingLED, *recordingArmer) {
	led := &recordingLED{}
	armer := &recordingArmer{}
	s := New(nil, nil, led, armer)
	return s, led, armer
}

func setStatus(s *Supervisor, name string, status modstatus.Status) {
	s.modules[name] = &moduleState{status: status, timestamp: time.Now()}
}

func TestEvaluateRule1SACNErroredWins(t *testing.T) {
	s, led, armer := newTestSupervisor()
	setStatus(s, "sacn", modstatus.StatusErrored)
	setStatus(s, "network", modstatus.StatusOnline)

	s.evaluate()

	if led.last() != byte(LEDSolidRed) {
		t.Errorf("LED = %q, want LEDSolidRed", led.last())
	}
	if s.Overall() != modstatus.StatusErrored {
		t.Errorf("overall = %q, want errored", s.Overall())
	}
	if armer.lastArmed() {
		t.Error("white backup should not be armed for rule 1")
	}
}

func TestEvaluateRule2SchedulerOrPatchErroredArmsWhite(t *testing.T) {
	tests := []struct {
		name   string
		module string
	}{
		{"scheduler errored", "scheduler"},
		{"fixturepatch errored", "fixturepatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, led, armer := newTestSupervisor()
			setStatus(s, tt.module, modstatus.StatusErrored)

			s.evaluate()

			if led.last() != byte(LEDCyan) {
				t.Errorf("LED = %q, want LEDCyan", led.last())
			}
			if s.Overall() != modstatus.StatusOperational {
				t.Errorf("overall = %q, want operational", s.Overall())
			}
			if !armer.lastArmed() {
				t.Error("white backup should be armed when scheduler/fixturepatch is errored")
			}
		})
	}
}

func TestEvaluateRule3Degraded(t *testing.T) {
	tests := []struct {
		name   string
		module string
		status modstatus.Status
	}{
		{"scheduler degraded", "scheduler", modstatus.StatusDegraded},
		{"fixturepatch degraded", "fixturepatch", modstatus.StatusDegraded},
		{"configmanager errored", "configmanager", modstatus.StatusErrored},
		{"supervisor errored", "supervisor", modstatus.StatusErrored},
		{"network errored", "network", modstatus.StatusErrored},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, led, armer := newTestSupervisor()
			setStatus(s, tt.module, tt.status)

			s.evaluate()

			if led.last() != byte(LEDBlue) {
				t.Errorf("LED = %q, want LEDBlue", led.last())
			}
			if s.Overall() != modstatus.StatusDegraded {
				t.Errorf("overall = %q, want degraded", s.Overall())
			}
			if armer.lastArmed() {
				t.Error("white backup should not be armed for rule 3")
			}
		})
	}
}

func TestEvaluateRule4NetworkOnline(t *testing.T) {
	s, led, _ := newTestSupervisor()
	setStatus(s, "network", modstatus.StatusOnline)

	s.evaluate()

	if led.last() != byte(LEDRainbow) {
		t.Errorf("LED = %q, want LEDRainbow", led.last())
	}
	if s.Overall() != modstatus.StatusOnline {
		t.Errorf("overall = %q, want online", s.Overall())
	}
}

func TestEvaluateRule5NetworkOffline(t *testing.T) {
	s, led, _ := newTestSupervisor()
	setStatus(s, "network", modstatus.StatusOffline)

	s.evaluate()

	if led.last() != byte(LEDPurple) {
		t.Errorf("LED = %q, want LEDPurple", led.last())
	}
	if s.Overall() != modstatus.StatusOffline {
		t.Errorf("overall = %q, want offline", s.Overall())
	}
}

func TestEvaluateDefaultWhenNoModulesReported(t *testing.T) {
	s, led, _ := newTestSupervisor()

	s.evaluate()

	if led.last() != byte(LEDRainbow) {
		t.Errorf("LED = %q, want LEDRainbow default", led.last())
	}
	if s.Overall() != modstatus.StatusOperational {
		t.Errorf("overall = %q, want operational default", s.Overall())
	}
}

func TestEvaluateRulePriorityErroredSACNBeatsNetworkOffline(t *testing.T) {
	s, led, _ := newTestSupervisor()
	setStatus(s, "sacn", modstatus.StatusErrored)
	setStatus(s, "network", modstatus.StatusOffline)

	s.evaluate()

	if led.last() != byte(LEDSolidRed) {
		t.Errorf("LED = %q, want LEDSolidRed (rule 1 takes priority)", led.last())
	}
}

func TestEvaluateMarksStaleModuleUnresponsive(t *testing.T) {
	s, _, _ := newTestSupervisor()
	s.modules["fixturepatch"] = &moduleState{
		status:    modstatus.StatusOperational,
		timestamp: time.Now().Add(-(unresponsiveTimeout + time.Second)),
	}

	s.evaluate()

	if got := s.modules["fixturepatch"].status; got != modstatus.StatusUnresponsive {
		t.Errorf("stale module status = %q, want unresponsive", got)
	}
}

func TestEvaluateOneShotModuleExemptFromUnresponsiveTimeout(t *testing.T) {
	s, _, _ := newTestSupervisor()
	s.modules["macros"] = &moduleState{
		status:    modstatus.StatusOperational,
		timestamp: time.Now().Add(-(unresponsiveTimeout + time.Second)),
		oneShot:   true,
	}

	s.evaluate()

	if got := s.modules["macros"].status; got != modstatus.StatusOperational {
		t.Errorf("one-shot module status = %q, want unchanged operational", got)
	}
}

func TestRecordStickyDegradationIgnoresOperationalWithinWindow(t *testing.T) {
	s, _, _ := newTestSupervisor()
	now := time.Now()

	s.record(modstatus.Event{Name: "fixturepatch", Status: modstatus.StatusErrored, Timestamp: now})
	s.record(modstatus.Event{Name: "fixturepatch", Status: modstatus.StatusOperational, Timestamp: now.Add(100 * time.Millisecond)})

	if got := s.modules["fixturepatch"].status; got != modstatus.StatusErrored {
		t.Errorf("status after sticky-window operational = %q, want errored still sticking", got)
	}
}

func TestRecordOperationalAppliesAfterStickyWindowExpires(t *testing.T) {
	s, _, _ := newTestSupervisor()
	now := time.Now()

	s.record(modstatus.Event{Name: "fixturepatch", Status: modstatus.StatusErrored, Timestamp: now})
	s.record(modstatus.Event{Name: "fixturepatch", Status: modstatus.StatusOperational, Timestamp: now.Add(stickyWindow + time.Millisecond)})

	if got := s.modules["fixturepatch"].status; got != modstatus.StatusOperational {
		t.Errorf("status after sticky window expired = %q, want operational", got)
	}
}

func TestRecordNonOperationalAlwaysApplies(t *testing.T) {
	s, _, _ := newTestSupervisor()
	now := time.Now()

	s.record(modstatus.Event{Name: "sacn", Status: modstatus.StatusErrored, Timestamp: now})
	s.record(modstatus.Event{Name: "sacn", Status: modstatus.StatusDegraded, Timestamp: now.Add(10 * time.Millisecond)})

	if got := s.modules["sacn"].status; got != modstatus.StatusDegraded {
		t.Errorf("status = %q, want degraded (sticky window only guards operational)", got)
	}
}
