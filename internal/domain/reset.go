package domain

import "time"

// scheduleReset arms a one-shot timer that rotates the encounter after
// resetDelay (default 3s) of wall time, giving trailing damage/status events
// time to land in the current Encounter before it is closed out (§4.3).
//
// pendingResets guards against a second raid-outcome event in the same
// window stacking redundant timers; only the first arms one. It is called
// from Apply, which already holds m.mu.
func (m *Machine) scheduleReset() {
	if m.pendingResets > 0 {
		return
	}
	m.pendingResets++
	delay := m.resetDelay
	if delay <= 0 {
		delay = 3 * time.Second
	}

	time.AfterFunc(delay, m.runReset)
}

func (m *Machine) runReset() {
	m.WithLock(func(d *Data) {
		m.pendingResets--

		enc := d.CurrentEncounter()
		if enc != nil && enc.End.IsZero() {
			enc.End = m.now()
		}

		d.Live.Tracked = make(map[ObjectID]*BossInfo)
		d.Live.RecentlyTracked = nil

		envIdx := d.currentEnvironmentIndex()
		d.Encounters = append(d.Encounters, NewEncounter(envIdx, m.now()))
	})
}
