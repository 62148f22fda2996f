package verification

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// StartSweeper runs a periodic pass removing stale records. It returns a
// stop func which is safe to call more than once; the router wires it into
// process shutdown.
//
// Entries past their expiry but still under an active cooldown survive
// the sweep, otherwise the timer would quietly lift a 24h lockout after
// ten minutes
func (l *Ledger) StartSweeper(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	zap.L().Debug("Verification sweeper attached", zap.Duration("tick_every", interval))

	go func() {
		for {
			select {
			case <-done:
				ticker.Stop()
				return
			case <-ticker.C:
				l.sweep()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (l *Ledger) sweep() {
	var removed int

	l.store.ForEach(func(identity string, _ *Record) bool {
		// The snapshot pass races with live issue/verify calls, so
		// re-check under the identity lock before touching anything
		unlock := l.locks.Lock(identity)
		defer unlock()

		rec, ok := l.store.Get(identity)
		if ok && rec.purgeable(l.now()) {
			l.store.Delete(identity)
			removed++
		}

		return true
	})

	if removed > 0 {
		zap.L().Debug("Swept expired verification records", zap.Int("removed", removed))
	}
}
