package consensus

import "sync/atomic"

// RecoveryGate is the process-wide voting pause. While set, new votes are
// rejected before any index or store access; withdrawals and timer
// expirations still go through so proposals cannot get stuck.
type RecoveryGate struct {
	paused atomic.Bool
}

func NewRecoveryGate() *RecoveryGate {
	return &RecoveryGate{}
}

func (g *RecoveryGate) Set(inProgress bool) {
	g.paused.Store(inProgress)
}

func (g *RecoveryGate) InProgress() bool {
	return g.paused.Load()
}
