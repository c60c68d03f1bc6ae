package actions

import (
	"time"

	"code.cloudfoundry.org/actionchain"
	"code.cloudfoundry.org/clock"
)

type retryAction struct {
	actionchain.Action

	frequency time.Duration
	timeout   time.Duration
	clock     clock.Clock
}

// NewRetry re-runs a failing Execute every frequency until it succeeds
// or timeout has elapsed since the first attempt, at which point the
// last failure is returned. A timeout of zero retries forever.
func NewRetry(action actionchain.Action, frequency, timeout time.Duration, timeProvider clock.Clock) actionchain.Action {
	return &retryAction{
		Action:    action,
		frequency: frequency,
		timeout:   timeout,
		clock:     timeProvider,
	}
}

func (a *retryAction) Execute() error {
	startTime := a.clock.Now()

	var err error
	timer := a.clock.NewTimer(a.frequency)
	defer timer.Stop()

	for {
		err = a.Action.Execute()
		if err == nil {
			return nil
		}

		if a.timeout > 0 && a.clock.Now().After(startTime.Add(a.timeout)) {
			return err
		}

		<-timer.C()
		timer.Reset(a.frequency)
	}
}
