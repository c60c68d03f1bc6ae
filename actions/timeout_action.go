package actions

import (
	"fmt"
	"time"

	"code.cloudfoundry.org/actionchain"
	"code.cloudfoundry.org/clock"
)

type TimeoutError struct {
	Duration time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("execute exceeded %s", e.Duration)
}

type timeoutAction struct {
	actionchain.Action

	timeout time.Duration
	clock   clock.Clock
}

// NewTimeout bounds the wrapped action's Execute with a timer. On
// expiry Execute returns a TimeoutError; the wrapped call is left to
// finish in the background, since the action contract has no way to
// interrupt it. Prepare, Rescue and Cleanup delegate unchanged.
func NewTimeout(action actionchain.Action, timeout time.Duration, timeProvider clock.Clock) actionchain.Action {
	return &timeoutAction{
		Action:  action,
		timeout: timeout,
		clock:   timeProvider,
	}
}

func (a *timeoutAction) Execute() error {
	result := make(chan error, 1)

	go func() {
		result <- a.Action.Execute()
	}()

	timer := a.clock.NewTimer(a.timeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-timer.C():
		return TimeoutError{Duration: a.timeout}
	}
}
