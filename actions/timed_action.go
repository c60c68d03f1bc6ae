package actions

import (
	"code.cloudfoundry.org/actionchain"
	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
)

type timedAction struct {
	actionchain.Action

	logger lager.Logger
	clock  clock.Clock
}

// NewTimed logs the duration of every lifecycle phase of the wrapped
// action, on success and on failure.
func NewTimed(logger lager.Logger, action actionchain.Action, timeProvider clock.Clock) actionchain.Action {
	return &timedAction{
		Action: action,
		logger: logger.Session("timed-action"),
		clock:  timeProvider,
	}
}

func (a *timedAction) timed(phase string, op func() error) error {
	start := a.clock.Now()
	err := op()
	duration := a.clock.Since(start)

	if err == nil {
		a.logger.Info(phase+"-succeeded", lager.Data{"duration": duration.String()})
	} else {
		a.logger.Info(phase+"-failed", lager.Data{"duration": duration.String(), "error": err.Error()})
	}

	return err
}

func (a *timedAction) Prepare() error {
	return a.timed("prepare", a.Action.Prepare)
}

func (a *timedAction) Execute() error {
	return a.timed("execute", a.Action.Execute)
}

func (a *timedAction) Rescue(cause error) error {
	return a.timed("rescue", func() error { return a.Action.Rescue(cause) })
}

func (a *timedAction) Cleanup() error {
	return a.timed("cleanup", a.Action.Cleanup)
}
