package actions

import (
	"code.cloudfoundry.org/actionchain"
	"code.cloudfoundry.org/actionchain/runner"
)

type notifyAction struct {
	actionchain.Action

	runner *runner.Runner
	name   string
}

// NewNotify invokes the runner callbacks "before-<name>" and
// "after-<name>" around the wrapped action's Execute, passing the
// step name to the handlers. A handler failure propagates like any
// execution fault, aborting the step.
func NewNotify(action actionchain.Action, target *runner.Runner, name string) actionchain.Action {
	return &notifyAction{
		Action: action,
		runner: target,
		name:   name,
	}
}

func (a *notifyAction) Execute() error {
	err := a.runner.Invoke("before-"+a.name, a.name)
	if err != nil {
		return err
	}

	err = a.Action.Execute()
	if err != nil {
		return err
	}

	return a.runner.Invoke("after-"+a.name, a.name)
}
