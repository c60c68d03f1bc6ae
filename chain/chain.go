package chain

import (
	"fmt"
	"sync"

	"code.cloudfoundry.org/actionchain"
	"code.cloudfoundry.org/actionchain/runner"
	"code.cloudfoundry.org/lager/v3"
	multierror "github.com/hashicorp/go-multierror"
	uuid "github.com/nu7hatch/gouuid"
)

// Chain drives an ordered sequence of actions through the lifecycle
// protocol: a setup phase in which the sequence may still grow, a
// frozen execution phase, and a termination phase that guarantees
// Cleanup on every action no matter how the run ended.
//
// A chain performs at most once and is discarded afterwards. All
// lifecycle operations run sequentially on the goroutine that called
// Perform; Cancel and State are safe from other goroutines.
type Chain struct {
	logger lager.Logger
	runner *runner.Runner
	runID  string

	cancel     chan struct{}
	cancelOnce sync.Once

	mu        sync.Mutex
	state     actionchain.State
	performed bool
	secondary *multierror.Error
}

func New(logger lager.Logger, target *runner.Runner) *Chain {
	return &Chain{
		logger: logger,
		runner: target,
		runID:  newRunID(logger),
		cancel: make(chan struct{}),
	}
}

func (c *Chain) RunID() string {
	return c.runID
}

func (c *Chain) State() actionchain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Secondary returns the failures collected during the rescue and
// cleanup passes, aggregated. These never replace the run's primary
// result.
func (c *Chain) Secondary() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.secondary.ErrorOrNil()
}

// Cancel requests that the run stop. The chain checks between
// actions, never mid-action: an in-flight lifecycle operation always
// completes. A cancel observed during execution triggers the ordinary
// fault protocol with ErrCancelled as the cause.
func (c *Chain) Cancel() {
	c.cancelOnce.Do(func() {
		close(c.cancel)
	})
}

// Perform runs the chain to completion and returns the triggering
// fault, ErrCancelled, or nil. On a fault the returned error is the
// exact value the failing action returned; secondary failures are
// available via Secondary.
func (c *Chain) Perform() error {
	if !c.begin() {
		return ErrChainConsumed
	}

	logger := c.logger.Session("chain", lager.Data{"run-id": c.runID})
	logger.Info("starting", lager.Data{"actions": c.runner.Len()})

	c.transition(logger, actionchain.StateBuilding)

	// Worklist drain: Prepare may enqueue actions on the runner, which
	// land at the tail and are prepared after the current tail.
	for i := 0; i < c.runner.Len(); i++ {
		if c.cancelled() {
			return c.setupFault(logger, ErrCancelled)
		}

		action := c.runner.ActionAt(i)
		c.emitPhase(i, action, actionchain.PhasePrepare)

		err := action.Prepare()
		if err != nil {
			logger.Error("prepare-failed", err, lager.Data{"index": i, "action": actionName(action)})
			return c.setupFault(logger, err)
		}
	}

	// The sequence is frozen the instant execution begins; actions
	// enqueued after this point have no effect on this run.
	frozen := c.runner.Actions()

	c.transition(logger, actionchain.StateRunning)

	for i, action := range frozen {
		if c.cancelled() {
			return c.executionFault(logger, frozen, ErrCancelled)
		}

		c.emitPhase(i, action, actionchain.PhaseExecute)

		err := action.Execute()
		if err != nil {
			logger.Error("execute-failed", err, lager.Data{"index": i, "action": actionName(action)})
			return c.executionFault(logger, frozen, err)
		}
	}

	c.transition(logger, actionchain.StateTerminating)
	c.cleanupPass(logger, frozen)
	c.transition(logger, actionchain.StateDone)

	logger.Info("done")
	return nil
}

// setupFault handles a fault raised during the setup phase: no action
// has executed, so the rescue pass is skipped, but every action
// constructed so far still gets its Cleanup.
func (c *Chain) setupFault(logger lager.Logger, cause error) error {
	c.transition(logger, actionchain.StateFaulting)
	c.cleanupPass(logger, c.runner.Actions())
	c.transition(logger, actionchain.StateFaulted)
	c.emitFault(cause)
	return cause
}

// executionFault runs the chain-wide fault protocol: Rescue on every
// action in the frozen sequence, whether or not its Execute ran, then
// Cleanup on every action. Secondary failures are collected, never
// raised in place of the cause.
func (c *Chain) executionFault(logger lager.Logger, frozen []actionchain.Action, cause error) error {
	c.transition(logger, actionchain.StateFaulting)

	for i, action := range frozen {
		c.emitPhase(i, action, actionchain.PhaseRescue)

		err := c.rescueAction(action, cause)
		if err != nil {
			logger.Error("rescue-failed", err, lager.Data{"index": i, "action": actionName(action)})
			c.addSecondary(err)
		}
	}

	c.cleanupPass(logger, frozen)
	c.transition(logger, actionchain.StateFaulted)
	c.emitFault(cause)
	return cause
}

func (c *Chain) cleanupPass(logger lager.Logger, actions []actionchain.Action) {
	for i, action := range actions {
		c.emitPhase(i, action, actionchain.PhaseCleanup)

		err := c.cleanupAction(action)
		if err != nil {
			logger.Error("cleanup-failed", err, lager.Data{"index": i, "action": actionName(action)})
			c.addSecondary(err)
		}
	}
}

// rescueAction and cleanupAction convert panics into secondary
// failures: the rollback path must survive a misbehaving action so
// every remaining action still gets its turn.

func (c *Chain) rescueAction(action actionchain.Action, cause error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("rescue panicked: %v", recovered)
		}
	}()
	return action.Rescue(cause)
}

func (c *Chain) cleanupAction(action actionchain.Action) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("cleanup panicked: %v", recovered)
		}
	}()
	return action.Cleanup()
}

func (c *Chain) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.performed {
		return false
	}
	c.performed = true
	return true
}

// Cancelled reports whether Cancel has been requested. The run may
// still be finishing its in-flight action.
func (c *Chain) Cancelled() bool {
	return c.cancelled()
}

func (c *Chain) cancelled() bool {
	select {
	case <-c.cancel:
		return true
	default:
		return false
	}
}

func (c *Chain) transition(logger lager.Logger, to actionchain.State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	logger.Debug("transition", lager.Data{"from": from, "to": to})
	c.runner.Emit(actionchain.NewChainStateEvent(c.runID, from, to))
}

func (c *Chain) emitPhase(index int, action actionchain.Action, phase actionchain.Phase) {
	c.runner.Emit(actionchain.NewActionPhaseEvent(c.runID, index, actionName(action), phase))
}

func (c *Chain) emitFault(cause error) {
	c.mu.Lock()
	var secondary []error
	if c.secondary != nil {
		secondary = c.secondary.Errors
	}
	c.mu.Unlock()

	c.runner.Emit(actionchain.NewChainFaultEvent(c.runID, cause, secondary))
}

func (c *Chain) addSecondary(err error) {
	c.mu.Lock()
	c.secondary = multierror.Append(c.secondary, err)
	c.mu.Unlock()
}

func actionName(action actionchain.Action) string {
	return fmt.Sprintf("%T", action)
}

func newRunID(logger lager.Logger) string {
	guid, err := uuid.NewV4()
	if err != nil {
		logger.Error("failed-to-generate-run-id", err)
		return "unknown"
	}
	return guid.String()
}
