package runner

import (
	"code.cloudfoundry.org/actionchain"
	"code.cloudfoundry.org/eventhub"
	"code.cloudfoundry.org/lager/v3"
)

const SubscriberBuffer = 1024

// Runner is the shared stateful target a chain of actions operates on
// and communicates through. It owns the mutable action sequence, the
// capability registry actions use to publish state for later actions,
// the callback registry, and the lifecycle event hub.
//
// A Runner is scoped to a single chain run. The action sequence,
// capabilities and callbacks are deliberately unsynchronized: the
// chain drives every lifecycle operation sequentially on one
// goroutine, so ownership discipline replaces locking. The event hub
// locks internally and may be consumed from other goroutines.
type Runner struct {
	logger lager.Logger

	actions      []actionchain.Action
	capabilities map[string]interface{}
	callbacks    *CallbackRegistry
	hub          eventhub.Hub
}

func New(logger lager.Logger) *Runner {
	return NewWithBuffer(logger, SubscriberBuffer)
}

// NewWithBuffer sizes the event hub's per-subscriber buffer, normally
// from configuration.Config.SubscriberBuffer.
func NewWithBuffer(logger lager.Logger, subscriberBuffer int) *Runner {
	return &Runner{
		logger:       logger.Session("runner"),
		capabilities: map[string]interface{}{},
		callbacks:    NewCallbackRegistry(),
		hub:          eventhub.NewNonBlocking(subscriberBuffer),
	}
}

// Enqueue appends actions to the tail of the sequence. During the
// setup phase an action's Prepare may call this to splice follow-up
// actions into the not-yet-prepared tail.
func (r *Runner) Enqueue(actions ...actionchain.Action) {
	r.actions = append(r.actions, actions...)
}

func (r *Runner) Len() int {
	return len(r.actions)
}

func (r *Runner) ActionAt(i int) actionchain.Action {
	return r.actions[i]
}

// Actions returns a snapshot copy of the sequence. The chain freezes
// the execution order by taking one at the end of the setup phase.
func (r *Runner) Actions() []actionchain.Action {
	snapshot := make([]actionchain.Action, len(r.actions))
	copy(snapshot, r.actions)
	return snapshot
}

// Install publishes a capability under a key for later actions to
// look up. Installing a key twice replaces the earlier capability.
func (r *Runner) Install(key string, capability interface{}) {
	r.logger.Debug("install-capability", lager.Data{"key": key})
	r.capabilities[key] = capability
}

func (r *Runner) Lookup(key string) (interface{}, bool) {
	capability, found := r.capabilities[key]
	return capability, found
}

func (r *Runner) Register(name string, handler CallbackFunc) {
	r.callbacks.Register(name, handler)
}

func (r *Runner) Invoke(name string, args ...interface{}) error {
	return r.callbacks.Invoke(name, args...)
}

// Emit publishes a lifecycle event to the hub. Slow subscribers are
// dropped by the hub rather than blocking the chain.
func (r *Runner) Emit(event actionchain.Event) {
	r.hub.Emit(event)
}

func (r *Runner) Subscribe() (eventhub.Source, error) {
	return r.hub.Subscribe()
}

func (r *Runner) Close() error {
	return r.hub.Close()
}
