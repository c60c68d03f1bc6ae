package chainfakes

import (
	"fmt"
	"sync"
)

// Trace records lifecycle calls across a set of fake actions so tests
// can assert ordering between actions, not just per-action counts.
type Trace struct {
	mu    sync.Mutex
	calls []string
}

func NewTrace() *Trace {
	return &Trace{}
}

func (t *Trace) Record(call string) {
	t.mu.Lock()
	t.calls = append(t.calls, call)
	t.mu.Unlock()
}

func (t *Trace) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	calls := make([]string, len(t.calls))
	copy(calls, t.calls)
	return calls
}

func (t *Trace) Count(call string) int {
	count := 0
	for _, recorded := range t.Calls() {
		if recorded == call {
			count++
		}
	}
	return count
}

// FakeAction is a functional fake: set the When* hooks to control the
// outcome of each lifecycle operation. Every call is recorded in the
// shared Trace as "phase(Name)".
type FakeAction struct {
	Name  string
	Trace *Trace

	WhenPreparing  func() error
	WhenExecuting  func() error
	WhenRescuing   func(cause error) error
	WhenCleaningUp func() error

	// causes passed to Rescue, in call order
	RescueCauses []error
}

func New(name string, trace *Trace) *FakeAction {
	return &FakeAction{
		Name:  name,
		Trace: trace,
	}
}

func (fake *FakeAction) record(phase string) {
	if fake.Trace != nil {
		fake.Trace.Record(fmt.Sprintf("%s(%s)", phase, fake.Name))
	}
}

func (fake *FakeAction) Prepare() error {
	fake.record("prepare")
	if fake.WhenPreparing != nil {
		return fake.WhenPreparing()
	}
	return nil
}

func (fake *FakeAction) Execute() error {
	fake.record("execute")
	if fake.WhenExecuting != nil {
		return fake.WhenExecuting()
	}
	return nil
}

func (fake *FakeAction) Rescue(cause error) error {
	fake.record("rescue")
	fake.RescueCauses = append(fake.RescueCauses, cause)
	if fake.WhenRescuing != nil {
		return fake.WhenRescuing(cause)
	}
	return nil
}

func (fake *FakeAction) Cleanup() error {
	fake.record("cleanup")
	if fake.WhenCleaningUp != nil {
		return fake.WhenCleaningUp()
	}
	return nil
}
