package actions_test

import (
	"errors"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"code.cloudfoundry.org/actionchain"
	"code.cloudfoundry.org/actionchain/actions"
	"code.cloudfoundry.org/actionchain/chainfakes"
	"code.cloudfoundry.org/actionchain/configuration"
	"code.cloudfoundry.org/lager/v3/lagertest"
)

var _ = Describe("WrapDefaults", func() {
	var (
		fakeClock *fakeclock.FakeClock
		trace     *chainfakes.Trace
		inner     *chainfakes.FakeAction

		action actionchain.Action
	)

	BeforeEach(func() {
		fakeClock = fakeclock.NewFakeClock(time.Now())
		trace = chainfakes.NewTrace()
		inner = chainfakes.New("inner", trace)

		action = actions.WrapDefaults(lagertest.NewTestLogger("test"), inner, configuration.DefaultConfig(), fakeClock)
	})

	It("passes a successful execute through, attempting it once", func() {
		Expect(action.Execute()).To(Succeed())
		Expect(trace.Count("execute(inner)")).To(Equal(1))
	})

	It("retries a failing execute at the configured frequency", func() {
		attempts := 0
		inner.WhenExecuting = func() error {
			attempts++
			if attempts < 2 {
				return errors.New("oh no!")
			}
			return nil
		}

		result := make(chan error, 1)
		go func() {
			result <- action.Execute()
		}()

		fakeClock.WaitForWatcherAndIncrement(configuration.DefaultRetryFrequency)

		Eventually(result).Should(Receive(BeNil()))
		Expect(trace.Count("execute(inner)")).To(Equal(2))
	})

	It("delegates the other lifecycle phases unchanged", func() {
		Expect(action.Prepare()).To(Succeed())
		Expect(action.Rescue(errors.New("cause"))).To(Succeed())
		Expect(action.Cleanup()).To(Succeed())

		Expect(trace.Calls()).To(Equal([]string{
			"prepare(inner)", "rescue(inner)", "cleanup(inner)",
		}))
	})
})
