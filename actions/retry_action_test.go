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
)

var _ = Describe("RetryAction", func() {
	var (
		fakeClock *fakeclock.FakeClock
		trace     *chainfakes.Trace
		inner     *chainfakes.FakeAction
		disaster  error

		action actionchain.Action
	)

	BeforeEach(func() {
		fakeClock = fakeclock.NewFakeClock(time.Now())
		trace = chainfakes.NewTrace()
		inner = chainfakes.New("inner", trace)
		disaster = errors.New("oh no!")

		action = actions.NewRetry(inner, time.Second, 10*time.Second, fakeClock)
	})

	Context("when the wrapped execute succeeds immediately", func() {
		It("executes exactly once", func() {
			Expect(action.Execute()).To(Succeed())
			Expect(trace.Count("execute(inner)")).To(Equal(1))
		})
	})

	Context("when the wrapped execute fails a few times first", func() {
		BeforeEach(func() {
			attempts := 0
			inner.WhenExecuting = func() error {
				attempts++
				if attempts < 3 {
					return disaster
				}
				return nil
			}
		})

		It("retries every frequency until it succeeds", func() {
			result := make(chan error, 1)
			go func() {
				result <- action.Execute()
			}()

			fakeClock.WaitForWatcherAndIncrement(time.Second)
			fakeClock.WaitForWatcherAndIncrement(time.Second)

			Eventually(result).Should(Receive(BeNil()))
			Expect(trace.Count("execute(inner)")).To(Equal(3))
		})
	})

	Context("when the wrapped execute never succeeds", func() {
		BeforeEach(func() {
			inner.WhenExecuting = func() error { return disaster }
		})

		It("gives up after the timeout and returns the last failure", func() {
			result := make(chan error, 1)
			go func() {
				result <- action.Execute()
			}()

			for i := 0; i < 11; i++ {
				fakeClock.WaitForWatcherAndIncrement(time.Second)
			}

			var err error
			Eventually(result).Should(Receive(&err))
			Expect(err).To(BeIdenticalTo(disaster))
		})
	})

	It("delegates the other lifecycle phases unchanged", func() {
		Expect(action.Prepare()).To(Succeed())
		Expect(action.Rescue(disaster)).To(Succeed())
		Expect(action.Cleanup()).To(Succeed())

		Expect(trace.Calls()).To(Equal([]string{
			"prepare(inner)", "rescue(inner)", "cleanup(inner)",
		}))
	})
})
