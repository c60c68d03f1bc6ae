package dispatcher

import (
	"errors"
	"os"
	"sync"

	"code.cloudfoundry.org/actionchain/chain"
	"code.cloudfoundry.org/actionchain/configuration"
	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"code.cloudfoundry.org/workpool"
	"github.com/tedsuo/ifrit"
	"golang.org/x/time/rate"
)

var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Dispatcher runs chains concurrently with bounded parallelism, one
// worker slot per chain. Actions within each chain stay strictly
// sequential; only whole chains run in parallel, each against its own
// runner.
//
// Run makes the dispatcher an ifrit process: on the first signal it
// stops accepting work, cancels every in-flight chain as a unit, and
// exits once they have drained through their fault protocol.
type Dispatcher struct {
	logger  lager.Logger
	pool    *workpool.WorkPool
	limiter *rate.Limiter
	clock   clock.Clock

	mu       sync.Mutex
	stopped  bool
	inFlight map[*chain.Chain]struct{}
	wg       sync.WaitGroup
}

// New builds a dispatcher with at most maxInFlight chains performing
// at once. A positive startsPerSecond additionally throttles how fast
// new chains may begin; zero disables the throttle.
func New(logger lager.Logger, maxInFlight int, startsPerSecond rate.Limit, timeProvider clock.Clock) (*Dispatcher, error) {
	pool, err := workpool.NewWorkPool(maxInFlight)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if startsPerSecond > 0 {
		limiter = rate.NewLimiter(startsPerSecond, 1)
	}

	return &Dispatcher{
		logger:   logger.Session("dispatcher"),
		pool:     pool,
		limiter:  limiter,
		clock:    timeProvider,
		inFlight: map[*chain.Chain]struct{}{},
	}, nil
}

// NewFromConfig validates the config and builds a dispatcher from its
// limits.
func NewFromConfig(logger lager.Logger, config configuration.Config, timeProvider clock.Clock) (*Dispatcher, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return New(logger, config.MaxInFlightChains, rate.Limit(config.ChainStartsPerSecond), timeProvider)
}

var _ ifrit.Runner = &Dispatcher{}

// Dispatch submits a chain for performance. The returned channel
// receives the chain's result exactly once. Dispatch fails with
// ErrDispatcherStopped once draining has begun.
func (d *Dispatcher) Dispatch(c *chain.Chain) (<-chan error, error) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil, ErrDispatcherStopped
	}
	d.inFlight[c] = struct{}{}
	d.wg.Add(1)
	d.mu.Unlock()

	result := make(chan error, 1)

	d.pool.Submit(func() {
		defer d.wg.Done()

		if d.limiter != nil {
			delay := d.limiter.Reserve().Delay()
			if delay > 0 {
				d.clock.Sleep(delay)
			}
		}

		err := c.Perform()

		d.mu.Lock()
		delete(d.inFlight, c)
		d.mu.Unlock()

		if err != nil {
			d.logger.Error("chain-faulted", err, lager.Data{"run-id": c.RunID()})
		}

		result <- err
	})

	return result, nil
}

func (d *Dispatcher) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	close(ready)

	<-signals
	d.logger.Info("draining")

	d.mu.Lock()
	d.stopped = true
	for c := range d.inFlight {
		c.Cancel()
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.pool.Stop()

	d.logger.Info("drained")
	return nil
}
