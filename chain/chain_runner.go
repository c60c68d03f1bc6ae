package chain

import (
	"os"

	"github.com/tedsuo/ifrit"
)

type chainRunner struct {
	chain *Chain
}

// NewRunner adapts a chain to an ifrit.Runner. The process becomes
// ready as soon as the run starts; a signal cancels the chain as a
// unit (the fault protocol still runs, so every action is rescued and
// cleaned up) and the process exits with the chain's result.
func NewRunner(c *Chain) ifrit.Runner {
	return &chainRunner{chain: c}
}

func (r *chainRunner) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	result := make(chan error, 1)

	go func() {
		result <- r.chain.Perform()
	}()

	close(ready)

	for {
		select {
		case err := <-result:
			return err
		case <-signals:
			r.chain.Cancel()
		}
	}
}
