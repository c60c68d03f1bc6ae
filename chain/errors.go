package chain

import "errors"

// ErrCancelled is the fault cause a cancelled run propagates.
var ErrCancelled = errors.New("chain cancelled")

// ErrChainConsumed is returned by Perform on a chain that has already
// been performed. Chains are built once per logical operation and
// discarded after termination.
var ErrChainConsumed = errors.New("chain already performed")
