package actions

import (
	"time"

	"code.cloudfoundry.org/actionchain"
	"code.cloudfoundry.org/actionchain/configuration"
	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
)

// WrapDefaults applies the module's standard decorators to an action
// using the configured durations: each execute attempt is bounded by
// ActionTimeout, failing attempts are retried every RetryFrequency
// until RetryTimeout, and every lifecycle phase is timed and logged.
func WrapDefaults(logger lager.Logger, action actionchain.Action, config configuration.Config, timeProvider clock.Clock) actionchain.Action {
	wrapped := NewTimeout(action, time.Duration(config.ActionTimeout), timeProvider)
	wrapped = NewRetry(wrapped, time.Duration(config.RetryFrequency), time.Duration(config.RetryTimeout), timeProvider)
	return NewTimed(logger, wrapped, timeProvider)
}
