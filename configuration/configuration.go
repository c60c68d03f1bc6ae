package configuration

import (
	"errors"
	"os"
	"time"

	"code.cloudfoundry.org/durationjson"
	"github.com/ghodss/yaml"
	"github.com/hashicorp/errwrap"
)

const (
	DefaultMaxInFlightChains = 4
	DefaultChainStartsPerSec = 0 // unthrottled
	DefaultActionTimeout     = 10 * time.Minute
	DefaultRetryFrequency    = 5 * time.Second
	DefaultRetryTimeout      = 2 * time.Minute
	DefaultSubscriberBuffer  = 1024
)

var (
	ErrMaxInFlightInvalid      = errors.New("max_in_flight_chains must be positive")
	ErrStartsPerSecondInvalid  = errors.New("chain_starts_per_second must not be negative")
	ErrActionTimeoutInvalid    = errors.New("action_timeout must not be negative")
	ErrRetryFrequencyInvalid   = errors.New("retry_frequency must be positive")
	ErrSubscriberBufferInvalid = errors.New("subscriber_buffer must be positive")
)

// Config carries the module's ambient settings: dispatcher limits and
// the default durations the action decorators are built with.
// Durations are accepted in human form ("30s", "5m").
type Config struct {
	MaxInFlightChains    int                   `json:"max_in_flight_chains,omitempty"`
	ChainStartsPerSecond float64               `json:"chain_starts_per_second,omitempty"`
	ActionTimeout        durationjson.Duration `json:"action_timeout,omitempty"`
	RetryFrequency       durationjson.Duration `json:"retry_frequency,omitempty"`
	RetryTimeout         durationjson.Duration `json:"retry_timeout,omitempty"`
	SubscriberBuffer     int                   `json:"subscriber_buffer,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		MaxInFlightChains:    DefaultMaxInFlightChains,
		ChainStartsPerSecond: DefaultChainStartsPerSec,
		ActionTimeout:        durationjson.Duration(DefaultActionTimeout),
		RetryFrequency:       durationjson.Duration(DefaultRetryFrequency),
		RetryTimeout:         durationjson.Duration(DefaultRetryTimeout),
		SubscriberBuffer:     DefaultSubscriberBuffer,
	}
}

// Load reads a YAML config file over the defaults: absent keys keep
// their default values.
func Load(path string) (Config, error) {
	config := DefaultConfig()

	payload, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errwrap.Wrapf("failed to read config: {{err}}", err)
	}

	err = yaml.Unmarshal(payload, &config)
	if err != nil {
		return Config{}, errwrap.Wrapf("failed to parse config: {{err}}", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) Validate() error {
	if c.MaxInFlightChains <= 0 {
		return ErrMaxInFlightInvalid
	}
	if c.ChainStartsPerSecond < 0 {
		return ErrStartsPerSecondInvalid
	}
	if time.Duration(c.ActionTimeout) < 0 {
		return ErrActionTimeoutInvalid
	}
	if time.Duration(c.RetryFrequency) <= 0 {
		return ErrRetryFrequencyInvalid
	}
	if c.SubscriberBuffer <= 0 {
		return ErrSubscriberBufferInvalid
	}
	return nil
}
