package ioloop

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultPollTimeoutMsec is the timeout passed to the OS readiness
	// primitive when POLL_TIMEOUT_MSEC is unset or invalid.
	DefaultPollTimeoutMsec = 100

	// DefaultThrottleSleepUsec is the sleep duration when no progress is
	// possible, used when THROTTLE_SLEEP_USEC is unset or invalid.
	DefaultThrottleSleepUsec = 1000

	// DefaultInitialBufferCapacity is the starting size, in bytes, of every
	// endpoint's Buffer before any doubling.
	DefaultInitialBufferCapacity = 4096
)

// Config holds the loop driver's two spec-mandated environment knobs plus
// the (non-spec, ambient) initial buffer size.
type Config struct {
	PollTimeoutMsec       int // passed to unix.Poll; -1 waits indefinitely
	ThrottleSleepUsec     int // sleep when no progress is possible
	InitialBufferCapacity int
}

// ConfigFromEnv reads POLL_TIMEOUT_MSEC and THROTTLE_SLEEP_USEC, falling
// back to defaults on a missing, unparsable, or out-of-range value (a
// warning is logged for the unparsable and out-of-range cases) — mirroring
// the original's readIntFromEnv macro.
func ConfigFromEnv(logger *logrus.Logger) Config {
	cfg := Config{
		PollTimeoutMsec:       DefaultPollTimeoutMsec,
		ThrottleSleepUsec:     DefaultThrottleSleepUsec,
		InitialBufferCapacity: DefaultInitialBufferCapacity,
	}

	if v, ok := readEnvInt(logger, "POLL_TIMEOUT_MSEC", DefaultPollTimeoutMsec, func(n int) bool { return n >= -1 }); ok {
		cfg.PollTimeoutMsec = v
	}
	if v, ok := readEnvInt(logger, "THROTTLE_SLEEP_USEC", DefaultThrottleSleepUsec, func(n int) bool { return n >= 0 }); ok {
		cfg.ThrottleSleepUsec = v
	}

	return cfg
}

func readEnvInt(logger *logrus.Logger, name string, def int, valid func(int) bool) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !valid(n) {
		logger.WithFields(logrus.Fields{"var": name, "value": raw}).
			Warnf("invalid %s, using default %d", name, def)
		return def, false
	}
	return n, true
}

// throttleDuration converts the microsecond knob into a time.Duration for
// time.Sleep.
func (c Config) throttleDuration() time.Duration {
	return time.Duration(c.ThrottleSleepUsec) * time.Microsecond
}
