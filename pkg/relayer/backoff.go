package relayer

import (
	"math"
	"time"
)

// StatusDelay is base*factor^retryCount, capped at max.
func StatusDelay(base, max time.Duration, factor float64, retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	d := float64(base) * math.Pow(factor, float64(retryCount))
	if d > float64(max) {
		return max
	}
	return time.Duration(d)
}

// RecoveryDelay is base*2^attempt, with attempt the recovery attempt about to
// run (1 for the first recovery).
func RecoveryDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		attempt = 16
	}
	return base * time.Duration(1<<attempt)
}
