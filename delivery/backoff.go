package delivery

import "time"

// MaxBackoff caps the re-enqueue delay regardless of attempt count
const MaxBackoff = 60 * time.Second

/* Backoff returns the delay before retry cycle k: min(2^k seconds, 60s)
 * Non-decreasing in k and safe for arbitrarily large attempt counts
 */
func Backoff(attemptCount int) time.Duration {
	if attemptCount < 0 {
		attemptCount = 0
	}
	// 2^6 seconds already exceeds the cap
	if attemptCount > 6 {
		return MaxBackoff
	}
	delay := time.Duration(1<<uint(attemptCount)) * time.Second
	if delay > MaxBackoff {
		return MaxBackoff
	}
	return delay
}
