package blobcleanup

import "time"

const (
	initialBackoff = 30 * time.Second
	maxBackoff     = time.Hour
)

// CalculateBackoff returns the delay before the next attempt after the given
// number of failed attempts: 30s doubling up to one hour.
func CalculateBackoff(failedAttempts int) time.Duration {
	delay := initialBackoff
	for i := 1; i < failedAttempts; i++ {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
