package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// CycleDuration returns the wall-clock duration of n cycles of a freqHz
// clock. freqHz==0 is coerced to 1 to avoid division by zero.
func CycleDuration(n uint32, freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Duration(uint64(n) * 1_000_000_000 / uint64(freqHz))
}
