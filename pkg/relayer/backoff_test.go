package relayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusDelay(t *testing.T) {
	base, capped := 10*time.Second, 300*time.Second

	assert.Equal(t, 10000*time.Millisecond, StatusDelay(base, capped, 1.5, 0))
	assert.Equal(t, 33750*time.Millisecond, StatusDelay(base, capped, 1.5, 3))
	// 10s * 1.5^9 is past the cap
	assert.Equal(t, 300000*time.Millisecond, StatusDelay(base, capped, 1.5, 9))
	assert.Equal(t, capped, StatusDelay(base, capped, 1.5, 50))

	prev := time.Duration(0)
	for n := 0; n < 20; n++ {
		d := StatusDelay(base, capped, 1.5, n)
		if prev < capped {
			assert.Greater(t, d, prev, "retry %d", n)
		} else {
			assert.Equal(t, capped, d)
		}
		prev = d
	}
}

func TestRecoveryDelay(t *testing.T) {
	assert.Equal(t, 2*time.Minute, RecoveryDelay(time.Minute, 1))
	assert.Equal(t, 4*time.Minute, RecoveryDelay(time.Minute, 2))
	assert.Equal(t, 8*time.Minute, RecoveryDelay(time.Minute, 3))
	assert.Equal(t, 2*time.Minute, RecoveryDelay(time.Minute, 0))
}
