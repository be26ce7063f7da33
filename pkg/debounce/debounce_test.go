package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_OnlyLastCallFires(t *testing.T) {
	d := New(30 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Do(func() {
			fired.Add(1)
			last.Store(n)
		})
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return fired.Load() > 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestDo_SeparateBurstsBothFire(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	d.Do(func() { fired.Add(1) })
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	d.Do(func() { fired.Add(1) })
	require.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestStop_CancelsPendingCall(t *testing.T) {
	d := New(30 * time.Millisecond)

	var fired atomic.Int32
	d.Do(func() { fired.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestStop_WithoutPendingCall(t *testing.T) {
	d := New(10 * time.Millisecond)
	d.Stop()
	d.Stop()
}

func TestNew_NonPositiveDelayFallsBack(t *testing.T) {
	assert.Equal(t, DefaultDelay, New(0).delay)
	assert.Equal(t, DefaultDelay, New(-time.Second).delay)
	assert.Equal(t, time.Second, New(time.Second).delay)
}
