package debounce

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock fires scheduled functions when Advance passes their deadline.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock to now+d, firing due timers in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at < c.timers[j].at })
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= target {
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		c.mu.Lock()
		c.now = t.at
		skip := t.stopped
		t.fired = true
		c.mu.Unlock()
		if !skip {
			t.f()
		}
	}
	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type firing struct {
	at  time.Duration
	arg string
}

func TestTrailingCallWithLastArgs(t *testing.T) {
	clock := &fakeClock{}
	var fired []firing
	d := newWithClock(300*time.Millisecond, func(s string) {
		fired = append(fired, firing{at: clock.Now(), arg: s})
	}, clock.afterFunc)

	d.Call("k")
	clock.Advance(50 * time.Millisecond)
	d.Call("ka")
	clock.Advance(50 * time.Millisecond)
	d.Call("kal")

	clock.Advance(299 * time.Millisecond)
	assert.Empty(t, fired, "nothing fires before the input is quiet")

	clock.Advance(time.Second)
	require.Len(t, fired, 1)
	assert.Equal(t, 400*time.Millisecond, fired[0].at)
	assert.Equal(t, "kal", fired[0].arg)
}

func TestCallNeverRunsSynchronously(t *testing.T) {
	clock := &fakeClock{}
	calls := 0
	d := newWithClock(0, func(int) { calls++ }, clock.afterFunc)

	d.Call(1)
	assert.Zero(t, calls)
	assert.True(t, d.Pending())

	clock.Advance(0)
	assert.Equal(t, 1, calls)
	assert.False(t, d.Pending())
}

func TestStopCancelsPendingCall(t *testing.T) {
	clock := &fakeClock{}
	calls := 0
	d := newWithClock(100*time.Millisecond, func(int) { calls++ }, clock.afterFunc)

	d.Call(1)
	d.Stop()
	clock.Advance(time.Second)
	assert.Zero(t, calls)

	d.Call(2)
	clock.Advance(time.Second)
	assert.Zero(t, calls, "a stopped wrapper ignores new calls")
	assert.False(t, d.Flush())
}

func TestCancelKeepsWrapperUsable(t *testing.T) {
	clock := &fakeClock{}
	var got []int
	d := newWithClock(100*time.Millisecond, func(n int) { got = append(got, n) }, clock.afterFunc)

	d.Call(1)
	d.Cancel()
	clock.Advance(time.Second)
	assert.Empty(t, got)

	d.Call(2)
	clock.Advance(time.Second)
	assert.Equal(t, []int{2}, got)
}

func TestFlush(t *testing.T) {
	clock := &fakeClock{}
	var got []string
	d := newWithClock(time.Second, func(s string) { got = append(got, s) }, clock.afterFunc)

	assert.False(t, d.Flush())
	d.Call("roshar")
	assert.True(t, d.Flush())
	assert.Equal(t, []string{"roshar"}, got)

	clock.Advance(2 * time.Second)
	assert.Equal(t, []string{"roshar"}, got, "the flushed timer does not fire again")
}

func TestInstancesAreIndependent(t *testing.T) {
	clock := &fakeClock{}
	var a, b []int
	da := newWithClock(100*time.Millisecond, func(n int) { a = append(a, n) }, clock.afterFunc)
	db := newWithClock(100*time.Millisecond, func(n int) { b = append(b, n) }, clock.afterFunc)

	da.Call(1)
	db.Call(2)
	da.Call(3)
	clock.Advance(time.Second)

	assert.Equal(t, []int{3}, a)
	assert.Equal(t, []int{2}, b)
}

func TestRealTimer(t *testing.T) {
	done := make(chan string, 1)
	d := New(20*time.Millisecond, func(s string) { done <- s })

	for _, s := range []string{"s", "sc", "sca"} {
		d.Call(s)
	}
	select {
	case got := <-done:
		assert.Equal(t, "sca", got)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}
	d.Stop()

	select {
	case extra := <-done:
		t.Fatalf("unexpected second call with %q", extra)
	case <-time.After(60 * time.Millisecond):
	}
}
