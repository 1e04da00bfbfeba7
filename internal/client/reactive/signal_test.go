package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetNotifiesInRegistrationOrder(t *testing.T) {
	s := New("")
	var seen []string
	s.Subscribe(func(v string) { seen = append(seen, "a:"+v) })
	s.Subscribe(func(v string) { seen = append(seen, "b:"+v) })

	s.Set("x")

	assert.Equal(t, []string{"a:x", "b:x"}, seen)
	assert.Equal(t, "x", s.Get())
}

func TestUpdateAppliesFunctionToCurrentValue(t *testing.T) {
	s := New([]int{1})
	var got []int
	s.Subscribe(func(v []int) { got = v })

	s.Update(func(v []int) []int { return append(v, 2) })

	assert.Equal(t, []int{1, 2}, s.Get())
	assert.Equal(t, []int{1, 2}, got)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := New(0)
	calls := 0
	unsubscribe := s.Subscribe(func(int) { calls++ })

	s.Set(1)
	unsubscribe()
	unsubscribe()
	s.Set(2)

	assert.Equal(t, 1, calls)
}

func TestSubscriberMaySetAnotherSignal(t *testing.T) {
	source := New(0)
	derived := New(0)
	source.Subscribe(func(v int) { derived.Set(v * 10) })

	source.Set(4)

	assert.Equal(t, 40, derived.Get())
}

func TestSubscriberMayUnsubscribeItself(t *testing.T) {
	s := New(0)
	calls := 0
	var unsubscribe func()
	unsubscribe = s.Subscribe(func(int) {
		calls++
		unsubscribe()
	})

	s.Set(1)
	s.Set(2)

	assert.Equal(t, 1, calls)
}
