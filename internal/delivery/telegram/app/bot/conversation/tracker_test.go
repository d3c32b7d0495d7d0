package conversation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerDefaultsToIdle(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, StateIdle, tr.Get(1).State)
}

func TestTrackerTransitions(t *testing.T) {
	tr := NewTracker()

	tr.Set(1, Session{State: StatePlanSelection})
	assert.Equal(t, StatePlanSelection, tr.Get(1).State)

	tr.Set(1, Session{State: StateAwaitingPayment, Plan: "1 Hour", Reference: "ref"})
	s := tr.Get(1)
	assert.Equal(t, StateAwaitingPayment, s.State)
	assert.Equal(t, "ref", s.Reference)
	assert.Equal(t, 1, tr.Len())

	tr.Reset(1)
	assert.Equal(t, StateIdle, tr.Get(1).State)
	assert.Equal(t, 0, tr.Len())
}

func TestTrackerIsolatesChats(t *testing.T) {
	tr := NewTracker()
	tr.Set(1, Session{State: StatePlanSelection})
	assert.Equal(t, StateIdle, tr.Get(2).State)
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			tr.Set(id, Session{State: StatePlanSelection})
			_ = tr.Get(id)
			tr.Reset(id)
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, 0, tr.Len())
}
