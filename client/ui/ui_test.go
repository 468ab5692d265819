package ui

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "actionable", err: &ActionableError{Message: "Invalid credentials"}, want: "Invalid credentials"},
		{name: "wrapped", err: fmt.Errorf("failed to login: %w", &ActionableError{Message: "Email not found"}), want: "Email not found"},
		{name: "other", err: errors.New("connection refused"), want: "Try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err, "Try again."))
		})
	}
}

func TestDispatcher_Drain(t *testing.T) {
	d := NewDispatcher()
	var ran []int
	d.Post(func() { ran = append(ran, 1) })
	d.Post(func() {
		ran = append(ran, 2)
		d.Post(func() { ran = append(ran, 3) })
	})

	assert.Equal(t, 2, d.Drain())
	assert.Equal(t, []int{1, 2}, ran)

	assert.Equal(t, 1, d.Drain())
	assert.Equal(t, []int{1, 2, 3}, ran)
	assert.Equal(t, 0, d.Drain())
}

func TestDispatcher_concurrentPost(t *testing.T) {
	d := NewDispatcher()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Post(func() {})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, d.Drain())
}
