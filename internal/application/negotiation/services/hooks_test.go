package services_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
)

func TestHookPool_RunsSubmittedTasks(t *testing.T) {
	// Arrange
	pool := services.NewHookPool(2, 16)
	var ran atomic.Int32

	// Act
	for i := 0; i < 10; i++ {
		pool.Submit(context.Background(), services.HookTask{
			Name: "count",
			Run: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		})
	}
	pool.Shutdown()

	// Assert
	assert.Equal(t, int32(10), ran.Load())
}

func TestHookPool_SurvivesErrorsAndPanics(t *testing.T) {
	pool := services.NewHookPool(1, 16)
	var ran atomic.Int32

	pool.Submit(context.Background(), services.HookTask{
		Name: "panics",
		Run:  func(ctx context.Context) error { panic("boom") },
	})
	pool.Submit(context.Background(), services.HookTask{
		Name: "errors",
		Run:  func(ctx context.Context) error { return assert.AnError },
	})
	pool.Submit(context.Background(), services.HookTask{
		Name: "succeeds",
		Run: func(ctx context.Context) error {
			ran.Add(1)
			return nil
		},
	})
	pool.Shutdown()

	assert.Equal(t, int32(1), ran.Load())
}

func TestHookPool_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	// A single worker blocked on a gate while the queue fills up
	pool := services.NewHookPool(1, 1)
	gate := make(chan struct{})
	var ran atomic.Int32

	pool.Submit(context.Background(), services.HookTask{
		Name: "blocker",
		Run: func(ctx context.Context) error {
			<-gate
			return nil
		},
	})
	// Fills the queue slot, then one more that must be dropped
	for i := 0; i < 5; i++ {
		pool.Submit(context.Background(), services.HookTask{
			Name: "maybe-dropped",
			Run: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		})
	}
	close(gate)
	pool.Shutdown()

	// At most the one queued task ran; the rest were dropped silently
	assert.LessOrEqual(t, ran.Load(), int32(1))
}
