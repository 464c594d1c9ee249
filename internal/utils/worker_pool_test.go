package utils

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolRunsEveryJob(t *testing.T) {
	pool := NewWorkerPool(4, 8, nil)
	pool.Start()
	defer pool.Stop()

	var done atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			done.Add(1)
		})
	}
	wg.Wait()
	assert.EqualValues(t, 100, done.Load())
}

func TestWorkerPoolSurvivesPanic(t *testing.T) {
	pool := NewWorkerPool(1, 0, nil)
	pool.Start()
	defer pool.Stop()

	ran := make(chan struct{})
	pool.Submit(func() { panic("boom") })
	pool.Submit(func() { close(ran) })
	<-ran
}

func TestWorkerPoolStopIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(2, 1, nil)
	pool.Start()
	pool.Stop()
	assert.NotPanics(t, pool.Stop)
}
