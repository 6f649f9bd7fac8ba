package workerpool

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestEnqueueRunsEveryTask(t *testing.T) {
	p := Start(4)
	defer p.Stop()

	var count int64
	const n = 500
	for i := 0; i < n; i++ {
		p.Enqueue(func() error {
			atomic.AddInt64(&count, 1)
			return nil
		})
	}
	if err := p.WaitForCompletion(); err != nil {
		t.Fatalf("WaitForCompletion: %v", err)
	}
	if count != n {
		t.Fatalf("ran %d tasks, want %d", count, n)
	}
}

func TestWaitForCompletionReportsFirstError(t *testing.T) {
	p := Start(2)
	defer p.Stop()

	wantErr := errors.New("boom")
	p.Enqueue(func() error { return nil })
	p.Enqueue(func() error { return wantErr })
	p.Enqueue(func() error { return nil })

	if err := p.WaitForCompletion(); err != wantErr {
		t.Fatalf("WaitForCompletion error = %v, want %v", err, wantErr)
	}
}

func TestPoolReusableAcrossWaves(t *testing.T) {
	p := Start(3)
	defer p.Stop()

	for wave := 0; wave < 3; wave++ {
		var count int64
		for i := 0; i < 50; i++ {
			p.Enqueue(func() error {
				atomic.AddInt64(&count, 1)
				return nil
			})
		}
		if err := p.WaitForCompletion(); err != nil {
			t.Fatalf("wave %d: %v", wave, err)
		}
		if count != 50 {
			t.Fatalf("wave %d: ran %d tasks, want 50", wave, count)
		}
	}
}
