package workerpool

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/goleak"

	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
)

func TestPool_StartShutdown_NoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	pool := New(4, &countingRunner{})
	for i := 0; i < 10; i++ {
		pool.Enqueue(job.Job{ID: uuid.New()})
	}
	time.Sleep(10 * time.Millisecond)
	pool.Shutdown()
}
