package worker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"post_audit_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func init() {
	logger.Init(true)
}

// stubSink 记录收到的事件，可配置前 N 次失败
type stubSink struct {
	mu       sync.Mutex
	events   []AuditEvent
	failLeft int
}

func (s *stubSink) Name() string { return "stub" }

func (s *stubSink) HandleAuditEvent(e AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLeft > 0 {
		s.failLeft--
		return errors.New("stub failure")
	}
	s.events = append(s.events, e)
	return nil
}

func (s *stubSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *stubSink) first() AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[0]
}

func waitFor(t *testing.T, cond func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}

func TestPoolDeliversEvents(t *testing.T) {
	sink := &stubSink{}
	pool := NewPool([]Sink{sink}, 2, 16)
	pool.Start()

	for i := 0; i < 5; i++ {
		pool.Enqueue(AuditEvent{PostID: "post-1", Decision: "approved"})
	}

	waitFor(t, func() bool { return sink.count() == 5 }, 2*time.Second)
}

func TestPoolRetriesFailedEvents(t *testing.T) {
	sink := &stubSink{failLeft: 1}
	pool := NewPool([]Sink{sink}, 1, 16)
	pool.Start()

	pool.Enqueue(AuditEvent{PostID: "post-1", Decision: "rejected", Reason: "low quality"})

	// 首次失败后经重试队列重新投递
	waitFor(t, func() bool { return sink.count() == 1 }, 5*time.Second)
	assert.Equal(t, "rejected", sink.first().Decision)
	assert.Equal(t, 1, sink.first().Retry)
}

func TestEnqueueDoesNotBlockWhenFull(t *testing.T) {
	// 无 worker 消费，队列容量 1
	pool := NewPool(nil, 0, 1)
	pool.Start()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			pool.Enqueue(AuditEvent{PostID: "post-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on full queue")
	}
}
