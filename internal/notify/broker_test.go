package notify

import (
	"testing"
	"time"

	"github.com/timmy/tubescope/internal/domain"
)

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	chA, cancelA := b.Subscribe("job-1")
	defer cancelA()
	chB, cancelB := b.Subscribe("job-1")
	defer cancelB()
	chOther, cancelOther := b.Subscribe("job-2")
	defer cancelOther()

	b.Publish(JobEvent{JobID: "job-1", Status: domain.JobStatusRunning, ProgressPct: 50})

	for _, ch := range []<-chan JobEvent{chA, chB} {
		select {
		case event := <-ch:
			if event.ProgressPct != 50 {
				t.Errorf("progress = %d, want 50", event.ProgressPct)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}

	select {
	case event := <-chOther:
		t.Errorf("job-2 subscriber received foreign event: %+v", event)
	default:
	}
}

func TestBrokerSlowSubscriberDropsNotBlocks(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	_, cancel := b.Subscribe("job-1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Nobody reads; publishing must still return promptly.
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(JobEvent{JobID: "job-1", ProgressPct: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestBrokerCancelAndClose(t *testing.T) {
	b := NewBroker()

	ch, cancel := b.Subscribe("job-1")
	cancel()
	cancel() // idempotent

	if _, open := <-ch; open {
		t.Error("canceled subscription channel should be closed")
	}

	// Publishing after cancel must not panic.
	b.Publish(JobEvent{JobID: "job-1"})

	ch2, cancel2 := b.Subscribe("job-1")
	b.Close()
	if _, open := <-ch2; open {
		t.Error("Close should close subscriber channels")
	}
	cancel2()
	b.Publish(JobEvent{JobID: "job-1"}) // no-op after Close
}
