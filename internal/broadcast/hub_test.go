package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faculty-presence-backend/internal/presence"
)

func record(status presence.StatusValue, at time.Time) presence.Record {
	return presence.Record{Status: status, Source: presence.SourceManual, UpdatedAt: at}
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := NewHub(8)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	subOne := hub.Subscribe("prof-rao")
	subAll := hub.Subscribe("")

	hub.Publish("prof-rao", record(presence.StatusBusy, base))
	hub.Publish("prof-rao", record(presence.StatusInClass, base.Add(time.Minute)))
	hub.Publish("prof-rao", record(presence.StatusAvailable, base.Add(2*time.Minute)))

	expected := []presence.StatusValue{presence.StatusBusy, presence.StatusInClass, presence.StatusAvailable}
	for _, sub := range []*Subscription{subOne, subAll} {
		for _, want := range expected {
			select {
			case ev := <-sub.C():
				assert.Equal(t, "prof-rao", ev.Subject)
				assert.Equal(t, want, ev.Record.Status)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for broadcast event")
			}
		}
	}
}

func TestHubSubjectFilter(t *testing.T) {
	hub := NewHub(8)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	sub := hub.Subscribe("prof-rao")
	hub.Publish("prof-iyer", record(presence.StatusBusy, base))
	hub.Publish("prof-rao", record(presence.StatusAvailable, base))

	select {
	case ev := <-sub.C():
		assert.Equal(t, "prof-rao", ev.Subject)
		assert.Equal(t, presence.StatusAvailable, ev.Record.Status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for filtered event")
	}

	select {
	case ev := <-sub.C():
		t.Fatalf("unexpected extra event for subject %s", ev.Subject)
	default:
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := NewHub(1)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	slow := hub.Subscribe("")
	fast := hub.Subscribe("")
	require.Equal(t, 2, hub.SubscriberCount())

	// Fill the slow subscriber's buffer, then keep publishing while
	// draining only the fast one. The publisher must never block and the
	// slow subscriber must be detached.
	hub.Publish("prof-rao", record(presence.StatusBusy, base))
	<-fast.C()
	hub.Publish("prof-rao", record(presence.StatusInClass, base.Add(time.Minute)))
	<-fast.C()

	assert.Equal(t, 1, hub.SubscriberCount())

	// The dropped feed ends with a closed channel after any buffered
	// events are drained.
	ev, ok := <-slow.C()
	require.True(t, ok)
	assert.Equal(t, presence.StatusBusy, ev.Record.Status)
	_, ok = <-slow.C()
	assert.False(t, ok)

	// The surviving subscriber keeps receiving.
	hub.Publish("prof-rao", record(presence.StatusAvailable, base.Add(2*time.Minute)))
	ev = <-fast.C()
	assert.Equal(t, presence.StatusAvailable, ev.Record.Status)
}

func TestHubCancel(t *testing.T) {
	hub := NewHub(4)

	sub := hub.Subscribe("prof-rao")
	require.Equal(t, 1, hub.SubscriberCount())

	sub.Cancel()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, ok := <-sub.C()
	assert.False(t, ok)

	// Cancelling a dropped or already-cancelled subscription is a no-op.
	sub.Cancel()
}
