package attend

import "testing"

func TestEventBus_PublishNeverBlocks(t *testing.T) {
	b := NewEventBus(1)
	// no consumer; overflow must be dropped, not block
	for i := 0; i < 10; i++ {
		b.Publish(Event{Kind: EventTagObserved, Tag: "AABBCCDD"})
	}

	select {
	case ev := <-b.Events():
		if ev.Tag != "AABBCCDD" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected the first published event to be buffered")
	}
}

func TestEventBus_NilSafePublish(t *testing.T) {
	var b *EventBus
	b.Publish(Event{Kind: EventCountChanged})
}
