package pubsub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBroker_RetainsLastMessage(t *testing.T) {
	b := NewBroker()
	b.Publish(TopicRanking, []byte("one"))
	b.Publish(TopicRanking, []byte("two"))

	ch, unsubscribe := b.Subscribe(TopicRanking)
	defer unsubscribe()
	require.Equal(t, []byte("two"), <-ch)

	b.Publish(TopicRanking, []byte("three"))
	require.Equal(t, []byte("three"), <-ch)
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	ch, unsubscribe := b.Subscribe("t")
	unsubscribe()
	_, ok := <-ch
	require.False(t, ok)

	// publishing after the last subscriber left must not block or panic
	b.Publish("t", []byte("x"))
}

func TestBroker_CloseTopic(t *testing.T) {
	b := NewBroker()
	ch, _ := b.Subscribe("t")
	b.Publish("t", []byte("x"))
	require.Equal(t, []byte("x"), <-ch)

	b.CloseTopic("t")
	_, ok := <-ch
	require.False(t, ok)

	fresh, unsubscribe := b.Subscribe("t")
	defer unsubscribe()
	select {
	case msg := <-fresh:
		t.Fatalf("unexpected retained message %q", msg)
	default:
	}
}

func TestFormatMessage(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal(FormatMessage("ranking", "reset"), &ev))
	require.Equal(t, Event{Stream: "ranking", Data: "reset"}, ev)
}
