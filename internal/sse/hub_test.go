package sse

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewHub(log)
}

func TestBroadcastReachesOnlySubscribedChannel(t *testing.T) {
	hub := newTestHub(t)
	teamID := uuid.New()

	listener := hub.NewClient(uuid.New())
	bystander := hub.NewClient(uuid.New())
	hub.AddChannel(listener, TeamQueueChannel(teamID))
	hub.AddChannel(bystander, AnnouncementsChannel)

	hub.Broadcast(Message{
		Channel: TeamQueueChannel(teamID),
		Event:   EventSubmissionClaimed,
	})

	select {
	case msg := <-listener.Outbound:
		if msg.Event != EventSubmissionClaimed {
			t.Fatalf("got event %q, want %q", msg.Event, EventSubmissionClaimed)
		}
	default:
		t.Fatal("subscribed client received nothing")
	}

	select {
	case msg := <-bystander.Outbound:
		t.Fatalf("unsubscribed client received %q", msg.Event)
	default:
	}
}

func TestRemoveClientTearsDownEveryChannel(t *testing.T) {
	hub := newTestHub(t)
	teamID := uuid.New()
	subID := uuid.New()

	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, TeamQueueChannel(teamID))
	hub.AddChannel(client, SubmissionChannel(subID))

	if got := hub.SubscriberCount(TeamQueueChannel(teamID)); got != 1 {
		t.Fatalf("subscriber count before teardown = %d, want 1", got)
	}

	hub.RemoveClient(client)

	if got := hub.SubscriberCount(TeamQueueChannel(teamID)); got != 0 {
		t.Fatalf("queue channel still has %d subscribers after teardown", got)
	}
	if got := hub.SubscriberCount(SubmissionChannel(subID)); got != 0 {
		t.Fatalf("submission channel still has %d subscribers after teardown", got)
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub(t)
	channel := AnnouncementsChannel

	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, channel)

	// Fill the outbound buffer without draining it; the hub must not block.
	for i := 0; i < cap(client.Outbound)+5; i++ {
		hub.Broadcast(Message{Channel: channel, Event: EventAnnouncementPublished})
	}

	if got := len(client.Outbound); got != cap(client.Outbound) {
		t.Fatalf("outbound buffer holds %d messages, want %d", got, cap(client.Outbound))
	}
}
