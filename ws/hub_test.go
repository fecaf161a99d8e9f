package ws

import (
	"encoding/json"
	"testing"
	"time"
)

// waitFor, hub'ın event loop'u asenkron işlediği için kısa bir poll döngüsü.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func fakeClient(hub *Hub, userID string) *Client {
	return &Client{hub: hub, userID: userID, send: make(chan []byte, sendBufferSize)}
}

func TestHubBroadcastToAll(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	go hub.Run()

	a := fakeClient(hub, "user-a")
	b := fakeClient(hub, "user-b")
	hub.register <- a
	hub.register <- b
	waitFor(t, func() bool { return len(hub.GetOnlineUserIDs()) == 2 })

	hub.BroadcastToAll(Event{Op: OpServerCreate, Data: ServerEventData{ServerID: "s1"}})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.send:
			var ev Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				t.Fatalf("failed to decode event: %v", err)
			}
			if ev.Op != OpServerCreate {
				t.Errorf("expected op %q, got %q", OpServerCreate, ev.Op)
			}
			if ev.Seq == 0 {
				t.Errorf("broadcast events must carry a sequence number")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s did not receive the broadcast", c.userID)
		}
	}
}

func TestHubBroadcastToUserTargetsOnlyThatUser(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	go hub.Run()

	target := fakeClient(hub, "target")
	bystander := fakeClient(hub, "bystander")
	hub.register <- target
	hub.register <- bystander
	waitFor(t, func() bool { return len(hub.GetOnlineUserIDs()) == 2 })

	hub.BroadcastToUser("target", Event{Op: OpMemberBanned})

	select {
	case <-target.send:
	case <-time.After(2 * time.Second):
		t.Fatalf("target did not receive the event")
	}

	select {
	case raw := <-bystander.send:
		t.Errorf("bystander should not receive a user-targeted event, got %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSequenceIsMonotonic(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	go hub.Run()

	c := fakeClient(hub, "user")
	hub.register <- c
	waitFor(t, func() bool { return len(hub.GetOnlineUserIDs()) == 1 })

	hub.BroadcastToAll(Event{Op: OpHeartbeatAck})
	hub.BroadcastToAll(Event{Op: OpHeartbeatAck})

	var first, second Event
	if err := json.Unmarshal(<-c.send, &first); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if err := json.Unmarshal(<-c.send, &second); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if second.Seq <= first.Seq {
		t.Errorf("sequence must increase: %d then %d", first.Seq, second.Seq)
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	go hub.Run()

	c := fakeClient(hub, "user")
	hub.register <- c
	waitFor(t, func() bool { return len(hub.GetOnlineUserIDs()) == 1 })

	hub.unregister <- c
	waitFor(t, func() bool { return len(hub.GetOnlineUserIDs()) == 0 })

	select {
	case _, ok := <-c.send:
		if ok {
			t.Errorf("expected a closed send channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("send channel was not closed")
	}
}
