package sse

import (
  "testing"

  "github.com/google/uuid"
  "go.uber.org/zap"

  "github.com/robert-crandall/journal-app-sub007/internal/logger"
)

func testHub() *SSEHub {
  return NewSSEHub(&logger.Logger{SugaredLogger: zap.NewNop().Sugar()})
}

func TestCloseClientIdempotent(t *testing.T) {
  hub := testHub()
  userID := uuid.New()
  client := hub.NewSSEClient(userID)
  hub.AddChannel(client, userID.String())

  hub.CloseClient(client)

  // A replaced stream closes its client again on the way out of ServeHTTP.
  defer func() {
    if r := recover(); r != nil {
      t.Fatalf("second CloseClient panicked: %v", r)
    }
  }()
  hub.CloseClient(client)

  select {
  case <-client.done:
  default:
    t.Fatalf("done channel not closed")
  }
  hub.Deliver(SSEMessage{Channel: userID.String(), Event: SSEEventXpGranted})
  if _, ok := <-client.Outbound; ok {
    t.Fatalf("closed client still received a message")
  }
}

func TestDeliverReachesSubscribedClient(t *testing.T) {
  hub := testHub()
  userID := uuid.New()
  client := hub.NewSSEClient(userID)
  hub.AddChannel(client, userID.String())

  hub.BroadcastToUser(userID, SSEEventJournalCompleted, map[string]any{"id": "x"})
  select {
  case msg := <-client.Outbound:
    if msg.Event != SSEEventJournalCompleted {
      t.Fatalf("event = %q, want %q", msg.Event, SSEEventJournalCompleted)
    }
  default:
    t.Fatalf("no message delivered")
  }

  other := hub.NewSSEClient(uuid.New())
  hub.AddChannel(other, other.UserID.String())
  hub.BroadcastToUser(userID, SSEEventXpGranted, nil)
  select {
  case msg := <-other.Outbound:
    t.Fatalf("message leaked to another user's client: %+v", msg)
  default:
  }
}

func TestBroadcastRoutesThroughPublisher(t *testing.T) {
  hub := testHub()
  userID := uuid.New()
  client := hub.NewSSEClient(userID)
  hub.AddChannel(client, userID.String())

  var published []SSEMessage
  hub.SetPublisher(func(msg SSEMessage) { published = append(published, msg) })

  hub.BroadcastToUser(userID, SSEEventTasksGenerated, nil)
  if len(published) != 1 {
    t.Fatalf("published %d messages, want 1", len(published))
  }
  // Local delivery happens via the forwarder, not directly.
  select {
  case msg := <-client.Outbound:
    t.Fatalf("broadcast delivered locally despite publisher: %+v", msg)
  default:
  }

  hub.Deliver(published[0])
  select {
  case msg := <-client.Outbound:
    if msg.Event != SSEEventTasksGenerated {
      t.Fatalf("event = %q, want %q", msg.Event, SSEEventTasksGenerated)
    }
  default:
    t.Fatalf("forwarded message not delivered")
  }
}
