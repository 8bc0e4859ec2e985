package chatclient_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vendoreval/internal/chatclient"
)

// scriptedStream writes the given events as SSE frames and closes the
// connection.
func scriptedStream(w http.ResponseWriter, events []chatclient.Event) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher := w.(http.Flusher)
	for _, ev := range events {
		payload, _ := json.Marshal(ev)
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}

func msg(id int64, senderID int64, content string, at time.Time) *chatclient.Message {
	return &chatclient.Message{
		ID: id, VendorID: 1, SenderID: senderID,
		SenderName: "Dana", Content: content, CreatedAt: at,
	}
}

func TestClientReceivesAndDeduplicates(t *testing.T) {
	base := time.Now().Add(-time.Minute)
	var connections atomic.Int32
	secondDone := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch connections.Add(1) {
		case 1:
			scriptedStream(w, []chatclient.Event{
				{Type: "connected"},
				{Type: "message", Message: msg(1, 2, "first", base)},
				{Type: "message", Message: msg(2, 2, "third", base.Add(2*time.Second))},
				{Type: "info", Info: "Connection expired, please reconnect"},
			})
		case 2:
			scriptedStream(w, []chatclient.Event{
				{Type: "connected"},
				// Replay of id 1 plus a message that slots between the
				// two already held.
				{Type: "message", Message: msg(1, 2, "first", base)},
				{Type: "message", Message: msg(3, 2, "second", base.Add(time.Second))},
				{Type: "info", Info: "Connection expired, please reconnect"},
			})
			close(secondDone)
		default:
			scriptedStream(w, []chatclient.Event{{Type: "connected"}})
		}
	}))
	defer srv.Close()

	client := chatclient.New(srv.URL, "test-token", 1, 3)

	var mu sync.Mutex
	var delivered []string
	client.OnMessage = func(m chatclient.Message) {
		mu.Lock()
		delivered = append(delivered, m.Content)
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- client.Run(ctx) }()

	select {
	case <-secondDone:
	case <-time.After(10 * time.Second):
		t.Fatal("second connection never happened")
	}
	// Give the client a moment to drain the second stream.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-runDone:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	messages := client.Messages()
	require.Len(t, messages, 3, "duplicate replay must not grow history")
	require.Equal(t, []int64{1, 3, 2}, []int64{messages[0].ID, messages[1].ID, messages[2].ID},
		"history must stay in creation order")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 3, "OnMessage must fire once per unique message")
}

func TestClientSkipsOwnMessages(t *testing.T) {
	base := time.Now()
	done := make(chan struct{})
	var once sync.Once

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scriptedStream(w, []chatclient.Event{
			{Type: "connected"},
			{Type: "message", Message: msg(1, 3, "mine", base)},
			{Type: "message", Message: msg(2, 2, "theirs", base.Add(time.Second))},
		})
		once.Do(func() { close(done) })
	}))
	defer srv.Close()

	// userID 3 matches the first message's sender.
	client := chatclient.New(srv.URL, "test-token", 1, 3)

	var mu sync.Mutex
	var notified []string
	client.OnMessage = func(m chatclient.Message) {
		mu.Lock()
		notified = append(notified, m.Content)
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream never served")
	}
	time.Sleep(200 * time.Millisecond)
	cancel()

	require.Len(t, client.Messages(), 2, "own messages still land in history")

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"theirs"}, notified, "no notification for own messages")
}

func TestClientStatusTransitions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scriptedStream(w, []chatclient.Event{{Type: "connected"}})
		// Hold the connection open until the client goes away.
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := chatclient.New(srv.URL, "test-token", 1, 3)

	statusCh := make(chan string, 16)
	client.OnStatus = func(s string) { statusCh <- s }

	ctx, cancel := context.WithCancel(context.Background())
	go client.Run(ctx)

	waitStatus := func(want string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case s := <-statusCh:
				if s == want {
					return
				}
			case <-deadline:
				t.Fatalf("never reached status %q", want)
			}
		}
	}

	waitStatus(chatclient.StatusConnecting)
	waitStatus(chatclient.StatusConnected)

	cancel()
	waitStatus(chatclient.StatusDisconnected)
}

func TestClientBackoffExhaustion(t *testing.T) {
	var mu sync.Mutex
	var attempts []time.Time

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts = append(attempts, time.Now())
		mu.Unlock()
		http.Error(w, `{"error":"Temporarily unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := chatclient.New(srv.URL, "test-token", 1, 3)
	client.Retry = chatclient.RetryConfig{
		BackoffBase:       10 * time.Millisecond,
		BackoffCap:        40 * time.Millisecond,
		MaxRetries:        4,
		HeartbeatDeadline: time.Second,
	}

	statusCh := make(chan string, 16)
	client.OnStatus = func(s string) { statusCh <- s }

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := client.Run(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	require.Contains(t, err.Error(), "giving up after 4 attempts")
	require.Equal(t, chatclient.StatusDisconnected, client.Status())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, attempts, 5, "initial attempt plus four retries")

	// Delays double from the base and hold at the cap. Scheduling can
	// stretch a delay but never shrink it.
	want := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		40 * time.Millisecond,
	}
	for i := 1; i < len(attempts); i++ {
		gap := attempts[i].Sub(attempts[i-1])
		require.GreaterOrEqual(t, gap, want[i-1], "attempt %d fired early", i+1)
	}
}

func TestClientRejectedByServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := chatclient.New(srv.URL, "bad-token", 1, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := client.Run(ctx)
	require.Error(t, err)
	require.Equal(t, chatclient.StatusDisconnected, client.Status())
}
