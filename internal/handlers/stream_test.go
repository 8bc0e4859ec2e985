package handlers_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"vendoreval/db"
	"vendoreval/internal/auth"
	"vendoreval/internal/handlers"
)

type streamEvent struct {
	Type    string          `json:"type"`
	Message *db.ChatMessage `json:"message,omitempty"`
	Info    string          `json:"info,omitempty"`
}

func newStreamServer(t *testing.T, store *MockStorage, cfg handlers.StreamConfig) *httptest.Server {
	t.Helper()

	h := newTestHandler(store)
	h.Stream = cfg

	r := chi.NewRouter()
	r.Get("/api/chat/{vendorId}/stream", h.ChatStreamHandler)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// readEvents collects stream events until the body closes or the
// timeout passes.
func readEvents(t *testing.T, body *bufio.Scanner, timeout time.Duration) []streamEvent {
	t.Helper()

	var (
		mu     sync.Mutex
		events []streamEvent
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for body.Scan() {
			line := body.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var ev streamEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				continue
			}
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]streamEvent, len(events))
	copy(out, events)
	return out
}

func streamRequest(t *testing.T, srv *httptest.Server, principal auth.Principal) *http.Response {
	t.Helper()

	token, err := auth.GenerateToken(principal, testSecret)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/api/chat/1/stream?token="+token, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestChatStreamDeliversMessages(t *testing.T) {
	var once sync.Once
	store := &MockStorage{
		vendor: testVendor(),
		user:   &db.User{ID: 3, Role: auth.RoleDecisionMaker, CanAccessChat: true},
		GetChatMessagesAfterFunc: func(ctx context.Context, vendorID int64, after time.Time) ([]db.ChatMessage, error) {
			var out []db.ChatMessage
			once.Do(func() {
				out = []db.ChatMessage{{
					ID: 42, VendorID: vendorID, SenderID: 2,
					SenderName: "Carol", Content: "new proposal", CreatedAt: time.Now(),
				}}
			})
			return out, nil
		},
	}

	srv := newStreamServer(t, store, handlers.StreamConfig{
		MessageCheckInterval: 10 * time.Millisecond,
		HeartbeatInterval:    25 * time.Millisecond,
		ConnectionMaxAge:     300 * time.Millisecond,
	})

	resp := streamRequest(t, srv, decisionMaker())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(t, bufio.NewScanner(resp.Body), 2*time.Second)

	require.NotEmpty(t, events)
	require.Equal(t, "connected", events[0].Type)

	var gotMessage, gotHeartbeat, gotInfo bool
	for _, ev := range events {
		switch ev.Type {
		case "message":
			require.NotNil(t, ev.Message)
			require.Equal(t, int64(42), ev.Message.ID)
			require.Equal(t, "new proposal", ev.Message.Content)
			gotMessage = true
		case "heartbeat":
			gotHeartbeat = true
		case "info":
			gotInfo = true
		}
	}
	require.True(t, gotMessage, "expected a message event")
	require.True(t, gotHeartbeat, "expected at least one heartbeat")
	require.True(t, gotInfo, "expected teardown info event after max age")
}

func TestChatStreamRejectsMissingToken(t *testing.T) {
	store := &MockStorage{
		vendor: testVendor(),
		user:   &db.User{ID: 3, Role: auth.RoleDecisionMaker, CanAccessChat: true},
	}
	srv := newStreamServer(t, store, handlers.DefaultStreamConfig())

	resp, err := http.Get(srv.URL + "/api/chat/1/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatStreamRejectsContributor(t *testing.T) {
	store := &MockStorage{
		vendor: testVendor(),
		user:   &db.User{ID: 2, Role: auth.RoleContributor, CanAccessChat: true},
	}
	srv := newStreamServer(t, store, handlers.DefaultStreamConfig())

	token, err := auth.GenerateToken(contributor(), testSecret)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/chat/1/stream?token=" + token)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestChatStreamReportsQueryFailures(t *testing.T) {
	store := &MockStorage{
		vendor: testVendor(),
		user:   &db.User{ID: 3, Role: auth.RoleDecisionMaker, CanAccessChat: true},
		GetChatMessagesAfterFunc: func(ctx context.Context, vendorID int64, after time.Time) ([]db.ChatMessage, error) {
			return nil, context.DeadlineExceeded
		},
	}

	srv := newStreamServer(t, store, handlers.StreamConfig{
		MessageCheckInterval: 10 * time.Millisecond,
		HeartbeatInterval:    time.Second,
		ConnectionMaxAge:     150 * time.Millisecond,
	})

	resp := streamRequest(t, srv, decisionMaker())
	events := readEvents(t, bufio.NewScanner(resp.Body), 2*time.Second)

	var gotError bool
	for _, ev := range events {
		if ev.Type == "error" {
			gotError = true
		}
	}
	require.True(t, gotError, "expected an error event for failing message checks")
}
