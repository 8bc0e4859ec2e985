// Package chatclient maintains a resilient client for the vendor chat
// stream: it consumes server-sent events, survives connection drops
// with exponential backoff, and keeps a deduplicated, chronologically
// ordered message history.
package chatclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Connection states reported through OnStatus.
const (
	StatusConnecting   = "connecting"
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// RetryConfig controls reconnection and the heartbeat watchdog. Tests
// shorten the intervals; production uses DefaultRetryConfig.
type RetryConfig struct {
	BackoffBase       time.Duration
	BackoffCap        time.Duration
	MaxRetries        uint64
	HeartbeatDeadline time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		BackoffBase:       time.Second,
		BackoffCap:        10 * time.Second,
		MaxRetries:        10,
		HeartbeatDeadline: 20 * time.Second,
	}
}

// Message mirrors the server's chat message payload.
type Message struct {
	ID         int64     `json:"id"`
	VendorID   int64     `json:"vendorId"`
	SenderID   int64     `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Event is one decoded server-sent event.
type Event struct {
	Type      string    `json:"type"`
	Message   *Message  `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Info      string    `json:"info,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client consumes a vendor's chat stream. Zero value is not usable;
// construct with New.
type Client struct {
	baseURL  string
	token    string
	vendorID int64
	userID   int64
	http     *http.Client

	// OnMessage fires for messages from other senders. OnStatus fires
	// on every state change. Both are optional.
	OnMessage func(Message)
	OnStatus  func(status string)

	// Retry may be replaced before Run is called.
	Retry RetryConfig

	mu       sync.Mutex
	status   string
	messages []Message
	seen     map[int64]bool
}

func New(baseURL, token string, vendorID, userID int64) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		vendorID: vendorID,
		userID:   userID,
		http:     &http.Client{},
		Retry:    DefaultRetryConfig(),
		status:   StatusDisconnected,
		seen:     make(map[int64]bool),
	}
}

// Status returns the current connection state.
func (c *Client) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Messages returns a copy of the history in chronological order.
func (c *Client) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Client) setStatus(status string) {
	c.mu.Lock()
	changed := c.status != status
	c.status = status
	c.mu.Unlock()
	if changed && c.OnStatus != nil {
		c.OnStatus(status)
	}
}

// addMessage inserts in creation order and drops duplicates, which
// reconnects produce when the server replays recent history.
func (c *Client) addMessage(m Message) bool {
	c.mu.Lock()
	if c.seen[m.ID] {
		c.mu.Unlock()
		return false
	}
	c.seen[m.ID] = true
	idx := sort.Search(len(c.messages), func(i int) bool {
		return c.messages[i].CreatedAt.After(m.CreatedAt)
	})
	c.messages = append(c.messages, Message{})
	copy(c.messages[idx+1:], c.messages[idx:])
	c.messages[idx] = m
	c.mu.Unlock()
	return true
}

// Run consumes the stream until ctx is cancelled or reconnection
// attempts are exhausted. A session that reached connected state resets
// the backoff schedule, so only consecutive failures count against the
// retry budget.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.newBackoff()
	for {
		if ctx.Err() != nil {
			c.setStatus(StatusDisconnected)
			return ctx.Err()
		}

		c.setStatus(StatusConnecting)
		established, err := c.stream(ctx)
		if ctx.Err() != nil {
			c.setStatus(StatusDisconnected)
			return ctx.Err()
		}
		if established {
			backoff = c.newBackoff()
		}

		delay, stop := backoff.Next()
		if stop {
			c.setStatus(StatusDisconnected)
			return fmt.Errorf("giving up after %d attempts: %w", c.Retry.MaxRetries, err)
		}

		select {
		case <-ctx.Done():
			c.setStatus(StatusDisconnected)
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) newBackoff() retry.Backoff {
	b := retry.NewExponential(c.Retry.BackoffBase)
	b = retry.WithCappedDuration(c.Retry.BackoffCap, b)
	return retry.WithMaxRetries(c.Retry.MaxRetries, b)
}

// stream runs a single connection. It reports whether the connection
// was established (a connected event arrived) and the terminating error.
func (c *Client) stream(ctx context.Context) (bool, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	url := fmt.Sprintf("%s/api/chat/%d/stream?token=%s", c.baseURL, c.vendorID, c.token)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	// The watchdog kills a connection whose heartbeats stopped; the
	// blocked read then fails and Run reconnects.
	watchdog := time.AfterFunc(c.Retry.HeartbeatDeadline, cancel)
	defer watchdog.Stop()

	established := false
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		watchdog.Reset(c.Retry.HeartbeatDeadline)

		var ev Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			continue
		}

		switch ev.Type {
		case "connected":
			established = true
			c.setStatus(StatusConnected)
		case "message":
			if ev.Message == nil {
				continue
			}
			if c.addMessage(*ev.Message) && ev.Message.SenderID != c.userID && c.OnMessage != nil {
				c.OnMessage(*ev.Message)
			}
		case "heartbeat":
			// Watchdog reset above is all a heartbeat does.
		case "info":
			// Server is closing this connection; exit cleanly and let
			// Run reconnect.
			return established, nil
		case "error":
			// Transient server-side failure; the stream stays up.
		}
	}

	if err := scanner.Err(); err != nil {
		return established, err
	}
	return established, fmt.Errorf("stream closed by server")
}
