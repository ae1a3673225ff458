package livereload

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestHubBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(zaptest.NewLogger(t).Sugar())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if n := hub.Broadcast(MsgReload); n != 1 {
		t.Fatalf("Broadcast reached %d clients, want 1", n)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != MsgReload {
		t.Fatalf("msg = %q", msg)
	}
}

func TestWatcherDebounces(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	fired := make(chan struct{}, 4)
	w, err := NewWatcher(dir, 20*time.Millisecond, func() { fired <- struct{}{} }, zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "home.html"), []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange never fired")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestClientScript(t *testing.T) {
	s := ClientScript(3001)
	if !strings.Contains(s, ":3001/") || !strings.Contains(s, `"reload"`) {
		t.Fatalf("script = %s", s)
	}
}
