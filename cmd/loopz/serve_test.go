package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperengineering/loopz/internal/config"
)

// logCapture captures slog output for testing
type logCapture struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (c *logCapture) handler() slog.Handler {
	return slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func (c *logCapture) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err == nil {
		c.entries = append(c.entries, entry)
	}
	return len(p), nil
}

func (c *logCapture) messageIndex(msg string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e["msg"] == msg {
			return i
		}
	}
	return -1
}

func captureDefault(t *testing.T) *logCapture {
	t.Helper()
	capture := &logCapture{}
	old := slog.Default()
	slog.SetDefault(slog.New(capture.handler()))
	t.Cleanup(func() { slog.SetDefault(old) })
	return capture
}

func TestStartWorker_LogsAndWaits(t *testing.T) {
	capture := captureDefault(t)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	var cleanedUp atomic.Bool
	startWorker(ctx, &wg, "my-custom-worker", func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		cleanedUp.Store(true)
	})

	cancel()
	wg.Wait()

	if !cleanedUp.Load() {
		t.Error("wg.Wait() returned before worker completed")
	}
	started, stopped := capture.messageIndex("worker started"), capture.messageIndex("worker stopped")
	if started < 0 || stopped < started {
		t.Errorf("worker lifecycle logs out of order: started=%d stopped=%d", started, stopped)
	}

	capture.mu.Lock()
	defer capture.mu.Unlock()
	for _, e := range capture.entries {
		if e["worker"] != "my-custom-worker" {
			t.Errorf("log entry without worker name: %v", e)
		}
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe_StartsAndShutsDown(t *testing.T) {
	dbPath := setupCLI(t)
	capture := captureDefault(t)

	port := freePort(t)
	t.Setenv("LOOPZ_PORT", strconv.Itoa(port))
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Database.Path = dbPath
	cfg.Server.ShutdownTimeout = config.Duration(time.Second)
	c := &cli{cfg: cfg}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.serve(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/health", port)
	var resp *http.Response
	for i := 0; i < 100; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never answered: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}

	// the server drains before workers stop, and the store closes last
	for _, pair := range [][2]string{
		{"server starting", "shutdown initiated"},
		{"shutdown initiated", "worker stopped"},
		{"worker stopped", "shutdown complete"},
	} {
		a, b := capture.messageIndex(pair[0]), capture.messageIndex(pair[1])
		if a < 0 || b < 0 || a > b {
			t.Errorf("%q (%d) should be logged before %q (%d)", pair[0], a, pair[1], b)
		}
	}
}
