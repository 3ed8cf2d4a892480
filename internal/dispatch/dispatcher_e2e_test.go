package dispatch

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"kvredis/internal/server"
	"kvredis/internal/store"
)

// startTestServer spins up a Dispatcher behind a real TCP listener on
// an OS-assigned free port and returns a go-redis client wired to it,
// mirroring how the example pack drives a RESP server under test with
// a genuine client library rather than a hand-rolled one.
func startTestServer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	st, err := server.New(server.Config{Port: listener.Addr().(*net.TCPAddr).Port})
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	d := New(store.New(store.SystemClock{}), st, log)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go d.Handle(conn, true)
		}
	}()

	client := redis.NewClient(&redis.Options{
		Addr: listener.Addr().String(),
	})

	return client, func() {
		client.Close()
		listener.Close()
	}
}

func TestE2EPingSetGet(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("PING error = %v", err)
	}

	if err := client.Set(ctx, "greeting", "hello", 0).Err(); err != nil {
		t.Fatalf("SET error = %v", err)
	}

	got, err := client.Get(ctx, "greeting").Result()
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	if got != "hello" {
		t.Fatalf("GET = %q, want hello", got)
	}
}

func TestE2EGetMissReturnsNil(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()
	ctx := context.Background()

	_, err := client.Get(ctx, "never-set").Result()
	if err != redis.Nil {
		t.Fatalf("GET error = %v, want redis.Nil", err)
	}
}

func TestE2ESetWithExpiry(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", 50*time.Millisecond).Err(); err != nil {
		t.Fatalf("SET error = %v", err)
	}
	if got, err := client.Get(ctx, "k").Result(); err != nil || got != "v" {
		t.Fatalf("GET immediately after SET = %q, %v", got, err)
	}

	time.Sleep(150 * time.Millisecond)
	if _, err := client.Get(ctx, "k").Result(); err != redis.Nil {
		t.Fatalf("GET after expiry error = %v, want redis.Nil", err)
	}
}

func TestE2EEcho(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()
	ctx := context.Background()

	got, err := client.Echo(ctx, "hello world").Result()
	if err != nil {
		t.Fatalf("ECHO error = %v", err)
	}
	if got != "hello world" {
		t.Fatalf("ECHO = %q, want %q", got, "hello world")
	}
}

func TestE2EInfoReplicationReportsMaster(t *testing.T) {
	client, cleanup := startTestServer(t)
	defer cleanup()
	ctx := context.Background()

	got, err := client.Info(ctx, "replication").Result()
	if err != nil {
		t.Fatalf("INFO error = %v", err)
	}
	if want := "role:master"; !strings.Contains(got, want) {
		t.Fatalf("INFO = %q, want to contain %q", got, want)
	}
}
