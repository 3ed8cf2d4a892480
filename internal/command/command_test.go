package command

import (
	"strings"
	"testing"
	"time"

	"kvredis/internal/resp"
	"kvredis/internal/server"
	"kvredis/internal/store"
)

func newArray(parts ...string) resp.Message {
	elems := make([]resp.Message, len(parts))
	for i, p := range parts {
		elems[i] = resp.BulkStringFromString(p)
	}
	return resp.Array(elems)
}

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func newTestStore() *store.Store {
	return store.New(&fakeClock{now: time.Unix(1000, 0)})
}

func TestPing(t *testing.T) {
	cmd, err := New(newArray("PING"), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	replies, err := cmd.Execute(newTestStore())
	if err != nil || len(replies) != 1 || replies[0].Str != "PONG" {
		t.Fatalf("Execute() = %+v, %v", replies, err)
	}
	if cmd.PropagatesToReplicas() || cmd.AlwaysReply() {
		t.Fatalf("Ping flags wrong")
	}
}

func TestEchoWithoutArgumentReturnsNoReplies(t *testing.T) {
	cmd, _ := New(newArray("ECHO"), nil)
	replies, err := cmd.Execute(newTestStore())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(replies) != 0 {
		t.Fatalf("len(replies) = %d, want 0", len(replies))
	}
}

func TestEchoWithArgument(t *testing.T) {
	cmd, _ := New(newArray("ECHO", "hello"), nil)
	replies, _ := cmd.Execute(newTestStore())
	if len(replies) != 1 || string(replies[0].Bulk) != "hello" {
		t.Fatalf("Execute() = %+v", replies)
	}
}

func TestGetMiss(t *testing.T) {
	cmd, _ := New(newArray("GET", "missing"), nil)
	replies, err := cmd.Execute(newTestStore())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(replies) != 1 || !replies[0].Null {
		t.Fatalf("Execute() = %+v, want null bulk", replies)
	}
}

func TestSetThenGet(t *testing.T) {
	s := newTestStore()
	setCmd, _ := New(newArray("SET", "k", "v"), nil)
	if _, err := setCmd.Execute(s); err != nil {
		t.Fatalf("SET Execute() error = %v", err)
	}
	if !setCmd.PropagatesToReplicas() {
		t.Fatalf("SET should propagate")
	}

	getCmd, _ := New(newArray("GET", "k"), nil)
	replies, _ := getCmd.Execute(s)
	if len(replies) != 1 || string(replies[0].Bulk) != "v" {
		t.Fatalf("GET Execute() = %+v", replies)
	}
}

func TestSetWithPXCaseInsensitive(t *testing.T) {
	s := newTestStore()
	cmd, _ := New(newArray("SET", "k", "v", "px", "1000"), nil)
	if _, err := cmd.Execute(s); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, ok := s.Get("k"); !ok {
		t.Fatalf("key should be present immediately after SET")
	}
}

func TestSetMissingValueIsSyntaxError(t *testing.T) {
	cmd, _ := New(newArray("SET", "k"), nil)
	if _, err := cmd.Execute(newTestStore()); err == nil {
		t.Fatalf("Execute() error = nil, want syntax error")
	}
}

func TestInfoReplicationMaster(t *testing.T) {
	st, err := server.New(server.Config{Port: 6379})
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	cmd, _ := New(newArray("INFO", "replication"), st)
	replies, err := cmd.Execute(newTestStore())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	text := string(replies[0].Bulk)
	if !containsAll(text, "role:master", "master_replid") {
		t.Fatalf("INFO output = %q", text)
	}
}

func TestInfoReplicationSlave(t *testing.T) {
	st, err := server.New(server.Config{Port: 6380, ReplicaOf: "localhost 6379"})
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	cmd, _ := New(newArray("INFO", "replication"), st)
	replies, _ := cmd.Execute(newTestStore())
	if !containsAll(string(replies[0].Bulk), "role:slave") {
		t.Fatalf("INFO output = %q", replies[0].Bulk)
	}
}

func TestReplConfGetAckAlwaysReplies(t *testing.T) {
	cmd, _ := New(newArray("REPLCONF", "GETACK", "*"), nil)
	if !cmd.AlwaysReply() {
		t.Fatalf("REPLCONF.AlwaysReply() = false, want true")
	}
	replies, _ := cmd.Execute(newTestStore())
	if len(replies) != 1 || len(replies[0].Elems) != 3 {
		t.Fatalf("Execute() = %+v", replies)
	}
}

func TestPsyncReturnsFullresyncAndSnapshot(t *testing.T) {
	st, err := server.New(server.Config{Port: 6379})
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	cmd, _ := New(newArray("PSYNC", "?", "-1"), st)
	replies, err := cmd.Execute(newTestStore())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("len(replies) = %d, want 2", len(replies))
	}
	if replies[1].Type != resp.TypeSnapshot {
		t.Fatalf("replies[1].Type = %v, want TypeSnapshot", replies[1].Type)
	}
}

func containsAll(haystack string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(haystack, n) {
			return false
		}
	}
	return true
}
