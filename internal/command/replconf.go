package command

import (
	"fmt"
	"strings"

	"kvredis/internal/resp"
	"kvredis/internal/server"
	"kvredis/internal/store"
)

// ReplConf handles replication handshake configuration. Every
// subcommand replies +OK except "getack" (case-insensitive), which
// replies with a REPLCONF ACK array reporting offset 0 — offset
// tracking is reserved but unimplemented. ReplConf is the only command
// whose reply must always be sent, even to a replica's suppressed-reply
// ingress connection, so that the master sees its ACKs.
type ReplConf struct {
	raw   resp.Message
	args  []string
	state *server.State
}

func (r *ReplConf) Execute(*store.Store) ([]resp.Message, error) {
	if len(r.args) < 2 {
		return nil, fmt.Errorf("%w: REPLCONF requires a subcommand", ErrSyntax)
	}
	if strings.ToLower(r.args[1]) == "getack" {
		return []resp.Message{resp.Array([]resp.Message{
			resp.BulkStringFromString("REPLCONF"),
			resp.BulkStringFromString("ACK"),
			resp.BulkStringFromString("0"),
		})}, nil
	}
	return []resp.Message{resp.SimpleString("OK")}, nil
}

func (r *ReplConf) PropagatesToReplicas() bool { return false }
func (r *ReplConf) AlwaysReply() bool          { return true }
func (r *ReplConf) Serialize() []byte          { return resp.Serialize(r.raw) }
