package command

import (
	"fmt"

	"kvredis/internal/resp"
	"kvredis/internal/server"
	"kvredis/internal/store"
)

// Info reports server information for a requested section. Only the
// "replication" section is recognized; any other section returns a
// null bulk string rather than an error. A missing section argument is
// a syntax error.
type Info struct {
	raw   resp.Message
	args  []string
	state *server.State
}

func (i *Info) Execute(*store.Store) ([]resp.Message, error) {
	if len(i.args) < 2 {
		return nil, fmt.Errorf("%w: INFO requires a section", ErrSyntax)
	}
	if i.args[1] != "replication" {
		return []resp.Message{resp.NullBulkString()}, nil
	}

	role := "master"
	if i.state.IsReplica() {
		role = "slave"
	}

	report := "# Replication\r\nrole:" + role + "\r\n"
	if role == "master" {
		report += fmt.Sprintf("master_replid:%s\r\nmaster_repl_offset:%d\r\n",
			i.state.MasterReplicationID, i.state.MasterReplicationOffset)
	}
	return []resp.Message{resp.BulkStringFromString(report)}, nil
}

func (i *Info) PropagatesToReplicas() bool { return false }
func (i *Info) AlwaysReply() bool          { return false }
func (i *Info) Serialize() []byte          { return resp.Serialize(i.raw) }
