package command

import (
	"fmt"

	"kvredis/internal/resp"
	"kvredis/internal/server"
	"kvredis/internal/snapshot"
	"kvredis/internal/store"
)

// Psync answers a replica's full-resync request. The reply always
// reports the master's OWN replication ID, ignoring whatever
// replication ID the replica supplied in its PSYNC arguments (a
// first-time replica always sends "?"). A point-in-time snapshot of
// the store follows as a Snapshot-framed message with no trailing
// CRLF, taken while still holding the store lock so PSYNC observes a
// single consistent instant.
type Psync struct {
	raw   resp.Message
	args  []string
	state *server.State
}

func (p *Psync) Execute(s *store.Store) ([]resp.Message, error) {
	if len(p.args) < 3 {
		return nil, fmt.Errorf("%w: PSYNC requires replication id and offset", ErrSyntax)
	}
	if p.state.MasterReplicationID == "" {
		return nil, fmt.Errorf("command: PSYNC received by a non-master node")
	}

	fullresync := resp.SimpleString(fmt.Sprintf("FULLRESYNC %s 0", p.state.MasterReplicationID))
	dump := snapshot.Dump(s)
	return []resp.Message{fullresync, resp.Snapshot(dump)}, nil
}

func (p *Psync) PropagatesToReplicas() bool { return false }
func (p *Psync) AlwaysReply() bool          { return false }
func (p *Psync) Serialize() []byte          { return resp.Serialize(p.raw) }
