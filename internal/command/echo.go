package command

import (
	"kvredis/internal/resp"
	"kvredis/internal/store"
)

// Echo replies with its single argument verbatim. A call with no
// argument returns zero reply messages rather than an error or an
// empty bulk string — there is nothing to echo back.
type Echo struct {
	raw  resp.Message
	args []string
}

func (e *Echo) Execute(*store.Store) ([]resp.Message, error) {
	if len(e.args) < 2 {
		return nil, nil
	}
	return []resp.Message{resp.BulkStringFromString(e.args[1])}, nil
}

func (e *Echo) PropagatesToReplicas() bool { return false }
func (e *Echo) AlwaysReply() bool          { return false }
func (e *Echo) Serialize() []byte          { return resp.Serialize(e.raw) }
