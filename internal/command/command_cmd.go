package command

import (
	"kvredis/internal/resp"
	"kvredis/internal/store"
)

// CommandCmd is the literal COMMAND command. A full implementation
// would enumerate every supported command and its arity; this is the
// placeholder +OK reply clients use to probe for server liveness.
type CommandCmd struct {
	raw resp.Message
}

func (c *CommandCmd) Execute(*store.Store) ([]resp.Message, error) {
	return []resp.Message{resp.SimpleString("OK")}, nil
}

func (c *CommandCmd) PropagatesToReplicas() bool { return false }
func (c *CommandCmd) AlwaysReply() bool          { return false }
func (c *CommandCmd) Serialize() []byte          { return resp.Serialize(c.raw) }
