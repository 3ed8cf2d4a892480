package command

import (
	"kvredis/internal/resp"
	"kvredis/internal/store"
)

// Ping replies +PONG and never propagates.
type Ping struct {
	raw resp.Message
}

func (p *Ping) Execute(*store.Store) ([]resp.Message, error) {
	return []resp.Message{resp.SimpleString("PONG")}, nil
}

func (p *Ping) PropagatesToReplicas() bool { return false }
func (p *Ping) AlwaysReply() bool          { return false }
func (p *Ping) Serialize() []byte          { return resp.Serialize(p.raw) }
