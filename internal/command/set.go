package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kvredis/internal/resp"
	"kvredis/internal/store"
)

// Set stores its value argument under its key argument. An optional
// fourth token is checked case-insensitively against "px"; when it
// matches, a fifth token is parsed as a millisecond TTL captured as an
// absolute deadline at insertion. Any other fourth token is ignored
// rather than rejected.
type Set struct {
	raw  resp.Message
	args []string
}

func (c *Set) Execute(s *store.Store) ([]resp.Message, error) {
	if len(c.args) < 3 {
		return nil, fmt.Errorf("%w: invalid SET syntax", ErrSyntax)
	}
	key, value := c.args[1], c.args[2]

	var ttl *time.Duration
	if len(c.args) > 3 && strings.ToLower(c.args[3]) == "px" {
		if len(c.args) < 5 {
			return nil, fmt.Errorf("%w: PX requires a millisecond value", ErrSyntax)
		}
		ms, err := strconv.ParseUint(c.args[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: PX value must be numeric", ErrSyntax)
		}
		d := time.Duration(ms) * time.Millisecond
		ttl = &d
	}

	s.Set(key, []byte(value), ttl)
	return []resp.Message{resp.SimpleString("OK")}, nil
}

func (c *Set) PropagatesToReplicas() bool { return true }
func (c *Set) AlwaysReply() bool          { return false }
func (c *Set) Serialize() []byte          { return resp.Serialize(c.raw) }
