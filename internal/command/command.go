// Package command implements the server's command set as a small,
// statically-dispatched set of types rather than a name-to-handler map:
// each command knows how to execute itself, whether it propagates to
// replicas, whether it always replies, and how to re-serialize itself
// for relay.
package command

import (
	"errors"
	"fmt"
	"strings"

	"kvredis/internal/resp"
	"kvredis/internal/server"
	"kvredis/internal/store"
)

// ErrSyntax reports a missing required argument or an unparseable
// numeric argument (e.g. a non-numeric PX value). The connection stays
// open; the client receives an error reply.
var ErrSyntax = errors.New("command: syntax error")

// Command is the uniform interface every dispatchable command
// implements.
type Command interface {
	// Execute runs the command against store and returns zero or more
	// reply messages for the originating client.
	Execute(s *store.Store) ([]resp.Message, error)

	// PropagatesToReplicas reports whether a successful execution
	// should be relayed to every registered replica socket.
	PropagatesToReplicas() bool

	// AlwaysReply reports whether a reply must be sent even when the
	// connection is a replica's ingress link in suppressed-reply mode.
	AlwaysReply() bool

	// Serialize returns the exact bytes that should be relayed to
	// replicas: the original command frame, byte for byte.
	Serialize() []byte
}

// New inspects msg (an Array message whose element 0 is the command
// name) and builds the matching Command. Command-name matching is
// case-insensitive. An unrecognized command name returns an error,
// which the dispatcher reports to the client as an error reply.
func New(msg resp.Message, st *server.State) (Command, error) {
	args := elementsAsStrings(msg)
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrSyntax)
	}
	name := strings.ToUpper(args[0])

	switch name {
	case "PING":
		return &Ping{raw: msg}, nil
	case "ECHO":
		return &Echo{raw: msg, args: args}, nil
	case "COMMAND":
		return &CommandCmd{raw: msg}, nil
	case "SET":
		return &Set{raw: msg, args: args}, nil
	case "GET":
		return &Get{raw: msg, args: args}, nil
	case "INFO":
		return &Info{raw: msg, args: args, state: st}, nil
	case "REPLCONF":
		return &ReplConf{raw: msg, args: args, state: st}, nil
	case "PSYNC":
		return &Psync{raw: msg, args: args, state: st}, nil
	default:
		return nil, fmt.Errorf("command: unknown command %q", args[0])
	}
}

// Name returns the case-folded command name from a raw Array message,
// or "" for an empty or non-array message. The dispatcher uses it to
// recognize PSYNC, whose socket it registers as a replica.
func Name(msg resp.Message) string {
	args := elementsAsStrings(msg)
	if len(args) == 0 {
		return ""
	}
	return strings.ToUpper(args[0])
}

func elementsAsStrings(msg resp.Message) []string {
	if msg.Type != resp.TypeArray {
		return nil
	}
	out := make([]string, len(msg.Elems))
	for i, e := range msg.Elems {
		out[i] = resp.AsString(e)
	}
	return out
}
