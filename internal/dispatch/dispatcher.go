// Package dispatch implements the per-connection read/execute/reply
// loop shared by ordinary client connections and a replica's ingress
// link to its master.
package dispatch

import (
	"io"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"kvredis/internal/command"
	"kvredis/internal/resp"
	"kvredis/internal/server"
	"kvredis/internal/snapshot"
	"kvredis/internal/store"
)

// clientReadTimeout bounds each read on an ordinary client connection;
// a timeout is treated as "no bytes available yet" and the loop
// retries rather than closing the connection.
const clientReadTimeout = time.Second

// Dispatcher owns the shared Store and server State and runs the
// per-connection loop against them.
type Dispatcher struct {
	store *store.Store
	state *server.State
	log   *logrus.Logger
}

// New builds a Dispatcher over the given store and server state.
func New(st *store.Store, state *server.State, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{store: st, state: state, log: log}
}

// Handle runs the read/parse/execute/reply loop for conn until the
// peer disconnects or a read fails outright. shouldReply distinguishes
// an ordinary client (true) from a replica's ingress connection to its
// master (false): on a replica, commands still execute for their
// side effects but replies are suppressed, except for commands whose
// AlwaysReply is true.
func (d *Dispatcher) Handle(conn net.Conn, shouldReply bool) {
	defer conn.Close()

	buf := make([]byte, 64*1024)
	for {
		conn.SetReadDeadline(time.Now().Add(clientReadTimeout))
		n, err := conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if err != io.EOF {
				d.log.WithError(err).Debug("dispatch: connection read error")
			}
			return
		}

		messages, err := resp.ParseAll(buf[:n])
		if err != nil {
			d.log.WithError(err).Warn("dispatch: malformed frame, closing connection")
			return
		}

		for _, msg := range messages {
			if err := d.handleMessage(conn, msg, shouldReply); err != nil {
				d.log.WithError(err).Warn("dispatch: write error, closing connection")
				return
			}
		}
	}
}

func (d *Dispatcher) handleMessage(conn net.Conn, msg resp.Message, shouldReply bool) error {
	switch msg.Type {
	case resp.TypeArray:
		return d.handleCommand(conn, msg, shouldReply)

	case resp.TypeSnapshot:
		// Only meaningful on a replica: merge entries into the local
		// store, inserting only, never deleting existing keys.
		if err := snapshot.Load(msg.Snapshot, d.store, d.log); err != nil {
			d.log.WithError(err).Warn("dispatch: failed to merge snapshot from master")
		}
		return nil

	case resp.TypeSimpleString:
		if strings.HasPrefix(msg.Str, "FULLRESYNC") {
			parts := strings.Fields(msg.Str)
			if len(parts) >= 2 {
				d.log.WithField("replication_id", parts[1]).Info("dispatch: received FULLRESYNC from master")
			}
		}
		return nil

	default:
		// Every other shape is not a client request; ignore silently.
		return nil
	}
}

func (d *Dispatcher) handleCommand(conn net.Conn, msg resp.Message, shouldReply bool) error {
	name := command.Name(msg)
	cmd, err := command.New(msg, d.state)
	if err != nil {
		d.log.WithError(err).Debug("dispatch: rejecting command")
		if shouldReply {
			errMsg := resp.Serialize(resp.SimpleError("ERR " + err.Error()))
			if _, werr := conn.Write(errMsg); werr != nil {
				return werr
			}
		}
		return nil
	}

	// The PSYNC handler must register the replica socket before its
	// reply is written, so any write command that begins executing
	// right after PSYNC's reply still reaches this new replica.
	if name == "PSYNC" {
		d.state.AddReplica(conn)
	}

	replies, err := cmd.Execute(d.store)
	if err != nil {
		d.log.WithError(err).Debug("dispatch: command execution failed")
		if shouldReply {
			errMsg := resp.Serialize(resp.SimpleError("ERR " + err.Error()))
			if _, werr := conn.Write(errMsg); werr != nil {
				return werr
			}
		}
		return nil
	}

	if shouldReply || cmd.AlwaysReply() {
		for _, reply := range replies {
			if _, err := conn.Write(resp.Serialize(reply)); err != nil {
				return err
			}
		}
	}

	if !d.state.IsReplica() && cmd.PropagatesToReplicas() {
		payload := cmd.Serialize()
		errs := d.state.Propagate(func(c net.Conn) error {
			_, err := c.Write(payload)
			return err
		})
		for _, err := range errs {
			d.log.WithError(err).Warn("dispatch: failed to propagate command to a replica")
		}
	}
	return nil
}
