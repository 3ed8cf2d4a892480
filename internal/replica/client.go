// Package replica drives the outbound replication handshake a process
// performs when started with --replicaof: connect to the master, PING,
// announce listening port and capabilities, request a full resync,
// then hand the socket off to the Dispatcher to receive the snapshot
// and the streamed command log.
package replica

import (
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"kvredis/internal/resp"
)

// handshakeReadTimeout bounds each reply read during the handshake;
// the full resync payload itself is read later by the Dispatcher under
// its own, shorter timeout.
const handshakeReadTimeout = 5 * time.Second

// Handshaker hands off a successfully-handshaken connection to the
// caller so it can be run through the Dispatcher with shouldReply=false.
type Handshaker func(conn net.Conn)

// Connect performs the strict handshake sequence against masterAddr
// and, on success, invokes handoff with the live socket. Any step
// failing aborts the attempt; the error is returned to the caller
// rather than crashing the process, matching the spec's requirement
// that a failed replication attempt not take down the host.
func Connect(masterAddr string, listeningPort int, log *logrus.Logger, handoff Handshaker) error {
	conn, err := net.Dial("tcp", masterAddr)
	if err != nil {
		return fmt.Errorf("replica: dial master %s: %w", masterAddr, err)
	}

	if err := step(conn, "PING", []resp.Message{resp.BulkStringFromString("PING")}, isSimpleString); err != nil {
		conn.Close()
		return err
	}

	portArg := fmt.Sprintf("%d", listeningPort)
	if err := step(conn, "REPLCONF listening-port", []resp.Message{
		resp.BulkStringFromString("REPLCONF"),
		resp.BulkStringFromString("listening-port"),
		resp.BulkStringFromString(portArg),
	}, isSimpleString); err != nil {
		conn.Close()
		return err
	}

	if err := step(conn, "REPLCONF capa", []resp.Message{
		resp.BulkStringFromString("REPLCONF"),
		resp.BulkStringFromString("capa"),
		resp.BulkStringFromString("psync2"),
	}, isSimpleString); err != nil {
		conn.Close()
		return err
	}

	// PSYNC's reply (FULLRESYNC + snapshot frame) is NOT read here; the
	// Dispatcher observes it once the socket is handed off below.
	psync := resp.Serialize(resp.Array([]resp.Message{
		resp.BulkStringFromString("PSYNC"),
		resp.BulkStringFromString("?"),
		resp.BulkStringFromString("-1"),
	}))
	if _, err := conn.Write(psync); err != nil {
		conn.Close()
		return fmt.Errorf("replica: sending PSYNC: %w", err)
	}

	log.WithField("master", masterAddr).Info("replica: handshake complete, handing off to dispatcher")
	handoff(conn)
	return nil
}

// step writes one handshake command and reads exactly one reply
// message, validating it with accept before proceeding.
func step(conn net.Conn, label string, args []resp.Message, accept func(resp.Message) bool) error {
	conn.SetReadDeadline(time.Now().Add(handshakeReadTimeout))
	if _, err := conn.Write(resp.Serialize(resp.Array(args))); err != nil {
		return fmt.Errorf("replica: sending %s: %w", label, err)
	}

	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("replica: reading %s reply: %w", label, err)
	}
	msg, _, err := resp.Parse(buf[:n], 0)
	if err != nil {
		return fmt.Errorf("replica: parsing %s reply: %w", label, err)
	}
	if !accept(msg) {
		return fmt.Errorf("replica: unexpected reply to %s: %+v", label, msg)
	}
	return nil
}

func isSimpleString(m resp.Message) bool { return m.Type == resp.TypeSimpleString }
