package transport

import (
	"net"

	"github.com/google/uuid"

	"github.com/arlobridge/gnssframe/pkg/gnssframe/datagram"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/gnsserr"
	"github.com/arlobridge/gnssframe/pkg/gnssframe/trace"
)

// UDP carries the datagram envelope (spec.md §4.8, §6) over a UDP socket.
// A UDP value is a server when opened via ListenUDP (it learns its peer
// from the first received packet) or a client when opened via DialUDP.
type UDP struct {
	conn     *net.UDPConn
	peer     *net.UDPAddr
	sender   *datagram.Sender
	receiver datagram.Receiver
}

// SessionID returns the random identity this socket's Sender was given,
// for a caller to key per-stream logs/metrics by (spec.md's domain-stack
// notes: a forwarder multiplexing several streams distinguishes them by
// this id, not by anything carried on the wire).
func (u *UDP) SessionID() uuid.UUID { return u.sender.SessionID }

// ListenUDP opens a UDP server on "host:port" (an empty host binds all
// interfaces), matching spec.md §6's `-G host:port` flag family.
func ListenUDP(hostPort string) (*UDP, error) {
	addr, err := net.ResolveUDPAddr("udp", hostPort)
	if err != nil {
		return nil, gnsserr.Wrap(gnsserr.EINVAL, "udp resolve "+hostPort, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, gnsserr.Wrap(gnsserr.ENODATA, "udp listen "+hostPort, err)
	}
	sender := datagram.NewSender()
	trace.T(3, "transport: udp listening on %s (session %s)\n", hostPort, sender.SessionID)
	return &UDP{conn: conn, sender: sender}, nil
}

// DialUDP opens a UDP client connected to "host:port" (spec.md §6's
// `-Y host:port` flag).
func DialUDP(hostPort string) (*UDP, error) {
	addr, err := net.ResolveUDPAddr("udp", hostPort)
	if err != nil {
		return nil, gnsserr.Wrap(gnsserr.EINVAL, "udp resolve "+hostPort, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, gnsserr.Wrap(gnsserr.ENODATA, "udp dial "+hostPort, err)
	}
	sender := datagram.NewSender()
	trace.T(3, "transport: udp dialed %s (session %s)\n", hostPort, sender.SessionID)
	return &UDP{conn: conn, peer: addr, sender: sender}, nil
}

// Send stamps payload with the next outgoing sequence number and writes
// the envelope to the peer: the dialed address for a client socket, or
// the last address Receive() saw for a server socket. A server socket
// that has not received anything yet has no peer, and Send returns the
// write error.
func (u *UDP) Send(payload []byte) error {
	buf := make([]byte, 4+len(payload))
	n, err := u.sender.Encode(buf, payload)
	if err != nil {
		return err
	}
	if u.peer != nil && u.conn.RemoteAddr() == nil {
		_, err = u.conn.WriteToUDP(buf[:n], u.peer)
	} else {
		_, err = u.conn.Write(buf[:n])
	}
	return err
}

// Receive reads one envelope and returns its payload, or ok=false if the
// envelope was rejected as out-of-order (spec.md §4.8's accounting).
func (u *UDP) Receive(buf []byte) (payload []byte, ok bool, err error) {
	n, peer, rerr := u.conn.ReadFromUDP(buf)
	if rerr != nil {
		return nil, false, gnsserr.Wrap(gnsserr.ENODATA, "udp read", rerr)
	}
	u.peer = peer
	return u.receiver.Accept(buf[:n])
}

func (u *UDP) Close() error { return u.conn.Close() }

// Stats reports the receiver's current missing/out-of-order counters.
func (u *UDP) Stats() (missing, outOfOrder uint64) {
	return u.receiver.Missing, u.receiver.OutOfOrder
}
