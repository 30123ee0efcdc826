package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

var ErrNotConnected = errors.New("not connected to server")

// Remote talks to a running txkv server over its line protocol.
type Remote struct {
	address string
	timeout time.Duration
	conn    net.Conn
	reader  *bufio.Reader
}

func NewRemote(address string, timeout time.Duration) *Remote {
	return &Remote{address: address, timeout: timeout}
}

// Connect establishes connection to the server
func (r *Remote) Connect() error {
	conn, err := net.DialTimeout("tcp", r.address, r.timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to txkv at %s: %w", r.address, err)
	}
	r.conn = conn
	r.reader = bufio.NewReader(conn)

	// A busy server answers with an error line instead of a session.
	reply, err := r.Execute("STATUS")
	if err == nil && strings.HasPrefix(reply, "error:") {
		err = errors.New(strings.TrimSpace(strings.TrimPrefix(reply, "error:")))
	}
	if err != nil {
		_ = r.Close()
		return fmt.Errorf("failed to open session at %s: %w", r.address, err)
	}
	return nil
}

// Execute sends one line and waits for the reply line.
func (r *Remote) Execute(line string) (string, error) {
	if r.conn == nil {
		return "", ErrNotConnected
	}

	if err := r.conn.SetDeadline(time.Now().Add(r.timeout)); err != nil {
		return "", err
	}
	if _, err := r.conn.Write([]byte(strings.TrimSpace(line) + "\n")); err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	reply, err := r.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return strings.TrimSuffix(reply, "\n"), nil
}

func (r *Remote) Close() error {
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}
