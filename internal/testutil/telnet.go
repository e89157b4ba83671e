// Package testutil holds helpers shared by the calculator's network tests.
package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/combicalc/internal/frontend/telnet"
)

// TelnetClient is a Telnet test client for calculator sessions. Output is
// buffered across ReadUntil calls and ANSI colour codes are stripped.
type TelnetClient struct {
	conn    net.Conn
	t       *testing.T
	timeout time.Duration
	buffer  string
}

// NewTelnetClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test. The
// connection is closed on test cleanup.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Cleanup(func() {
		conn.Close()
	})

	return &TelnetClient{conn: conn, t: t, timeout: 2 * time.Second}
}

// Conn returns the underlying connection for raw reads.
func (c *TelnetClient) Conn() net.Conn { return c.conn }

// ReadUntil reads until substr appears in the stripped output and returns
// everything up to and including the match. Text after the match stays
// buffered for the next call.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the consumed output, or fails the test on timeout.
func (c *TelnetClient) ReadUntil(substr string) string {
	c.t.Helper()
	if idx := strings.Index(c.buffer, substr); idx >= 0 {
		return c.take(idx + len(substr))
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	tmp := make([]byte, 4096)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.buffer += telnet.StripANSI(string(tmp[:n]))
			if idx := strings.Index(c.buffer, substr); idx >= 0 {
				return c.take(idx + len(substr))
			}
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, c.buffer, err)
		}
	}
}

func (c *TelnetClient) take(end int) string {
	out := c.buffer[:end]
	c.buffer = c.buffer[end:]
	return out
}

// Send writes a line of text to the server, appending \r\n.
//
// Precondition: text should not contain trailing newline characters.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
