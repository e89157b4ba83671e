package telnet

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Telnet IAC (Interpret As Command) constants per RFC 854.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	GA   byte = 249 // Go Ahead
	EL   byte = 248 // Erase Line
	EC   byte = 247 // Erase Character
	SE   byte = 240 // Sub-negotiation End

	OptSuppressGoAhead byte = 3
)

// MaxLineLength bounds a single input line in bytes.
const MaxLineLength = 1024

// ErrLineTooLong is returned when a client sends more than MaxLineLength
// bytes without a line terminator.
var ErrLineTooLong = errors.New("telnet: line too long")

// Conn wraps a TCP connection with Telnet protocol handling.
// Reads are line oriented and strip IAC sequences; writes are serialized.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
	plain        bool
}

// NewConn wraps a raw TCP connection with Telnet protocol handling.
//
// Precondition: raw must be a valid, open network connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate asks the client to suppress go-ahead so prompts render on the
// same line as the cursor.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// SetPlain disables ANSI styling in every subsequent write.
func (c *Conn) SetPlain(plain bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plain = plain
}

// ReadLine reads one line of input. IAC sequences are dropped, backspace and
// DEL erase the previous character, and other control bytes are ignored.
// The line terminator is not included.
//
// Postcondition: Returns the line, or an error (io.EOF, a timeout, or ErrLineTooLong).
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	line := make([]byte, 0, 64)
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return string(line), err
		}

		switch {
		case b == IAC:
			cmd, err := c.skipCommand()
			if err != nil {
				return string(line), err
			}
			switch cmd {
			case EC:
				line = eraseRune(line)
			case EL:
				line = line[:0]
			}
			continue
		case b == '\n':
			return string(line), nil
		case b == '\r':
			next, err := c.reader.Peek(1)
			if err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return string(line), nil
		case b == '\b' || b == 0x7f:
			line = eraseRune(line)
			continue
		case b < 32 && b != '\t':
			continue
		}

		if len(line) >= MaxLineLength {
			return "", ErrLineTooLong
		}
		line = append(line, b)
	}
}

// skipCommand consumes the rest of an IAC sequence and returns its command byte.
func (c *Conn) skipCommand() (byte, error) {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return 0, err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
	case SB:
		var prev byte
		for {
			b, rerr := c.reader.ReadByte()
			if rerr != nil {
				return cmd, rerr
			}
			if prev == IAC && b == SE {
				break
			}
			prev = b
		}
	}
	return cmd, err
}

// eraseRune drops the last UTF-8 character, so Cyrillic input edits cleanly.
func eraseRune(line []byte) []byte {
	if len(line) == 0 {
		return line
	}
	_, size := utf8.DecodeLastRune(line)
	return line[:len(line)-size]
}

// WriteLine sends text followed by \r\n. Embedded newlines are normalized so
// multi-line blocks render correctly on every client.
func (c *Conn) WriteLine(text string) error {
	text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n")
	return c.writeString(text + "\r\n")
}

// WritePrompt sends a prompt without a trailing newline.
func (c *Conn) WritePrompt(prompt string) error {
	return c.writeString(prompt)
}

func (c *Conn) writeString(s string) error {
	c.mu.Lock()
	plain := c.plain
	c.mu.Unlock()
	if plain {
		s = StripANSI(s)
	}
	return c.write([]byte(s))
}

func (c *Conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the underlying TCP connection. It is safe to call more than once.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
