// internal/protocol/conn.go
package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/coder/websocket"
)

// LineConn carries the referee protocol one line at a time. ReadLine
// returns io.EOF once the referee is gone.
type LineConn interface {
	ReadLine(ctx context.Context) (string, error)
	WriteLine(ctx context.Context, line string) error
	Close() error
}

// maxLine bounds a single protocol line; a 15x15 map row or an action line
// is far shorter.
const maxLine = 64 * 1024

// ---------------------------------------------------------------------------
// Stdio
// ---------------------------------------------------------------------------

// StdioConn reads lines from r and writes lines to w, the CodinGame way.
type StdioConn struct {
	scanner *bufio.Scanner
	out     *bufio.Writer
	closer  io.Closer
}

// NewStdioConn wraps a reader/writer pair. If r implements io.Closer it is
// closed by Close.
func NewStdioConn(r io.Reader, w io.Writer) *StdioConn {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxLine)
	c := &StdioConn{scanner: s, out: bufio.NewWriter(w)}
	if cl, ok := r.(io.Closer); ok {
		c.closer = cl
	}
	return c
}

// ReadLine returns the next line without its terminator. A blocked read is
// not interrupted by ctx; cancellation is observed between lines.
func (c *StdioConn) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimRight(c.scanner.Text(), "\r"), nil
}

// WriteLine writes line plus a newline and flushes, so the referee sees it.
func (c *StdioConn) WriteLine(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.out.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("writing stdout: %w", err)
	}
	return c.out.Flush()
}

func (c *StdioConn) Close() error {
	if err := c.out.Flush(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// ---------------------------------------------------------------------------
// Websocket
// ---------------------------------------------------------------------------

// WSConn speaks the line protocol over a websocket. An incoming text
// message may hold several newline-separated lines; each outgoing line is
// sent as its own message.
type WSConn struct {
	conn *websocket.Conn

	mu      sync.Mutex
	pending []string
}

// DialWS connects to a remote referee.
func DialWS(ctx context.Context, url string) (*WSConn, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	c.SetReadLimit(maxLine)
	return NewWSConn(c), nil
}

// NewWSConn wraps an established websocket connection.
func NewWSConn(c *websocket.Conn) *WSConn {
	return &WSConn{conn: c}
}

func (c *WSConn) ReadLine(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.pending) == 0 {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return "", io.EOF
			}
			return "", fmt.Errorf("reading websocket: %w", err)
		}
		if typ != websocket.MessageText {
			continue
		}
		text := strings.TrimSuffix(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		c.pending = append(c.pending, strings.Split(text, "\n")...)
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func (c *WSConn) WriteLine(ctx context.Context, line string) error {
	if err := c.conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
		return fmt.Errorf("writing websocket: %w", err)
	}
	return nil
}

func (c *WSConn) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "bot finished")
	var ce websocket.CloseError
	if errors.As(err, &ce) {
		return nil
	}
	return err
}
