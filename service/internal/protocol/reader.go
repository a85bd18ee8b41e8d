// internal/protocol/reader.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	engine "github.com/CodeIngame/OceanOfCode/engine"
)

// ErrMalformedTurn marks referee input that does not follow the protocol.
var ErrMalformedTurn = errors.New("malformed turn input")

// Header is the startup block: dimensions, our player id and the map rows.
type Header struct {
	Width  int
	Height int
	MyID   int
	Rows   []string
}

// Grid builds the terrain described by the header.
func (h Header) Grid() (*engine.Grid, error) {
	return engine.NewGrid(h.Width, h.Height, h.Rows)
}

// Turn is one decoded turn plus the raw lines it came from.
type Turn struct {
	Snapshot engine.Snapshot
	Lines    []string
}

// Reader decodes referee input from a LineConn.
type Reader struct {
	conn LineConn
}

func NewReader(conn LineConn) *Reader {
	return &Reader{conn: conn}
}

// ReadHeader reads "width height myId" followed by height map rows.
func (r *Reader) ReadHeader(ctx context.Context) (Header, error) {
	line, err := r.next(ctx)
	if err != nil {
		return Header{}, err
	}
	f := strings.Fields(line)
	if len(f) != 3 {
		return Header{}, fmt.Errorf("%w: header %q", ErrMalformedTurn, line)
	}
	nums, err := atoiAll(f)
	if err != nil || nums[0] <= 0 || nums[1] <= 0 {
		return Header{}, fmt.Errorf("%w: header %q", ErrMalformedTurn, line)
	}
	h := Header{Width: nums[0], Height: nums[1], MyID: nums[2]}
	for i := 0; i < h.Height; i++ {
		row, err := r.next(ctx)
		if err != nil {
			return Header{}, unexpected(err, "map row")
		}
		h.Rows = append(h.Rows, strings.TrimSpace(row))
	}
	return h, nil
}

// ReadTurn reads the three lines of a turn. io.EOF is returned unwrapped
// when the input ends cleanly between turns.
func (r *Reader) ReadTurn(ctx context.Context) (Turn, error) {
	lines := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		line, err := r.next(ctx)
		if err != nil {
			if i == 0 {
				return Turn{}, err
			}
			return Turn{}, unexpected(err, "turn line")
		}
		lines = append(lines, line)
	}
	s, err := ParseTurn(lines[0], lines[1], lines[2])
	if err != nil {
		return Turn{}, err
	}
	return Turn{Snapshot: s, Lines: lines}, nil
}

// next skips blank lines.
func (r *Reader) next(ctx context.Context) (string, error) {
	for {
		line, err := r.conn.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
}

// ParseTurn decodes the stats line, the sonar line and the opponent line.
// The stats line carries either "x y" or all eight fields.
func ParseTurn(stats, sonar, orders string) (engine.Snapshot, error) {
	f := strings.Fields(stats)
	if len(f) != 2 && len(f) != 8 {
		return engine.Snapshot{}, fmt.Errorf("%w: stats %q", ErrMalformedTurn, stats)
	}
	nums, err := atoiAll(f)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("%w: stats %q: %v", ErrMalformedTurn, stats, err)
	}

	s := engine.Snapshot{
		Position:       engine.Pos(nums[0], nums[1]),
		SonarResult:    strings.TrimSpace(sonar),
		OpponentOrders: strings.TrimSpace(orders),
	}
	if len(nums) == 8 {
		s.HasStats = true
		s.MyHP, s.OppHP = nums[2], nums[3]
		s.Cooldowns[engine.DeviceTorpedo] = max(nums[4], 0)
		s.Cooldowns[engine.DeviceSonar] = max(nums[5], 0)
		s.Cooldowns[engine.DeviceSilence] = max(nums[6], 0)
		s.Cooldowns[engine.DeviceMine] = max(nums[7], 0)
	}

	switch s.SonarResult {
	case "NA", "Y", "N":
	default:
		return engine.Snapshot{}, fmt.Errorf("%w: sonar result %q", ErrMalformedTurn, sonar)
	}
	if s.OpponentOrders == "" {
		s.OpponentOrders = "NA"
	}
	return s, nil
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func unexpected(err error, what string) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: input ended inside %s: %w", ErrMalformedTurn, what, io.ErrUnexpectedEOF)
	}
	return err
}
