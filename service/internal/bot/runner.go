// internal/bot/runner.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/CodeIngame/OceanOfCode/engine"
	"github.com/CodeIngame/OceanOfCode/service/internal/models"
	"github.com/CodeIngame/OceanOfCode/service/internal/protocol"
)

// Recorder persists matches and turns. Implementations live in the
// database and cache packages.
type Recorder interface {
	SaveMatch(ctx context.Context, m models.Match) error
	RecordTurn(ctx context.Context, t models.TurnRecord) error
	Close() error
}

// Runner drives one match over a line connection.
type Runner struct {
	Log      *logrus.Logger
	Rules    engine.Rules
	Recorder Recorder // optional
}

// Run plays until the referee closes the input. A clean end of input is
// not an error.
func (r *Runner) Run(ctx context.Context, conn protocol.LineConn) error {
	reader := protocol.NewReader(conn)
	h, err := reader.ReadHeader(ctx)
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	grid, err := h.Grid()
	if err != nil {
		return fmt.Errorf("building grid: %w", err)
	}

	b := New(uuid.New(), grid, h.MyID, r.Rules, r.Log)
	start := b.Start()
	r.saveMatch(ctx, b.ID, h, start)
	if err := conn.WriteLine(ctx, start); err != nil {
		return fmt.Errorf("sending start position: %w", err)
	}

	for {
		turn, err := reader.ReadTurn(ctx)
		if errors.Is(err, io.EOF) {
			r.Log.WithField("match", b.ID.String()).Infof("Match %s: input closed after %d turns", b.ID, b.Match().Turn)
			return nil
		}
		if err != nil {
			return fmt.Errorf("turn %d: %w", b.Match().Turn+1, err)
		}

		line, rep := b.Play(turn.Snapshot)
		if err := conn.WriteLine(ctx, line); err != nil {
			return fmt.Errorf("turn %d: sending orders: %w", rep.Turn, err)
		}
		r.recordTurn(ctx, b.ID, turn.Lines, line, rep)
	}
}

func (r *Runner) saveMatch(ctx context.Context, id uuid.UUID, h protocol.Header, start string) {
	if r.Recorder == nil {
		return
	}
	m := models.Match{
		ID:        id,
		MyID:      h.MyID,
		Width:     h.Width,
		Height:    h.Height,
		Map:       h.Rows,
		Start:     start,
		StartedAt: time.Now().UTC(),
	}
	if err := r.Recorder.SaveMatch(ctx, m); err != nil {
		r.Log.WithError(err).Warnf("Match %s: failed to record match", id)
	}
}

func (r *Runner) recordTurn(ctx context.Context, id uuid.UUID, input []string, output string, rep TurnReport) {
	if r.Recorder == nil {
		return
	}
	t := models.TurnRecord{
		MatchID:       id,
		Turn:          rep.Turn,
		Input:         input,
		Output:        output,
		Mode:          rep.Belief.Mode.String(),
		Candidates:    rep.Belief.Candidates,
		HitCase:       rep.Belief.Hit.String(),
		ElapsedMicros: rep.Elapsed.Microseconds(),
		RecordedAt:    time.Now().UTC(),
	}
	if err := r.Recorder.RecordTurn(ctx, t); err != nil {
		r.Log.WithError(err).Warnf("Match %s: failed to record turn %d", id, rep.Turn)
	}
}
