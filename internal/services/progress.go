package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

// progressLog is the ordered, append-only log of one run. Every line goes to
// the structured log and the run record, and to out when set.
type progressLog struct {
	mu       sync.Mutex
	seq      int
	runID    string
	recorder RunRecorder
	out      io.Writer
	logger   *slog.Logger
}

func newProgressLog(runID string, recorder RunRecorder, out io.Writer, logger *slog.Logger) *progressLog {
	return &progressLog{runID: runID, recorder: recorder, out: out, logger: logger}
}

func (p *progressLog) Log(ctx context.Context, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.logger.Debug("Progress.", "seq", p.seq, "line", line)
	if p.out != nil {
		fmt.Fprintln(p.out, line)
	}
	entry := models.RunLogEntry{Seq: p.seq, Message: line, At: time.Now()}
	if err := p.recorder.AppendLog(ctx, p.runID, entry); err != nil {
		p.logger.Warn("Failed to store progress line.", "seq", p.seq, "error", err)
	}
}
