package engine

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"signalbot/internal/strategy"
)

// Decision is one evaluated price, written as a single NDJSON line.
type Decision struct {
	RunID     string          `json:"run_id"`
	Timestamp time.Time       `json:"timestamp"`
	BarTime   time.Time       `json:"bar_time"`
	Symbol    string          `json:"symbol"`
	Close     float64         `json:"close"`
	SMA       *float64        `json:"sma,omitempty"`
	Strategy  string          `json:"strategy"`
	Signal    strategy.Signal `json:"signal"`
	WindowLen int             `json:"window_len"`
	Window    []float64       `json:"window"`
}

type DecisionLogger struct {
	runID  string
	closer io.Closer
	writer *bufio.Writer
	mu     sync.Mutex
}

func NewDecisionLogger(path string, runID string) (*DecisionLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return NewDecisionWriter(file, runID), nil
}

// NewDecisionWriter logs to w; w is closed by Close when it is an io.Closer.
func NewDecisionWriter(w io.Writer, runID string) *DecisionLogger {
	d := &DecisionLogger{
		runID:  runID,
		writer: bufio.NewWriter(w),
	}
	if c, ok := w.(io.Closer); ok {
		d.closer = c
	}
	return d
}

func (d *DecisionLogger) RunID() string {
	return d.runID
}

func (d *DecisionLogger) Append(decision Decision) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	payload, err := json.Marshal(decision)
	if err != nil {
		return err
	}
	if _, err := d.writer.Write(append(payload, '\n')); err != nil {
		return err
	}
	return d.writer.Flush()
}

func (d *DecisionLogger) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writer.Flush(); err != nil {
		if d.closer != nil {
			_ = d.closer.Close()
		}
		return err
	}
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
