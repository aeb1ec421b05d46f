package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/tandem/internal/model"
)

// Sink accepts parsed responses. Implemented by *dispatch.Dispatcher.
type Sink interface {
	Enqueue(id model.UserID, r model.Response) (token string, ok bool)
}

// Read parses lines from in and forwards them to sink until in is exhausted
// or ctx is cancelled. Malformed lines are reported to errOut and skipped.
func Read(ctx context.Context, in io.Reader, sink Sink, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++

		id, resp, err := ParseLine(scanner.Text())
		if errors.Is(err, ErrSkip) {
			continue
		}
		if err != nil {
			fmt.Fprintf(errOut, "line %d: %v\n", lineNo, err)
			continue
		}

		token, ok := sink.Enqueue(id, resp)
		if !ok {
			return fmt.Errorf("line %d: dispatcher closed", lineNo)
		}
		slog.Debug("queued response", "event", token, "user", id, "line", lineNo)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
