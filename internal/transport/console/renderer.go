package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/tandem/internal/model"
)

// Renderer writes prompts to w, one block per message, and hands out
// increasing message ids. Consecutive renders are spaced at least interval
// apart, mirroring the send rate a chat platform allows.
type Renderer struct {
	limiter *rate.Limiter

	mu   sync.Mutex
	w    io.Writer
	last model.MessageID
}

// NewRenderer creates a renderer writing to w. An interval of zero disables
// rate limiting.
func NewRenderer(w io.Writer, interval time.Duration) *Renderer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Renderer{
		limiter: rate.NewLimiter(limit, 1),
		w:       w,
	}
}

// Render writes a prompt block and returns its message id.
func (r *Renderer) Render(ctx context.Context, recipient model.UserID, text string, reactions []model.Emoji) (model.MessageID, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.last + 1
	var b strings.Builder
	fmt.Fprintf(&b, "[%d -> %d]\n", id, recipient)
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(reactions) > 0 {
		marks := make([]string, len(reactions))
		for i, e := range reactions {
			marks[i] = e.Char()
		}
		fmt.Fprintf(&b, "  (%s)\n", strings.Join(marks, " "))
	}

	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return 0, fmt.Errorf("write prompt: %w", err)
	}
	r.last = id
	return id, nil
}

// Notify writes a notice that is not a prompt and carries no message id.
func (r *Renderer) Notify(ctx context.Context, recipient model.UserID, text string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "[notice -> %d]\n", recipient)
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return fmt.Errorf("write notice: %w", err)
	}
	return nil
}
