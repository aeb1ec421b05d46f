package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/tandem/internal/model"
)

// ErrRenderFailed is the error returned by a Recorder told to fail.
var ErrRenderFailed = errors.New("render failed")

// Rendered is one call to Recorder.Render.
type Rendered struct {
	Recipient model.UserID
	Text      string
	Reactions []model.Emoji
	MessageID model.MessageID
}

// Recorder is an in-memory renderer. It assigns message ids from a
// Sequence and remembers everything it rendered.
//
// Thread-safety: safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	seq      *Sequence
	rendered []Rendered
	notices  map[model.UserID][]string
	failFor  map[model.UserID]int
	panicFor map[model.UserID]bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		seq:      NewSequence(),
		notices:  make(map[model.UserID][]string),
		failFor:  make(map[model.UserID]int),
		panicFor: make(map[model.UserID]bool),
	}
}

// Render records the prompt and returns a fresh message id.
func (r *Recorder) Render(ctx context.Context, recipient model.UserID, text string, reactions []model.Emoji) (model.MessageID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.panicFor[recipient] {
		delete(r.panicFor, recipient)
		panic("recorder: render panic for " + recipient.String())
	}
	if r.failFor[recipient] > 0 {
		r.failFor[recipient]--
		return 0, ErrRenderFailed
	}

	id := r.seq.Next()
	r.rendered = append(r.rendered, Rendered{
		Recipient: recipient,
		Text:      text,
		Reactions: append([]model.Emoji(nil), reactions...),
		MessageID: id,
	})
	return id, nil
}

// Notify records an out-of-band notice such as an internal error report.
func (r *Recorder) Notify(ctx context.Context, recipient model.UserID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices[recipient] = append(r.notices[recipient], text)
	return nil
}

// FailNext makes the next n renders to recipient fail with ErrRenderFailed.
func (r *Recorder) FailNext(recipient model.UserID, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[recipient] += n
}

// PanicNext makes the next render to recipient panic.
func (r *Recorder) PanicNext(recipient model.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panicFor[recipient] = true
}

// Rendered returns a copy of everything rendered so far, in order.
func (r *Recorder) Rendered() []Rendered {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Rendered(nil), r.rendered...)
}

// Last returns the most recent render to recipient.
func (r *Recorder) Last(recipient model.UserID) (Rendered, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rendered) - 1; i >= 0; i-- {
		if r.rendered[i].Recipient == recipient {
			return r.rendered[i], true
		}
	}
	return Rendered{}, false
}

// Notices returns the notices sent to recipient.
func (r *Recorder) Notices(recipient model.UserID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices[recipient]...)
}
