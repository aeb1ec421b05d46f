package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/tandem/internal/engine"
	"github.com/roach88/tandem/internal/model"
	"github.com/roach88/tandem/internal/store"
	"github.com/roach88/tandem/internal/testutil"
)

// Harness drives one scenario against an isolated engine.
type Harness struct {
	store    *store.Store
	engine   *engine.Engine
	recorder *testutil.Recorder
}

// Run executes a scenario in a fresh in-memory store and returns its
// transcript. Engine errors are part of the transcript; the returned error
// is reserved for failures of the harness itself.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	pol, err := sc.ResolvePolicy()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		engine:   engine.New(st, pol),
		recorder: testutil.NewRecorder(),
	}

	result := NewResult()
	for i, step := range sc.Steps {
		entry, err := h.runStep(ctx, i+1, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		result.Transcript = append(result.Transcript, entry)
	}

	failures, err := checkExpectations(ctx, st, sc)
	if err != nil {
		return nil, err
	}
	for _, msg := range failures {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) runStep(ctx context.Context, n int, step Step) (Entry, error) {
	id := model.UserID(step.User)

	current, err := h.currentMessage(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	resp, err := step.response(current)
	if err != nil {
		return Entry{}, err
	}
	target, _ := model.ReactionTarget(resp)

	if step.FailRender {
		h.recorder.FailNext(id, 1)
	}

	entry := Entry{Step: n, User: id, Input: step.describe(target)}

	out, herr := h.engine.Handle(ctx, id, resp, h.recorder)
	if out.Action != nil {
		entry.Action = out.Action.String()
	}
	if out.Reply != nil {
		entry.Deliveries = append(entry.Deliveries, h.message("reply", *out.Reply))
	}
	if out.Interrupt != nil {
		entry.Deliveries = append(entry.Deliveries, h.message("interrupt", *out.Interrupt))
	}
	if herr != nil {
		entry.Error = herr.Error()
	} else if out.Reply == nil {
		entry.Ignored = true
	}
	return entry, nil
}

// currentMessage returns the message id carrying id's current prompt, or
// zero when id is unknown or has never been prompted.
func (h *Harness) currentMessage(ctx context.Context, id model.UserID) (model.MessageID, error) {
	u, err := h.store.User(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if u.PromptMessage == nil {
		return 0, nil
	}
	return u.PromptMessage.MessageID, nil
}

func (h *Harness) message(role string, d engine.Delivery) Message {
	m := Message{
		Role:      role,
		Recipient: d.Recipient,
		MessageID: d.MessageID,
		Prompt:    d.Prompt,
	}
	for _, r := range h.recorder.Rendered() {
		if r.MessageID == d.MessageID {
			m.Text = r.Text
			m.Reactions = r.Reactions
			break
		}
	}
	return m
}
