package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/tandem/internal/model"
)

// Renderer delivers a prompt to a participant and returns the id of the
// message that carries it. Implemented by transports.
type Renderer interface {
	Render(ctx context.Context, recipient model.UserID, text string, reactions []model.Emoji) (model.MessageID, error)
}

// Delivery describes a committed prompt.
type Delivery struct {
	Recipient model.UserID
	Prompt    model.Prompt
	MessageID model.MessageID
}

// Outcome reports what Handle did.
type Outcome struct {
	// Action is the action applied for the responding participant, or nil.
	Action model.Action

	// Reply is the prompt delivered to the responding participant. Nil when
	// the response was a reaction to a stale prompt.
	Reply *Delivery

	// Interrupt is the prompt pushed to an accepted candidate, if any.
	Interrupt *Delivery
}

// Deliver renders tx with r and commits it. Any error, and any panic from
// the renderer, abandons the transaction; panics are re-raised after the
// rollback.
func Deliver(ctx context.Context, tx *Transaction, r Renderer) (d Delivery, err error) {
	defer func() {
		if p := recover(); p != nil {
			tx.Abandon()
			panic(p)
		}
		if err != nil {
			tx.Abandon()
		}
	}()

	text, err := tx.Text(ctx)
	if err != nil {
		return Delivery{}, fmt.Errorf("render text: %w", err)
	}

	messageID, err := r.Render(ctx, tx.Recipient(), text, tx.Reactions())
	if err != nil {
		return Delivery{}, fmt.Errorf("render prompt %s to %d: %w", tx.Prompt(), tx.Recipient(), err)
	}

	if err := tx.Commit(ctx, messageID); err != nil {
		return Delivery{}, err
	}

	return Delivery{Recipient: tx.Recipient(), Prompt: tx.Prompt(), MessageID: messageID}, nil
}

// Handle runs the whole update cycle for one response: submit, deliver the
// reply, and for an accepted candidate prepare and deliver the interrupt.
//
// An error delivering the interrupt is returned alongside the Outcome for
// the reply, which has already been committed.
func (e *Engine) Handle(ctx context.Context, id model.UserID, resp model.Response, r Renderer) (Outcome, error) {
	tx, err := e.Submit(ctx, id, resp)
	if err != nil {
		return Outcome{}, err
	}
	if tx == nil {
		return Outcome{}, nil
	}

	out := Outcome{Action: tx.Action()}
	reply, err := Deliver(ctx, tx, r)
	if err != nil {
		return Outcome{}, err
	}
	out.Reply = &reply

	accept, ok := out.Action.(model.AcceptCandidate)
	if !ok {
		return out, nil
	}

	itx, err := e.PrepareInterrupt(ctx, id, accept.ID)
	if err != nil {
		return out, fmt.Errorf("interrupt %d: %w", accept.ID, err)
	}
	if itx == nil {
		return out, nil
	}

	interrupt, err := Deliver(ctx, itx, r)
	if err != nil {
		return out, fmt.Errorf("interrupt %d: %w", accept.ID, err)
	}
	out.Interrupt = &interrupt
	slog.Info("interrupt delivered", "from", id, "to", accept.ID, "prompt", interrupt.Prompt)

	return out, nil
}
