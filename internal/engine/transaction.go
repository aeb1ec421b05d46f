package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/tandem/internal/model"
	"github.com/roach88/tandem/internal/store"
)

// Transaction is a prepared prompt update awaiting delivery. It holds an
// open store transaction: the caller must eventually Commit or Abandon it,
// and should do so promptly since it blocks every other update.
type Transaction struct {
	engine    *Engine
	tx        *store.Tx
	recipient model.UserID
	prompt    model.Prompt
	action    model.Action

	mu   sync.Mutex
	done bool
}

func newTransaction(e *Engine, tx *store.Tx, recipient model.UserID, prompt model.Prompt, action model.Action) *Transaction {
	return &Transaction{
		engine:    e,
		tx:        tx,
		recipient: recipient,
		prompt:    prompt,
		action:    action,
	}
}

// Prompt is the prompt to show.
func (t *Transaction) Prompt() model.Prompt { return t.prompt }

// Recipient is the participant the prompt is for.
func (t *Transaction) Recipient() model.UserID { return t.recipient }

// Action is the action applied in this transaction, or nil.
func (t *Transaction) Action() model.Action { return t.action }

// Reactions lists the reactions to attach to the rendered prompt.
func (t *Transaction) Reactions() []model.Emoji { return t.prompt.Reactions() }

// Text renders the prompt. Participants the prompt refers to are read inside
// the open transaction, so the text reflects the uncommitted state.
func (t *Transaction) Text(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return "", ErrTransactionDone
	}
	return t.engine.promptText(ctx, t.tx, t.prompt)
}

// Commit records that the prompt was delivered as messageID and commits
// everything done in the transaction. On failure the transaction is rolled
// back.
func (t *Transaction) Commit(ctx context.Context, messageID model.MessageID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTransactionDone
	}
	t.done = true

	pm := model.PromptMessage{Prompt: t.prompt, MessageID: messageID}
	if err := t.tx.SetPromptMessage(ctx, t.recipient, pm); err != nil {
		t.tx.Rollback()
		return fmt.Errorf("commit prompt for %d: %w", t.recipient, classify(t.recipient, err))
	}
	if err := t.tx.Commit(); err != nil {
		t.tx.Rollback()
		return fmt.Errorf("commit prompt for %d: %w", t.recipient, err)
	}

	slog.Info("prompt committed", "user", t.recipient, "prompt", t.prompt, "message", messageID)
	return nil
}

// Abandon rolls the transaction back. It is safe to call more than once and
// after Commit.
func (t *Transaction) Abandon() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil {
		slog.Error("rollback failed", "user", t.recipient, "error", err)
	}
	slog.Debug("transaction abandoned", "user", t.recipient, "prompt", t.prompt)
}
