package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/tandem/internal/model"
	"github.com/roach88/tandem/internal/policy"
	"github.com/roach88/tandem/internal/store"
)

// Engine prepares update transactions against a store.
//
// Thread-safety model:
//   - All methods are safe for concurrent use
//   - Each prepared Transaction belongs to the goroutine that holds it
type Engine struct {
	store  *store.Store
	policy policy.Policy
}

// New creates an Engine over s using the matching policy pol.
func New(s *store.Store, pol policy.Policy) *Engine {
	return &Engine{store: s, policy: pol}
}

// Policy returns the matching policy the engine was built with.
func (e *Engine) Policy() policy.Policy {
	return e.policy
}

// Submit handles a response from participant id: it creates the participant
// on first contact, interprets r against their current prompt and prepares
// the resulting update, all in one transaction.
//
// Submit returns a nil Transaction and nil error when r is a reaction to a
// message other than the participant's current prompt.
func (e *Engine) Submit(ctx context.Context, id model.UserID, r model.Response) (*Transaction, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	u, err := tx.GetOrCreate(ctx, id)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("submit: %w", classify(id, err))
	}

	if stale(u, r) {
		tx.Rollback()
		slog.Debug("ignoring reaction to stale prompt", "user", id, "current", u.PromptMessage.MessageID)
		return nil, nil
	}

	upd := u.Update(e.policy, r)
	slog.Debug("interpreted response", "user", id, "response", fmt.Sprintf("%T", r), "action", upd.Action, "next", upd.NextPrompt)

	return e.prepare(ctx, tx, id, upd)
}

// Prepare applies upd for participant id and resolves the prompt to show
// them. The returned Transaction holds the store transaction open.
func (e *Engine) Prepare(ctx context.Context, id model.UserID, upd model.Update) (*Transaction, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	if _, err := tx.User(ctx, id); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("prepare: %w", classify(id, err))
	}
	return e.prepare(ctx, tx, id, upd)
}

// prepare takes ownership of tx: on error it is rolled back.
func (e *Engine) prepare(ctx context.Context, tx *store.Tx, id model.UserID, upd model.Update) (*Transaction, error) {
	if upd.Action != nil {
		if err := e.apply(ctx, tx, id, upd.Action); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("apply %s: %w", upd.Action, err)
		}
	}

	prompt, err := e.resolve(ctx, tx, id, upd.NextPrompt)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("resolve prompt for %d: %w", id, err)
	}

	return newTransaction(e, tx, id, prompt, upd.Action), nil
}

func (e *Engine) apply(ctx context.Context, tx *store.Tx, id model.UserID, action model.Action) error {
	var err error
	switch a := action.(type) {
	case model.AcknowledgeWelcome:
		err = classify(id, tx.Welcome(ctx, id))
	case model.SetBio:
		err = classify(id, tx.SetBio(ctx, id, a.Text))
	case model.SetProfileImage:
		err = classify(id, tx.SetProfileImage(ctx, id, a.URL))
	case model.AcceptCandidate:
		err = classify(a.ID, tx.Respond(ctx, id, a.ID, true))
	case model.DeclineCandidate:
		err = classify(a.ID, tx.Respond(ctx, id, a.ID, false))
	case model.DismissMatch:
		err = tx.DismissMatch(ctx, id, a.ID)
	default:
		err = fmt.Errorf("unknown action %T", action)
	}
	return err
}

// resolve replaces a quiescent intrinsic prompt with an outstanding match,
// or failing that an eligible candidate.
func (e *Engine) resolve(ctx context.Context, tx *store.Tx, id model.UserID, next model.Prompt) (model.Prompt, error) {
	if !next.Quiescent() {
		return next, nil
	}

	other, ok, err := tx.FindMatch(ctx, id)
	if err != nil {
		return model.Prompt{}, err
	}
	if ok {
		return model.Match(other), nil
	}

	other, ok, err = tx.FindCandidate(ctx, id, e.candidateQuery())
	if err != nil {
		return model.Prompt{}, err
	}
	if ok {
		return model.Candidate(other), nil
	}

	return model.Quiescent, nil
}

func (e *Engine) candidateQuery() store.CandidateQuery {
	return store.CandidateQuery{
		RequireProfileImage: e.policy.RequireProfileImage,
		ExcludeDecliners:    e.policy.Exclusion == policy.ExcludeDecliners,
		PreferAccepted:      e.policy.PreferAccepted,
		RequireQuiescent:    e.policy.RequireQuiescentCandidates,
	}
}

// PrepareInterrupt decides whether candidate must be shown a fresh prompt
// now that acceptor has accepted them:
//   - candidate already accepted acceptor: Match{acceptor}
//   - candidate already declined acceptor: no interrupt
//   - candidate has not answered: Candidate{acceptor}
//
// The interrupt is suppressed when candidate's current prompt is at least as
// urgent. A nil Transaction means there is nothing to send.
func (e *Engine) PrepareInterrupt(ctx context.Context, acceptor, candidate model.UserID) (*Transaction, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare interrupt: %w", err)
	}

	u, err := tx.User(ctx, candidate)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("prepare interrupt: %w", classify(candidate, err))
	}

	entry, answered, err := tx.Entry(ctx, candidate, acceptor)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("prepare interrupt: %w", err)
	}

	var interrupt model.Prompt
	switch {
	case answered && entry.Accepted:
		interrupt = model.Match(acceptor)
	case answered:
		tx.Rollback()
		slog.Debug("no interrupt: candidate declined", "acceptor", acceptor, "candidate", candidate)
		return nil, nil
	default:
		interrupt = model.Candidate(acceptor)
	}

	if current, ok := u.CurrentPrompt(); ok && interrupt.CannotInterrupt(current) {
		tx.Rollback()
		slog.Debug("interrupt suppressed", "candidate", candidate, "interrupt", interrupt, "current", current)
		return nil, nil
	}

	return newTransaction(e, tx, candidate, interrupt, nil), nil
}

// PromptText renders p outside any update transaction.
func (e *Engine) PromptText(ctx context.Context, p model.Prompt) (string, error) {
	return e.promptText(ctx, e.store, p)
}

func stale(u model.User, r model.Response) bool {
	target, ok := model.ReactionTarget(r)
	if !ok || target == 0 || u.PromptMessage == nil {
		return false
	}
	return target != u.PromptMessage.MessageID
}
