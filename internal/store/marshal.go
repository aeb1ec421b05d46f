package store

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/roach88/tandem/internal/model"
)

// encodePrompt splits a prompt into its persisted discriminant and payload.
// The payload is NULL for prompts without a subject.
func encodePrompt(p model.Prompt) (kind int64, payload sql.NullInt64, err error) {
	if !p.Kind.Valid() {
		return 0, sql.NullInt64{}, fmt.Errorf("encode prompt: unknown kind %d", int(p.Kind))
	}
	if p.Kind.HasSubject() {
		payload = sql.NullInt64{Int64: int64(p.Subject), Valid: true}
	}
	return int64(p.Kind), payload, nil
}

// decodePrompt reverses encodePrompt.
func decodePrompt(id model.UserID, kind int64, payload sql.NullInt64) (model.Prompt, error) {
	k := model.PromptKind(kind)
	if !k.Valid() {
		return model.Prompt{}, &DecodeError{User: id, Column: "prompt_kind", Reason: fmt.Sprintf("unknown kind %d", kind)}
	}
	if !k.HasSubject() {
		return model.Prompt{Kind: k}, nil
	}
	if !payload.Valid {
		return model.Prompt{}, &DecodeError{User: id, Column: "prompt_payload", Reason: fmt.Sprintf("%s requires a subject", k)}
	}
	return model.Prompt{Kind: k, Subject: model.UserID(payload.Int64)}, nil
}

func encodeURL(u *url.URL) sql.NullString {
	if u == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: u.String(), Valid: true}
}

func decodeURL(id model.UserID, raw sql.NullString) (*url.URL, error) {
	if !raw.Valid {
		return nil, nil
	}
	u, err := url.Parse(raw.String)
	if err != nil {
		return nil, &DecodeError{User: id, Column: "profile_image_url", Reason: err.Error()}
	}
	return u, nil
}
