package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/tandem/internal/model"
	"github.com/roach88/tandem/internal/store"
)

// InvariantError reports a referential invariant that did not hold while
// preparing or rendering a prompt, such as a prompt naming a participant
// with no row.
//
// InvariantError includes structured fields for diagnostics.
type InvariantError struct {
	// Code identifies the error category.
	Code InvariantCode

	// Message is a human-readable description.
	Message string

	// User is the participant the invariant is about.
	User model.UserID

	// Err is the underlying cause, if any.
	Err error
}

// InvariantCode categorizes invariant errors.
type InvariantCode string

const (
	// ErrCodeUserUnknown indicates a referenced participant has no row.
	ErrCodeUserUnknown InvariantCode = "USER_UNKNOWN"

	// ErrCodeMissingBio indicates a prompt references a participant without a bio.
	ErrCodeMissingBio InvariantCode = "MISSING_BIO"

	// ErrCodeMissingProfileImage indicates a prompt references a participant
	// without a required profile image.
	ErrCodeMissingProfileImage InvariantCode = "MISSING_PROFILE_IMAGE"

	// ErrCodePromptDecode indicates a stored prompt could not be decoded.
	ErrCodePromptDecode InvariantCode = "PROMPT_DECODE"
)

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (user=%d): %v", e.Code, e.Message, e.User, e.Err)
	}
	return fmt.Sprintf("%s: %s (user=%d)", e.Code, e.Message, e.User)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// ErrTransactionDone is returned when a finished Transaction is used again.
var ErrTransactionDone = errors.New("transaction already committed or abandoned")

// IsUserUnknown returns true if the error is an unknown participant error.
// Uses errors.As to handle wrapped errors.
func IsUserUnknown(err error) bool {
	return hasCode(err, ErrCodeUserUnknown)
}

// IsMissingBio returns true if the error is a missing bio error.
func IsMissingBio(err error) bool {
	return hasCode(err, ErrCodeMissingBio)
}

// IsMissingProfileImage returns true if the error is a missing profile image error.
func IsMissingProfileImage(err error) bool {
	return hasCode(err, ErrCodeMissingProfileImage)
}

// IsPromptDecode returns true if the error is a stored prompt decode error.
func IsPromptDecode(err error) bool {
	return hasCode(err, ErrCodePromptDecode)
}

func hasCode(err error, code InvariantCode) bool {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// NewUserUnknownError creates an InvariantError for a missing participant.
func NewUserUnknownError(id model.UserID, cause error) *InvariantError {
	return &InvariantError{
		Code:    ErrCodeUserUnknown,
		Message: "participant does not exist",
		User:    id,
		Err:     cause,
	}
}

// NewMissingBioError creates an InvariantError for a participant without a bio.
func NewMissingBioError(id model.UserID) *InvariantError {
	return &InvariantError{
		Code:    ErrCodeMissingBio,
		Message: "participant has no bio",
		User:    id,
	}
}

// NewMissingProfileImageError creates an InvariantError for a participant
// without a profile image.
func NewMissingProfileImageError(id model.UserID) *InvariantError {
	return &InvariantError{
		Code:    ErrCodeMissingProfileImage,
		Message: "participant has no profile image",
		User:    id,
	}
}

// classify converts store sentinel errors about id into InvariantErrors and
// passes anything else through unchanged.
func classify(id model.UserID, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return NewUserUnknownError(id, err)
	case store.IsDecode(err):
		return &InvariantError{
			Code:    ErrCodePromptDecode,
			Message: "stored prompt is invalid",
			User:    id,
			Err:     err,
		}
	default:
		return err
	}
}
