package model

import "strconv"

// UserID identifies a participant. It is assigned by the transport layer and
// never changes.
type UserID int64

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseUserID parses the decimal form produced by String.
func ParseUserID(s string) (UserID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return UserID(n), nil
}

// MessageID identifies a message rendered by the transport. Zero means
// "unknown".
type MessageID int64

func (id MessageID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
