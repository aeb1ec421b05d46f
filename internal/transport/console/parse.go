package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/tandem/internal/model"
)

// ErrSkip is returned by ParseLine for blank lines and comments.
var ErrSkip = errors.New("skip line")

// ParseLine parses one input line into the participant and their response.
func ParseLine(line string) (model.UserID, model.Response, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return 0, nil, ErrSkip
	}

	idField, rest, _ := strings.Cut(line, " ")
	id, err := model.ParseUserID(idField)
	if err != nil {
		return 0, nil, fmt.Errorf("bad participant id %q: %w", idField, err)
	}

	verb, arg, _ := strings.Cut(strings.TrimSpace(rest), " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "say":
		return id, model.Message{Text: arg}, nil
	case "image":
		img, err := model.ParseImage(arg)
		if err != nil {
			return 0, nil, err
		}
		return id, img, nil
	case "react":
		r, err := parseReaction(arg)
		if err != nil {
			return 0, nil, err
		}
		return id, r, nil
	case "":
		return 0, nil, fmt.Errorf("missing verb after participant %d", id)
	default:
		return 0, nil, fmt.Errorf("unknown verb %q (want say, react or image)", verb)
	}
}

func parseReaction(arg string) (model.Response, error) {
	fields := strings.Fields(arg)
	if len(fields) == 0 || len(fields) > 2 {
		return nil, fmt.Errorf("react wants <emoji> [message-id], got %q", arg)
	}

	var msg model.MessageID
	if len(fields) == 2 {
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("bad message id %q", fields[1])
		}
		msg = model.MessageID(n)
	}

	name := fields[0]
	if rest, ok := strings.CutPrefix(name, "custom:"); ok {
		emojiID, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad custom emoji id %q", rest)
		}
		return model.CustomReaction{EmojiID: emojiID, MessageID: msg}, nil
	}
	if e, ok := model.EmojiFromName(name); ok {
		return model.Reaction{Emoji: e, MessageID: msg}, nil
	}
	return model.UnicodeReaction(name, msg), nil
}
