package model

import "fmt"

// Emoji is a reaction the engine understands.
type Emoji int

const (
	ThumbsUp Emoji = iota + 1
	ThumbsDown
)

var emojiInfo = map[Emoji]struct {
	name string
	char string
}{
	ThumbsUp:   {name: "thumbsup", char: "👍"},
	ThumbsDown: {name: "thumbsdown", char: "👎"},
}

// Name is the lowercase shortcode name, e.g. "thumbsup".
func (e Emoji) Name() string {
	return emojiInfo[e].name
}

// Char is the unicode form sent by chat clients.
func (e Emoji) Char() string {
	return emojiInfo[e].char
}

// Markup is the shortcode form, e.g. ":thumbsup:".
func (e Emoji) Markup() string {
	return ":" + e.Name() + ":"
}

func (e Emoji) String() string {
	if _, ok := emojiInfo[e]; !ok {
		return fmt.Sprintf("Emoji(%d)", int(e))
	}
	return e.Name()
}

// EmojiFromChars maps a unicode reaction to a known Emoji.
func EmojiFromChars(chars string) (Emoji, bool) {
	for e, info := range emojiInfo {
		if info.char == chars {
			return e, true
		}
	}
	return 0, false
}

// EmojiFromName maps a shortcode name, with or without colons, to a known
// Emoji.
func EmojiFromName(name string) (Emoji, bool) {
	if len(name) > 2 && name[0] == ':' && name[len(name)-1] == ':' {
		name = name[1 : len(name)-1]
	}
	for e, info := range emojiInfo {
		if info.name == name {
			return e, true
		}
	}
	return 0, false
}
