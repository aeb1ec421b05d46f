// Package console is a line-oriented transport for running the engine from
// a terminal or a script.
//
// Input lines name the participant first:
//
//	<id> say <text>
//	<id> react <emoji> [message-id]
//	<id> image <url>
//
// Emoji may be given as a name (thumbsup, :thumbsdown:), as the unicode
// character itself, or as custom:<id> for a server emoji. Blank lines and
// lines starting with # are skipped.
package console
