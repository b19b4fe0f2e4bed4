// Package reply describes outbound messages independently of the chat platform.
package reply

import "context"

// Button is an inline option that returns Data as a callback token when chosen.
type Button struct {
	Text string
	Data string
}

// Keyboard is attached to a message. Inline rows take precedence over Menu rows.
type Keyboard struct {
	Inline [][]Button
	Menu   [][]string
}

// Message is a single outbound text with an optional keyboard.
type Message struct {
	Text     string
	Keyboard *Keyboard
}

// Replier delivers messages to one conversation, in call order.
type Replier interface {
	Reply(ctx context.Context, msg Message) error
}

// Text returns a plain message.
func Text(s string) Message {
	return Message{Text: s}
}

// WithInline returns a message carrying inline rows.
func WithInline(s string, rows ...[]Button) Message {
	return Message{Text: s, Keyboard: &Keyboard{Inline: rows}}
}

// WithMenu returns a message carrying persistent menu rows.
func WithMenu(s string, rows [][]string) Message {
	return Message{Text: s, Keyboard: &Keyboard{Menu: rows}}
}
