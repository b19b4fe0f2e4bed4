// Package keyboard builds telebot reply and inline markups from plain values.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is one inline button; Data is sent verbatim as the callback data.
type InlineBtn struct {
	Text string
	Data string
}

// ReplyButtons returns a resized reply keyboard with one row per argument.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	built := make([]tele.Row, 0, len(rows))
	for _, labels := range rows {
		row := make(tele.Row, 0, len(labels))
		for _, label := range labels {
			row = append(row, m.Text(label))
		}
		built = append(built, row)
	}
	m.Reply(built...)
	return m
}

// InlineButtonsRows returns an inline keyboard with one row per argument.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.InlineKeyboard = make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		built := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			built = append(built, tele.InlineButton{Text: b.Text, Data: b.Data})
		}
		m.InlineKeyboard = append(m.InlineKeyboard, built)
	}
	return m
}
