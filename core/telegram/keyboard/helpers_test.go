package keyboard

import "testing"

func TestReplyButtonsKeepsRowShape(t *testing.T) {
	m := ReplyButtons([]string{"a", "b"}, []string{"c"})
	if !m.ResizeKeyboard {
		t.Fatal("reply keyboard must be resized")
	}
	if len(m.ReplyKeyboard) != 2 || len(m.ReplyKeyboard[0]) != 2 || len(m.ReplyKeyboard[1]) != 1 {
		t.Fatalf("unexpected shape: %+v", m.ReplyKeyboard)
	}
	if m.ReplyKeyboard[1][0].Text != "c" {
		t.Fatalf("label = %q", m.ReplyKeyboard[1][0].Text)
	}
}

func TestInlineButtonsRowsRawData(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "English", Data: "lang_en"}},
		[]InlineBtn{{Text: "USD", Data: "cur_usd"}, {Text: "EUR", Data: "cur_eur"}},
	)
	if len(m.InlineKeyboard) != 2 || len(m.InlineKeyboard[1]) != 2 {
		t.Fatalf("unexpected shape: %+v", m.InlineKeyboard)
	}
	if got := m.InlineKeyboard[0][0]; got.Data != "lang_en" || got.Unique != "" || got.Text != "English" {
		t.Fatalf("raw button = %+v", got)
	}
	if got := m.InlineKeyboard[1][1]; got.Unique != "" || got.Data != "cur_eur" {
		t.Fatalf("second button = %+v", got)
	}
}
