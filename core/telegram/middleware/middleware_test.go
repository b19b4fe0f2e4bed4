package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	if err != nil {
		t.Fatalf("offline bot: %v", err)
	}
	return bot
}

func textUpdate(id int, userID int64, text string) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			Text:   text,
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	}
}

func callbackUpdate(id int, userID int64, data string) tele.Update {
	return tele.Update{
		ID: id,
		Callback: &tele.Callback{
			Data:   data,
			Sender: &tele.User{ID: userID},
			Message: &tele.Message{
				Chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			},
		},
	}
}

func TestRateLimitAllowsBurstThenDrops(t *testing.T) {
	bot := offlineBot(t)
	calls := 0
	limited := 0
	h := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Burst:     2,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})(func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		if err := h(bot.NewContext(textUpdate(i, 7, "hi"))); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if calls != 2 || limited != 1 {
		t.Fatalf("calls = %d limited = %d, want 2 and 1", calls, limited)
	}

	if err := h(bot.NewContext(textUpdate(10, 8, "hi"))); err != nil {
		t.Fatalf("other user: %v", err)
	}
	if calls != 3 {
		t.Fatalf("another user must have its own bucket, calls = %d", calls)
	}
}

func TestRateLimitExcludedKinds(t *testing.T) {
	bot := offlineBot(t)
	calls := 0
	h := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"callback": {}},
	})(func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		_ = h(bot.NewContext(callbackUpdate(i, 7, "lang_en")))
	}
	if calls != 3 {
		t.Fatalf("callbacks must bypass the limiter, calls = %d", calls)
	}
}

type ackCounter struct {
	tele.Context
	acks *int
}

func (a ackCounter) Respond(...*tele.CallbackResponse) error {
	*a.acks++
	return nil
}

func TestRateLimitAnswersLimitedCallbacks(t *testing.T) {
	bot := offlineBot(t)
	calls, acks := 0, 0
	h := RateLimitMiddleware(RateLimitOptions{Interval: time.Hour, Burst: 1})(
		func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		c := ackCounter{Context: bot.NewContext(callbackUpdate(i, 7, "faq_0")), acks: &acks}
		if err := h(c); err != nil {
			t.Fatalf("callback %d: %v", i, err)
		}
	}
	if calls != 1 || acks != 2 {
		t.Fatalf("calls = %d acks = %d, want 1 and 2", calls, acks)
	}

	c := ackCounter{Context: bot.NewContext(textUpdate(5, 7, "hi")), acks: &acks}
	_ = h(c)
	if acks != 2 {
		t.Fatalf("limited messages must not be answered as callbacks, acks = %d", acks)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	bot := offlineBot(t)
	calls := 0
	h := RateLimitMiddleware(RateLimitOptions{})(func(tele.Context) error { calls++; return nil })
	for i := 0; i < 5; i++ {
		_ = h(bot.NewContext(textUpdate(i, 7, "hi")))
	}
	if calls != 5 {
		t.Fatalf("calls = %d, want 5", calls)
	}
}

func TestRecoverReturnsError(t *testing.T) {
	bot := offlineBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(bot.NewContext(textUpdate(1, 7, "hi"))); err == nil {
		t.Fatal("expected error from recovered panic")
	}

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(bot.NewContext(textUpdate(2, 7, "hi"))); !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	bot := offlineBot(t)
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})
	if err := h(bot.NewContext(textUpdate(42, 7, "hi"))); err != nil {
		t.Fatalf("logger middleware: %v", err)
	}
	if rid == "" {
		t.Fatal("rid was not stored")
	}
}

func TestMetricsCountersStartAtZero(t *testing.T) {
	bot := offlineBot(t)
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if n, kb := GetCounters(c); n != 0 || kb {
			t.Fatalf("counters = %d %v", n, kb)
		}
		return nil
	})
	_ = h(bot.NewContext(textUpdate(1, 7, "hi")))
}

type okSender struct{ tele.Context }

func (okSender) Send(interface{}, ...interface{}) error { return nil }

func TestMetricsCountsSendsAndKeyboards(t *testing.T) {
	bot := offlineBot(t)
	c := okSender{bot.NewContext(textUpdate(1, 7, "hi"))}
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		_ = c.Send("plain")
		return c.Send("with kb", &tele.ReplyMarkup{})
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if n, kb := GetCounters(c); n != 2 || !kb {
		t.Fatalf("counters = %d %v, want 2 true", n, kb)
	}
}
