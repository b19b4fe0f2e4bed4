package middleware

import tele "gopkg.in/telebot.v4"

const sentKey = "finbot.sent"

// sentStats counts what a handler delivered for the handler summary line.
type sentStats struct {
	messages int
	keyboard bool
}

// countingContext wraps tele.Context so successful sends are recorded.
type countingContext struct{ tele.Context }

func (c countingContext) record(opts []interface{}) {
	st, _ := c.Get(sentKey).(*sentStats)
	if st == nil {
		return
	}
	st.messages++
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			st.keyboard = st.keyboard || v != nil
		case *tele.SendOptions:
			st.keyboard = st.keyboard || (v != nil && v.ReplyMarkup != nil)
		}
	}
}

// Send records successful sends before returning.
func (c countingContext) Send(what interface{}, opts ...interface{}) error {
	if err := c.Context.Send(what, opts...); err != nil {
		return err
	}
	c.record(opts)
	return nil
}

// Reply records successful replies before returning.
func (c countingContext) Reply(what interface{}, opts ...interface{}) error {
	if err := c.Context.Reply(what, opts...); err != nil {
		return err
	}
	c.record(opts)
	return nil
}

// MessageMetricsMiddleware counts the messages each handler sends and whether any carried a keyboard.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(sentKey, &sentStats{})
		return next(countingContext{Context: c})
	}
}

// GetCounters returns the message count and keyboard flag recorded for c.
func GetCounters(c tele.Context) (int, bool) {
	st, _ := c.Get(sentKey).(*sentStats)
	if st == nil {
		return 0, false
	}
	return st.messages, st.keyboard
}
