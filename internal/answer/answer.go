// Package answer relays free-form questions to the completion API.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/finbot/core/logger"
	"github.com/m3rciful/finbot/core/netutil"
	"github.com/m3rciful/finbot/internal/catalog"
	"github.com/m3rciful/finbot/internal/completion"
	"github.com/m3rciful/finbot/internal/prompt"
	"github.com/m3rciful/finbot/internal/reply"
	"github.com/m3rciful/finbot/internal/session"
)

const component = logger.CompAnswer

// Outcome reports how a question was resolved.
type Outcome int

const (
	// Answered means the model's text was relayed.
	Answered Outcome = iota + 1
	// Failed means a localized failure message was relayed.
	Failed
	// Undelivered means the wait message could not be sent; nothing else was attempted.
	Undelivered
)

func (o Outcome) String() string {
	switch o {
	case Answered:
		return "answered"
	case Failed:
		return "failed"
	case Undelivered:
		return "undelivered"
	}
	return "unknown"
}

// Options configures a Service.
type Options struct {
	Catalog *catalog.Catalog
	Prompts *prompt.Builder
	Client  completion.Client
	// System is the system message; empty selects prompt.DefaultSystem.
	System  string
	Timeout time.Duration
}

// Service answers questions for one conversation at a time.
type Service struct {
	cat     *catalog.Catalog
	prompts *prompt.Builder
	client  completion.Client
	system  string
	timeout time.Duration
}

// NewService validates opts and fills defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Client == nil {
		return nil, errors.New("answer: completion client is required")
	}
	s := &Service{
		cat:     opts.Catalog,
		prompts: opts.Prompts,
		client:  opts.Client,
		system:  opts.System,
		timeout: opts.Timeout,
	}
	if s.cat == nil {
		s.cat = catalog.Builtin()
	}
	if s.prompts == nil {
		s.prompts = prompt.NewBuilder(s.cat)
	}
	if s.system == "" {
		s.system = prompt.DefaultSystem
	}
	if s.timeout <= 0 {
		s.timeout = completion.DefaultTimeout
	}
	return s, nil
}

// Ask sends the wait message, then exactly one of the answer or a localized
// failure message. The returned error is non-nil only when a reply could not
// be delivered; completion failures are reported through the Outcome.
func (s *Service) Ask(ctx context.Context, r reply.Replier, question string, sess session.Session) (Outcome, error) {
	loc := sess.EffectiveLocale()
	cur := sess.EffectiveCurrency()
	qid := uuid.NewString()

	if err := r.Reply(ctx, reply.Text(s.cat.Lookup(loc, catalog.Wait))); err != nil {
		return Undelivered, fmt.Errorf("answer: send wait message: %w", err)
	}

	start := time.Now()
	text, err := s.complete(ctx, s.prompts.Build(question, loc, cur))
	took := logger.RoundMS(time.Since(start)).Milliseconds()

	if err != nil {
		logger.Error(ctx, component, "completion.fail",
			slog.String("status", "fail"),
			slog.String("question_id", qid),
			slog.String("locale", string(loc)),
			slog.String("currency", string(cur)),
			slog.Int64("duration_ms", took),
			slog.String("err_kind", netutil.Classify(err)),
			slog.String("err", logger.SanitizeLimit(netutil.RedactError(err), 512)),
		)
		if sendErr := r.Reply(ctx, reply.Text(s.cat.Lookup(loc, failureKey(err)))); sendErr != nil {
			return Failed, fmt.Errorf("answer: send failure message: %w", sendErr)
		}
		return Failed, nil
	}

	logger.Info(ctx, component, "completion.ok",
		slog.String("status", "ok"),
		slog.String("question_id", qid),
		slog.String("locale", string(loc)),
		slog.String("currency", string(cur)),
		slog.Int64("duration_ms", took),
		slog.Int("answer_len", len([]rune(text))),
	)
	if err := r.Reply(ctx, reply.Text(text)); err != nil {
		return Answered, fmt.Errorf("answer: send answer: %w", err)
	}
	return Answered, nil
}

func (s *Service) complete(ctx context.Context, rendered string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Complete(callCtx, completion.Request{System: s.system, Prompt: rendered})
}

// failureKey picks the message for a failed call: responses that arrived but
// were unusable get answer_failed, everything else gets answer_error.
func failureKey(err error) catalog.Key {
	if errors.Is(err, completion.ErrStatus) || errors.Is(err, completion.ErrEmptyAnswer) {
		return catalog.AnswerFailed
	}
	return catalog.AnswerError
}
