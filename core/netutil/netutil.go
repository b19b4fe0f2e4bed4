// Package netutil classifies outbound call failures for logs and scrubs
// credentials from error text.
package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/url"
	"regexp"
)

// ErrBadResponse marks a response whose body could not be used.
var ErrBadResponse = errors.New("bad response")

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	HTTPStatus() int
}

// Error kinds reported by Classify.
const (
	KindTimeout     = "timeout"
	KindDial        = "dial"
	KindDNS         = "dns"
	KindTLS         = "tls"
	KindHTTP4xx     = "http_4xx"
	KindHTTP5xx     = "http_5xx"
	KindBadResponse = "bad_response"
	KindCanceled    = "canceled"
	KindUnknown     = "unknown"
)

// Classify maps err to a coarse kind suitable for an err_kind log attribute.
// It returns an empty string for a nil error.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, ErrBadResponse) {
		return KindBadResponse
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		switch code := sc.HTTPStatus(); {
		case code >= 500:
			return KindHTTP5xx
		case code >= 400:
			return KindHTTP4xx
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return KindDial
		}
		if opErr.Op == "read" || opErr.Op == "write" {
			if kind := Classify(opErr.Err); kind != "" && kind != KindUnknown {
				return kind
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
		if kind := Classify(urlErr.Err); kind != "" && kind != KindUnknown {
			return kind
		}
	}

	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return KindTLS
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return KindTLS
	}

	return KindUnknown
}

var (
	botTokenRe = regexp.MustCompile(`bot\d+:[A-Za-z0-9_-]+`)
	bearerRe   = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)
	apiKeyRe   = regexp.MustCompile(`sk-[A-Za-z0-9_-]{8,}`)
)

// Redact removes Telegram bot tokens and API keys from msg.
func Redact(msg string) string {
	if msg == "" {
		return ""
	}
	msg = botTokenRe.ReplaceAllString(msg, "bot<redacted>")
	msg = bearerRe.ReplaceAllString(msg, "Bearer <redacted>")
	return apiKeyRe.ReplaceAllString(msg, "sk-<redacted>")
}

// RedactError is Redact applied to err.Error().
func RedactError(err error) string {
	if err == nil {
		return ""
	}
	return Redact(err.Error())
}
