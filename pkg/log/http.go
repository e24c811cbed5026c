package log

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// HTTPLogger writes one structured line per upstream request and response.
type HTTPLogger struct {
	logger log.FieldLogger
}

// NewHTTPLogger creates a new HTTPLogger instance
func NewHTTPLogger(logger log.FieldLogger) *HTTPLogger {
	return &HTTPLogger{
		logger: logger,
	}
}

// LogRequest logs information about an outgoing HTTP request
func (l *HTTPLogger) LogRequest(req *http.Request) {
	l.logger.WithFields(log.Fields{
		"method": req.Method,
		"host":   req.URL.Host,
		"path":   req.URL.Path,
		"query":  req.URL.RawQuery,
	}).Debug("upstream request")
}

// LogResponse logs information about an upstream HTTP response
func (l *HTTPLogger) LogResponse(req *http.Request, res *http.Response, err error, duration time.Duration) {
	fields := log.Fields{
		"method":     req.Method,
		"host":       req.URL.Host,
		"path":       req.URL.Path,
		"durationMs": duration.Milliseconds(),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.logger.WithFields(fields).Error("upstream response error")
		return
	}

	fields["status"] = res.StatusCode
	if rl := res.Header.Get("X-RateLimit-Remaining"); rl != "" {
		fields["rateLimitRemaining"] = rl
	}
	if res.StatusCode >= http.StatusBadRequest {
		l.logger.WithFields(fields).Warn("upstream response")
		return
	}
	l.logger.WithFields(fields).Info("upstream response")
}

// Transport is an http.RoundTripper that reports every round trip to an
// HTTPLogger.
type Transport struct {
	Base   http.RoundTripper
	Logger *HTTPLogger
}

// NewTransport wraps base so that each request is logged through logger.
// A nil base means http.DefaultTransport.
func NewTransport(base http.RoundTripper, logger log.FieldLogger) *Transport {
	return &Transport{
		Base:   base,
		Logger: NewHTTPLogger(logger),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	t.Logger.LogRequest(req)
	res, err := base.RoundTrip(req)
	t.Logger.LogResponse(req, res, err, time.Since(start))
	return res, err
}
