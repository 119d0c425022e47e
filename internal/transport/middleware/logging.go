package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// secretFields never reach the logs at all.
var secretFields = []string{
	"password",
	"password_hash",
	"token",
	"access_token",
	"refresh_token",
	"authorization",
	"secret",
	"api_key",
	"credential",
}

// contactFields hold lead PII; they are masked instead of dropped so a log
// line still identifies which record was touched.
var contactFields = []string{
	"email",
	"phone",
}

const maxLoggedBody = 16 << 10

func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := TraceIDFromContext(r.Context())

			logRequest(logger, r, reqID)

			ww := &responseWriter{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(ww, r)

			logResponse(logger, ww, time.Since(start), reqID)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

func logRequest(logger *slog.Logger, r *http.Request, reqID string) {
	var bodyBytes []byte
	if r.Body != nil {
		bodyBytes, _ = io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
		rest, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(bodyBytes), bytes.NewReader(rest)))
	}

	logger.Info("incoming request",
		"trace_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"auth", redactHeader(r.Header.Get("Authorization")),
		"body", redactBody(bodyBytes),
	)
}

func logResponse(logger *slog.Logger, rw *responseWriter, duration time.Duration, reqID string) {
	statusCode := rw.statusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	logLevel := slog.LevelInfo
	switch {
	case statusCode >= 500:
		logLevel = slog.LevelError
	case statusCode >= 400:
		logLevel = slog.LevelWarn
	}

	logger.Log(nil, logLevel, "response",
		"trace_id", reqID,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"response_size", rw.body.Len(),
		"body", redactBody(rw.body.Bytes()),
	)
}

// redactHeader keeps only the scheme of an Authorization header.
func redactHeader(value string) string {
	if value == "" {
		return ""
	}
	if scheme, _, ok := strings.Cut(value, " "); ok {
		return scheme + " [REDACTED]"
	}
	return "[REDACTED]"
}

// redactBody walks a JSON body, dropping secrets and masking lead contact
// fields. Non-JSON bodies are not logged.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[NON-JSON BODY]"
	}

	out, err := json.Marshal(redactValue(data))
	if err != nil {
		return "[UNLOGGABLE BODY]"
	}
	return string(out)
}

func redactValue(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			lower := strings.ToLower(key)
			switch {
			case matchesAny(lower, secretFields):
				out[key] = "[REDACTED]"
			case matchesAny(lower, contactFields):
				out[key] = maskContact(value)
			default:
				out[key] = redactValue(value)
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}

func matchesAny(key string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

// maskContact keeps just enough of an email or phone number to correlate log
// lines with a record: first rune and, for emails, the domain.
func maskContact(value interface{}) string {
	s, ok := value.(string)
	if !ok || s == "" {
		return "[MASKED]"
	}

	if local, domain, isEmail := strings.Cut(s, "@"); isEmail && local != "" {
		return local[:1] + "***@" + domain
	}
	if len(s) > 3 {
		return s[:1] + "***" + s[len(s)-2:]
	}
	return "***"
}
