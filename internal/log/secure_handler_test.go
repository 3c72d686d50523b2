package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandlerSanitization tests that sensitive attributes are masked.
func TestSecureHandlerSanitization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "cookie header is masked", key: "cookie", value: "session=abc123", wantMask: true},
		{name: "authorization header is masked", key: "Authorization", value: "Bearer tok", wantMask: true},
		{name: "password keyword in key is masked", key: "db_password", value: "hunter2", wantMask: true},
		{name: "bearer token value is masked", key: "header_value", value: "Bearer abcdef", wantMask: true},
		{name: "jwt value is masked", key: "note", value: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", wantMask: true},
		{name: "session cookie pair value is masked", key: "extra", value: "sessionid=deadbeef; theme=dark", wantMask: true},
		{name: "plain url is kept", key: "url", value: "https://example.com/contact", wantMask: false},
		{name: "email address is kept", key: "email", value: "info@example.com", wantMask: false},
		{name: "primary_key is not a false positive", key: "primary_key", value: "42", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))

			logger.Info("test", tt.key, tt.value)

			output := buf.String()
			masked := strings.Contains(output, MaskValue)
			leaked := strings.Contains(output, tt.value)

			if tt.wantMask {
				if !masked {
					t.Errorf("expected %q to be masked, output: %s", tt.key, output)
				}
				if leaked {
					t.Errorf("sensitive value leaked into output: %s", output)
				}
			} else if masked {
				t.Errorf("expected %q to pass through, output: %s", tt.key, output)
			}
		})
	}
}

// TestSecureHandlerGroups tests that grouped attributes are sanitized too.
func TestSecureHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("request",
		slog.Group("headers",
			slog.String("cookie", "session=xyz"),
			slog.String("accept", "text/html"),
		),
	)

	output := buf.String()
	if strings.Contains(output, "session=xyz") {
		t.Errorf("grouped sensitive value leaked: %s", output)
	}
	if !strings.Contains(output, "text/html") {
		t.Errorf("benign grouped value was lost: %s", output)
	}
}

// TestSecureHandlerWithAttrs tests sanitization of pre-attached attributes.
func TestSecureHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))

	logger.With("token", "supersecret").Info("attached")

	output := buf.String()
	if strings.Contains(output, "supersecret") {
		t.Errorf("attached sensitive value leaked: %s", output)
	}
	if !strings.Contains(output, MaskValue) {
		t.Errorf("expected mask in output: %s", output)
	}
}

// TestNewSecureLogger tests verbose level switching.
func TestNewSecureLogger(t *testing.T) {
	t.Parallel()

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)

		logger.Debug("debug message")
		if !strings.Contains(buf.String(), "debug message") {
			t.Error("expected debug output in verbose mode")
		}
	})

	t.Run("non-verbose suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)

		logger.Info("info message")
		if buf.Len() != 0 {
			t.Errorf("expected no output below warn level, got: %s", buf.String())
		}
	})

	t.Run("json logger emits json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureJSONLogger(&buf, true)

		logger.Warn("warn message", "cookie", "session=abc")

		output := buf.String()
		if !strings.HasPrefix(output, "{") {
			t.Errorf("expected JSON output, got: %s", output)
		}
		if strings.Contains(output, "session=abc") {
			t.Errorf("sensitive value leaked in JSON output: %s", output)
		}
	})
}
