package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestIsProbeRequestLog(t *testing.T) {
	cases := []struct {
		msg  string
		args []any
		want bool
	}{
		{"http_request", []any{"http_path", "/healthz"}, true},
		{"http_request", []any{"http_method", "GET", "http_path", "/metrics"}, true},
		{"http_request", []any{"http_path", "/v1/leagues/1/leaderboard"}, false},
		{"evaluation completed", []any{"http_path", "/healthz"}, false},
	}
	for _, tc := range cases {
		if got := isProbeRequestLog(tc.msg, tc.args); got != tc.want {
			t.Fatalf("isProbeRequestLog(%q, %v) = %v, want %v", tc.msg, tc.args, got, tc.want)
		}
	}
}

func TestLogAttributes(t *testing.T) {
	attrs := logAttributes([]any{"category", "match", 7, int64(42), "payload"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "category" || attrs[0].Value.AsString() != "match" {
		t.Fatalf("unexpected category attribute: %+v", attrs[0])
	}
	if attrs[1].Key != "arg_1" || attrs[1].Value.AsInt64() != 42 {
		t.Fatalf("unexpected positional attribute: %+v", attrs[1])
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute: %+v", attrs[2])
	}
}

func TestLogValue(t *testing.T) {
	userID := int64(9)
	cases := []struct {
		name string
		in   any
		kind otellog.Kind
		str  string
	}{
		{name: "decimal", in: decimal.RequireFromString("11.50"), kind: otellog.KindString, str: "11.5"},
		{name: "error", in: errors.New("boom"), kind: otellog.KindString, str: "boom"},
		{name: "duration", in: 1500 * time.Millisecond, kind: otellog.KindString, str: "1.5s"},
		{name: "user pointer", in: &userID, kind: otellog.KindInt64},
		{name: "ids", in: []int64{10, 11}, kind: otellog.KindSlice},
		{name: "map", in: map[string]any{"points": 5, "awarded": true}, kind: otellog.KindMap},
		{name: "nil", in: nil, kind: otellog.KindEmpty},
	}
	for _, tc := range cases {
		v := logValue(tc.in, 0)
		if v.Kind() != tc.kind {
			t.Fatalf("%s: kind=%s want %s", tc.name, v.Kind(), tc.kind)
		}
		if tc.str != "" && v.AsString() != tc.str {
			t.Fatalf("%s: value=%q want %q", tc.name, v.AsString(), tc.str)
		}
	}
}

func TestSeverityOf(t *testing.T) {
	cases := map[zapcore.Level]otellog.Severity{
		zapcore.DebugLevel:  otellog.SeverityDebug,
		zapcore.InfoLevel:   otellog.SeverityInfo,
		zapcore.WarnLevel:   otellog.SeverityWarn,
		zapcore.ErrorLevel:  otellog.SeverityError,
		zapcore.DPanicLevel: otellog.SeverityFatal,
	}
	for level, want := range cases {
		if got := severityOf(level); got != want {
			t.Fatalf("severityOf(%s)=%v want %v", level, got, want)
		}
	}
}
