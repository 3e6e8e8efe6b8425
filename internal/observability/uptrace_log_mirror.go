package observability

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/shopspring/decimal"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const (
	logMirrorScope   = "prediction-league/internal/platform/logging"
	maxLogValueDepth = 3
)

// newUptraceLogMirror forwards context-aware log records to the global OTel
// logger provider. Request logs for probe routes are dropped.
func newUptraceLogMirror(serviceVersion string) logging.MirrorFunc {
	otelLogger := otelglobal.Logger(logMirrorScope, otellog.WithInstrumentationVersion(serviceVersion))

	return func(ctx context.Context, level logging.Level, msg string, args ...any) {
		if isProbeRequestLog(msg, args) {
			return
		}
		severity := severityOf(level)
		if !otelLogger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
			return
		}

		var rec otellog.Record
		now := time.Now()
		rec.SetTimestamp(now)
		rec.SetObservedTimestamp(now)
		rec.SetSeverity(severity)
		rec.SetSeverityText(strings.ToUpper(level.String()))
		rec.SetEventName(msg)
		rec.SetBody(otellog.StringValue(msg))
		rec.AddAttributes(logAttributes(args)...)
		otelLogger.Emit(ctx, rec)
	}
}

func isProbeRequestLog(msg string, args []any) bool {
	if msg != "http_request" {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == "http_path" {
			path, _ := args[i+1].(string)
			return path == "/healthz" || path == "/metrics"
		}
	}
	return false
}

func logAttributes(args []any) []otellog.KeyValue {
	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = fmt.Sprintf("arg_%d", i/2)
		}
		if i+1 == len(args) {
			attrs = append(attrs, otellog.Empty(key))
			break
		}
		attrs = append(attrs, otellog.KeyValue{Key: key, Value: logValue(args[i+1], 0)})
	}
	return attrs
}

func severityOf(level zapcore.Level) otellog.Severity {
	switch level {
	case zapcore.DebugLevel:
		return otellog.SeverityDebug
	case zapcore.InfoLevel:
		return otellog.SeverityInfo
	case zapcore.WarnLevel:
		return otellog.SeverityWarn
	case zapcore.ErrorLevel:
		return otellog.SeverityError
	}
	if level < zapcore.DebugLevel {
		return otellog.SeverityTrace
	}
	return otellog.SeverityFatal
}

// logValue converts the value types the services actually log; anything
// else is rendered with fmt. Nesting beyond maxLogValueDepth is flattened.
func logValue(v any, depth int) otellog.Value {
	if depth >= maxLogValueDepth {
		return otellog.StringValue(fmt.Sprint(v))
	}
	switch x := v.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(x)
	case bool:
		return otellog.BoolValue(x)
	case int:
		return otellog.IntValue(x)
	case int32:
		return otellog.Int64Value(int64(x))
	case int64:
		return otellog.Int64Value(x)
	case uint64:
		if x > math.MaxInt64 {
			return otellog.StringValue(fmt.Sprint(x))
		}
		return otellog.Int64Value(int64(x))
	case float64:
		return otellog.Float64Value(x)
	case *int64:
		if x == nil {
			return otellog.Value{}
		}
		return otellog.Int64Value(*x)
	case decimal.Decimal:
		return otellog.StringValue(x.String())
	case time.Time:
		return otellog.StringValue(x.UTC().Format(time.RFC3339Nano))
	case error:
		return otellog.StringValue(x.Error())
	case []string:
		return sliceValue(x, depth)
	case []int64:
		return sliceValue(x, depth)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		kvs := make([]otellog.KeyValue, len(keys))
		for i, k := range keys {
			kvs[i] = otellog.KeyValue{Key: k, Value: logValue(x[k], depth+1)}
		}
		return otellog.MapValue(kvs...)
	case fmt.Stringer:
		return otellog.StringValue(x.String())
	}
	return otellog.StringValue(fmt.Sprint(v))
}

func sliceValue[T any](items []T, depth int) otellog.Value {
	out := make([]otellog.Value, len(items))
	for i, item := range items {
		out[i] = logValue(item, depth+1)
	}
	return otellog.SliceValue(out...)
}
