package auditsink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errWebhookTransient = crerr.New("audit webhook transient failure")

type WebhookConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookSink posts audit entries to an external collector.
type WebhookSink struct {
	client  *fasthttp.Client
	url     string
	token   string
	timeout time.Duration
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
}

type webhookPayload struct {
	ID                  string    `json:"id"`
	AdminUserID         int64     `json:"adminUserId"`
	Action              string    `json:"action"`
	Category            string    `json:"category"`
	BetInstanceID       int64     `json:"betInstanceId"`
	TotalUsersEvaluated int       `json:"totalUsersEvaluated"`
	SumOfPoints         int       `json:"sumOfPoints"`
	DurationMs          int64     `json:"durationMs"`
	CreatedAt           time.Time `json:"createdAt"`
}

func NewWebhookSink(cfg WebhookConfig, logger *logging.Logger) (*WebhookSink, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid AUDIT_WEBHOOK_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &WebhookSink{
		client: &fasthttp.Client{
			Name:                "prediction-league-audit",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		url:     target,
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		logger:  logger,
		breaker: resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

func (s *WebhookSink) Record(ctx context.Context, entry audit.Entry) error {
	err := s.breaker.Do(func() error {
		return s.post(ctx, entry)
	}, isWebhookCircuitFailure)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.WarnContext(ctx, "audit webhook circuit breaker rejected request", "state", s.breaker.State())
		return fmt.Errorf("audit webhook is temporarily unavailable: %w", err)
	}
	return err
}

func (s *WebhookSink) post(ctx context.Context, entry audit.Entry) error {
	body, err := sonic.Marshal(webhookPayload{
		ID:                  entry.ID,
		AdminUserID:         entry.AdminUserID,
		Action:              entry.Action,
		Category:            entry.Category,
		BetInstanceID:       entry.BetInstanceID,
		TotalUsersEvaluated: entry.TotalUsersEvaluated,
		SumOfPoints:         entry.SumOfPoints,
		DurationMs:          entry.DurationMs,
		CreatedAt:           entry.CreatedAt.UTC(),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal audit payload")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("audit.webhook_url", s.url),
			attribute.String("audit.id", entry.ID),
		)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Idempotency-Key", entry.ID)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.SetBodyRaw(body)

	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%w: post audit entry id=%s: %v", errWebhookTransient, entry.ID, err)
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		raw := truncateForLog(strings.TrimSpace(string(resp.Body())), 512)
		if isRetryableStatus(status) {
			return fmt.Errorf("%w: post audit entry status=%d body=%s", errWebhookTransient, status, raw)
		}
		return fmt.Errorf("post audit entry status=%d body=%s", status, raw)
	}

	s.logger.DebugContext(ctx, "audit entry delivered", "audit_id", entry.ID, "status", status)
	return nil
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(value[:max])
	_, _ = buf.WriteString("...(truncated)")
	return buf.String()
}

func isWebhookCircuitFailure(err error) bool {
	return errors.Is(err, errWebhookTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}
