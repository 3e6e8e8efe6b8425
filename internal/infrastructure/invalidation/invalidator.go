package invalidation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// Local drops tagged entries from this process's read cache.
type Local struct {
	store *basecache.Store
}

func NewLocal(store *basecache.Store) *Local {
	return &Local{store: store}
}

func (l *Local) InvalidateTags(ctx context.Context, tags ...string) error {
	if l.store == nil {
		return nil
	}
	l.store.InvalidateTags(ctx, tags...)
	return nil
}

type message struct {
	Origin string   `json:"origin"`
	Tags   []string `json:"tags"`
}

// Redis broadcasts tag invalidations so every replica drops its local entries.
type Redis struct {
	client  redis.UniversalClient
	channel string
	origin  string
	local   *Local
	logger  *logging.Logger
}

func NewRedis(client redis.UniversalClient, channel, origin string, local *Local, logger *logging.Logger) *Redis {
	if logger == nil {
		logger = logging.Default()
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "prediction-league:cache-invalidation"
	}
	return &Redis{
		client:  client,
		channel: channel,
		origin:  origin,
		local:   local,
		logger:  logger,
	}
}

func (r *Redis) InvalidateTags(ctx context.Context, tags ...string) error {
	tags = compactTags(tags)
	if len(tags) == 0 {
		return nil
	}

	var errs []error
	if r.local != nil {
		errs = append(errs, r.local.InvalidateTags(ctx, tags...))
	}

	payload, err := sonic.Marshal(message{Origin: r.origin, Tags: tags})
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("marshal invalidation message: %w", err))...)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		errs = append(errs, fmt.Errorf("publish invalidation on %s: %w", r.channel, err))
	}
	return errors.Join(errs...)
}

// Listen applies invalidations published by other replicas until ctx ends.
func (r *Redis) Listen(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		_ = sub.Close()
	}()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.logger.InfoContext(ctx, "cache invalidation listener started", "channel", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(ctx, msg.Payload)
		}
	}
}

func (r *Redis) handle(ctx context.Context, payload string) {
	var decoded message
	if err := sonic.UnmarshalString(payload, &decoded); err != nil {
		r.logger.WarnContext(ctx, "drop malformed invalidation message", "error", err)
		return
	}
	if decoded.Origin == r.origin || r.local == nil {
		return
	}
	_ = r.local.InvalidateTags(ctx, compactTags(decoded.Tags)...)
}

func compactTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
