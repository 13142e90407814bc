package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"magis-site/config"
	"magis-site/internal/backend"
	"magis-site/internal/schema"
	"magis-site/models"
	"magis-site/monitoring"
)

const (
	SourceTicker   = "ticker"
	SourceFocus    = "focus"
	SourceFallback = "fallback"

	lastPingKey = "heartbeat:last_ping"
	pingLockKey = "heartbeat:lock"
	pingLockTTL = time.Minute

	// BackendKeyHeader carries BACKEND_KEY on the fallback ping.
	BackendKeyHeader = "X-Backend-Key"
)

// HeartbeatPayload is the body of the fallback ping.
type HeartbeatPayload struct {
	Token  string `json:"token"`
	Source string `json:"source"`
}

// Heartbeat keeps the backend from idling out: a read-only health ping on
// a long interval, plus an opportunistic ping when the site gets traffic
// after a quiet period.
type Heartbeat struct {
	redis     *redis.Client
	hc        *http.Client
	baseURL   string
	key       string
	interval  time.Duration
	idleAfter time.Duration

	now   func() time.Time
	spawn func(func())
}

func NewHeartbeat(redisClient *redis.Client, cfg *config.Config) *Heartbeat {
	return &Heartbeat{
		redis:     redisClient,
		hc:        &http.Client{Timeout: 10 * time.Second},
		baseURL:   strings.TrimRight(cfg.BackendURL, "/"),
		key:       cfg.BackendKey,
		interval:  cfg.HeartbeatInterval,
		idleAfter: cfg.HeartbeatIdleAfter,
		now:       time.Now,
		spawn:     func(f func()) { go f() },
	}
}

// Run pings once right away and then on every interval until ctx is done.
func (h *Heartbeat) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	_ = h.Ping(ctx, SourceTicker)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Heartbeat stopped")
			return
		case <-ticker.C:
			_ = h.Ping(ctx, SourceTicker)
		}
	}
}

// Touch is called on public page loads. When the last ping is older than
// the idle threshold it starts one ping in the background and reports true.
// Only one caller wins the lock; the rest return false.
func (h *Heartbeat) Touch(ctx context.Context) bool {
	last, err := h.redis.Get(ctx, lastPingKey).Int64()
	switch {
	case err == nil:
		if h.now().Sub(time.Unix(last, 0)) < h.idleAfter {
			return false
		}
	case !errors.Is(err, redis.Nil):
		slog.Warn("Heartbeat bookkeeping unavailable", "error", err)
		return false
	}

	won, err := h.redis.SetNX(ctx, pingLockKey, h.now().Unix(), pingLockTTL).Result()
	if err != nil || !won {
		return false
	}

	h.spawn(func() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = h.Ping(pingCtx, SourceFocus)
	})
	return true
}

// Ping tries the health endpoint and, when that fails, makes exactly one
// fallback write. Nothing is retried beyond that.
func (h *Heartbeat) Ping(ctx context.Context, source string) error {
	err := h.primary(ctx)
	if err == nil {
		monitoring.TrackHeartbeat(source, "primary")
		h.recordPing(ctx)
		return nil
	}
	slog.Warn("Heartbeat health ping failed, trying fallback", "error", err, "source", source)

	if err := h.fallback(ctx, source); err != nil {
		monitoring.TrackHeartbeat(source, "failed")
		slog.Error("Heartbeat fallback failed", "error", err, "source", source)
		return err
	}

	monitoring.TrackHeartbeat(source, "fallback")
	h.recordPing(ctx)
	return nil
}

func (h *Heartbeat) primary(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	return h.do(req)
}

func (h *Heartbeat) fallback(ctx context.Context, source string) error {
	body, err := json.Marshal(HeartbeatPayload{Token: uuid.NewString(), Source: source})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/v1/heartbeat", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(BackendKeyHeader, h.key)
	return h.do(req)
}

func (h *Heartbeat) do(req *http.Request) error {
	resp, err := h.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return nil
}

func (h *Heartbeat) recordPing(ctx context.Context) {
	if err := h.redis.Set(ctx, lastPingKey, h.now().Unix(), 0).Err(); err != nil {
		slog.Warn("Failed to record heartbeat", "error", err)
	}
}

// HeartbeatLog stores the fallback pings received by the heartbeat
// endpoint.
type HeartbeatLog struct {
	tables backend.Tables
}

func NewHeartbeatLog(tables backend.Tables) *HeartbeatLog {
	return &HeartbeatLog{tables: tables}
}

func (l *HeartbeatLog) Record(ctx context.Context, p HeartbeatPayload) error {
	if _, err := uuid.Parse(p.Token); err != nil {
		return models.Invalid("token", "deve ser um UUID")
	}
	switch p.Source {
	case SourceTicker, SourceFocus, SourceFallback:
	case "":
		p.Source = SourceFallback
	default:
		return models.Invalid("source", "é desconhecida")
	}

	if _, err := l.tables.Insert(ctx, schema.Heartbeats, map[string]any{
		"token":  p.Token,
		"source": p.Source,
	}); err != nil {
		return fmt.Errorf("record heartbeat: %w", err)
	}
	return nil
}
