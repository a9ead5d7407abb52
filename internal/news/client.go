package news

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/config"
	"go.uber.org/zap"
)

const cachePrefix = "news"

// Client proxies NewsAPI. Successful responses are cached in Redis when a
// client is supplied.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	cache   *redis.Client
	ttl     time.Duration
	log     *zap.Logger
}

func NewClient(cfg *config.Config, cache *redis.Client, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.NewsAPIBaseURL,
		apiKey:  cfg.NewsAPIKey,
		timeout: cfg.UpstreamTimeout,
		cache:   cache,
		ttl:     cfg.NewsCacheTTL,
		log:     log,
	}
}

type apiError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) Everything(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return c.fetch(ctx, "/everything", params)
}

func (c *Client) Sources(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return c.fetch(ctx, "/sources", params)
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, apperror.Upstream("Layanan berita belum dikonfigurasi", "news API key not configured").
			WithStatus(fiber.StatusInternalServerError)
	}

	query := params.Encode()
	key := cacheKey(path, query)
	if body, ok := c.cached(ctx, key); ok {
		return body, nil
	}

	agent := fiber.Get(c.baseURL + path + "?" + query)
	agent.Set("X-Api-Key", c.apiKey)
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}
	if err := agent.Parse(); err != nil {
		return nil, apperror.Upstream("Gagal mengambil berita", "invalid news endpoint").Wrap(err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, apperror.Upstream("Gagal mengambil berita", "news service unreachable").Wrap(errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, upstreamError(path, code, body)
	}
	if !json.Valid(body) {
		return nil, apperror.Upstream("Gagal mengambil berita", "malformed news response")
	}

	c.store(ctx, key, body)
	return json.RawMessage(body), nil
}

func upstreamError(path string, code int, body []byte) *apperror.Error {
	switch code {
	case fiber.StatusUnauthorized:
		return apperror.Upstream("API key berita tidak valid", "invalid news API key").WithStatus(code)
	case fiber.StatusTooManyRequests:
		return apperror.Upstream("Batas permintaan berita terlampaui", "news API rate limit exceeded").WithStatus(code)
	case fiber.StatusBadRequest:
		if path == "/everything" {
			detail := "invalid request parameters"
			var ae apiError
			if json.Unmarshal(body, &ae) == nil && ae.Message != "" {
				detail = ae.Message
			}
			return apperror.Validation("Parameter pencarian berita tidak valid", detail)
		}
	}
	return apperror.Upstream("Gagal mengambil berita", fmt.Sprintf("news service responded with status %d", code))
}

func cacheKey(path, query string) string {
	sum := sha1.Sum([]byte(path + "?" + query))
	return fmt.Sprintf("%s:%x", cachePrefix, sum[:])
}

func (c *Client) cached(ctx context.Context, key string) (json.RawMessage, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("news cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return json.RawMessage(body), true
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.log.Warn("news cache write failed", zap.String("key", key), zap.Error(err))
	}
}
