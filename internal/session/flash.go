// Package session holds the per-browser flash message store.
//
// Identity itself travels in a signed cookie (internal/auth); flashes are
// the only server-side session state, kept as a short-lived JSON list in
// Redis keyed by a random cookie value.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FlashCookieName identifies the browser's flash queue.
	FlashCookieName = "mangaden_flash"

	keyPrefix = "flash:"
	flashTTL  = 15 * time.Minute
	idLength  = 16
)

// Flash types, rendered as different banner styles.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-time notification rendered on the next page load.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// FlashStore queues and drains one-time notifications for a browser.
type FlashStore interface {
	Add(ctx context.Context, w http.ResponseWriter, r *http.Request, f Flash) error
	Pop(ctx context.Context, r *http.Request) ([]Flash, error)
}

// RedisFlashStore keeps flash queues in Redis with automatic expiry.
type RedisFlashStore struct {
	client *redis.Client
}

func NewRedisFlashStore(client *redis.Client) *RedisFlashStore {
	return &RedisFlashStore{client: client}
}

// Add appends a flash to the browser's queue, creating the identifying
// cookie when the browser does not have one yet.
func (s *RedisFlashStore) Add(ctx context.Context, w http.ResponseWriter, r *http.Request, f Flash) error {
	id, err := s.flashID(w, r)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("flash marshal: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, keyPrefix+id, payload)
	pipe.Expire(ctx, keyPrefix+id, flashTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("flash store: %w", err)
	}
	return nil
}

// Pop drains and returns all queued flashes for the browser.
func (s *RedisFlashStore) Pop(ctx context.Context, r *http.Request) ([]Flash, error) {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		return nil, nil // no cookie, no pending flashes
	}

	key := keyPrefix + cookie.Value
	pipe := s.client.Pipeline()
	items := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("flash pop: %w", err)
	}

	var flashes []Flash
	for _, raw := range items.Val() {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue // skip corrupt entries rather than failing the render
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}

func (s *RedisFlashStore) flashID(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(FlashCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("flash id: %w", err)
	}
	id := hex.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}
