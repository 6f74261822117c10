// Package storage implements out.FileStoragePort backends for CV files.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"talent_server/core/port/out"
	"talent_server/pkg/httputil"
)

// SupabaseConfig addresses one bucket of a Supabase Storage project.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
}

// SupabaseStorage uploads objects through the Storage REST API.
type SupabaseStorage struct {
	cfg    SupabaseConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	log    zerolog.Logger
}

func NewSupabaseStorage(cfg SupabaseConfig, client *http.Client, log zerolog.Logger) *SupabaseStorage {
	if client == nil {
		client = httputil.NewOptimizedClient(httputil.StorageClientConfig())
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	l := log.With().Str("component", "supabase_storage").Logger()

	settings := gobreaker.Settings{
		Name:        "supabase-storage",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A name collision is the caller's problem, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, out.ErrObjectExists)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &SupabaseStorage{
		cfg:    cfg,
		client: client,
		cb:     gobreaker.NewCircuitBreaker(settings),
		log:    l,
	}
}

func (s *SupabaseStorage) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.put(ctx, name, data, contentType)
	})
	if err != nil {
		return "", err
	}
	return s.PublicURL(name), nil
}

func (s *SupabaseStorage) put(ctx context.Context, name string, data []byte, contentType string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.cfg.URL, s.cfg.Bucket, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceKey)
	req.Header.Set("apikey", s.cfg.ServiceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if isDuplicate(resp.StatusCode, body) {
		return out.ErrObjectExists
	}
	return fmt.Errorf("upload %s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
}

// Supabase reports collisions either as 409 or as a 400 carrying the
// original status in the body.
func isDuplicate(status int, body []byte) bool {
	if status == http.StatusConflict {
		return true
	}
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "duplicate") || strings.Contains(lower, "already exists")
}

func (s *SupabaseStorage) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.cfg.URL, s.cfg.Bucket, url.PathEscape(name))
}

var _ out.FileStoragePort = (*SupabaseStorage)(nil)
