package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/symptodex/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultDialTimeout = 5 * time.Second
	readyBackoffMin    = 50 * time.Millisecond
	readyBackoffMax    = time.Second
)

// Config holds connection parameters for the result cache.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// Store is the rueidis-backed result cache.
type Store struct {
	client rueidis.Client
}

// NewStore connects to Redis. Client-side caching stays off: entries are short-lived and written once.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("cache: at least one address is required")
	}
	if cfg.DB < 0 {
		return nil, fmt.Errorf("cache: db must be non-negative, got %d", cfg.DB)
	}
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      cfg.Addrs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		DisableCache:     true,
		Dialer:           net.Dialer{Timeout: dial},
		ConnWriteTimeout: dial,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with doubling backoff until the store answers or timeout expires.
// The last ping error is reported alongside the deadline.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := readyBackoffMin
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("cache not ready after %s: %w (last ping: %w)", timeout, ctx.Err(), err)
		case <-t.C:
		}
		wait = min(wait*2, readyBackoffMax)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
