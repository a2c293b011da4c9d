package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisStore(t *testing.T) {
	// Skip test if Redis is not available
	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   2, // Use separate DB for cache tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	// Clean up test data
	defer client.FlushDB(ctx)

	s, err := New(Config{
		Client: client,
	})
	if err != nil {
		t.Fatalf("Failed to create Redis store: %v", err)
	}
	defer s.Close()

	t.Run("SetAndGet", func(t *testing.T) {
		key := "test-key"
		data := []byte("test data")

		if err := s.Set(ctx, key, data, time.Minute); err != nil {
			t.Fatalf("Failed to set data: %v", err)
		}

		got, err := s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Failed to get data: %v", err)
		}
		if string(got) != string(data) {
			t.Errorf("Expected data %s, got %s", data, got)
		}
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		got, err := s.Get(ctx, "non-existent-key")
		if err != nil {
			t.Fatalf("Failed to get non-existent key: %v", err)
		}
		if got != nil {
			t.Error("Expected nil for non-existent key, got data")
		}
	})

	t.Run("TTL", func(t *testing.T) {
		key := "ttl-key"
		ttl := 100 * time.Millisecond

		if err := s.Set(ctx, key, []byte("ttl data"), ttl); err != nil {
			t.Fatalf("Failed to set data with TTL: %v", err)
		}

		got, err := s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Failed to get data: %v", err)
		}
		if got == nil {
			t.Fatal("Expected data before expiration, got nil")
		}

		// Wait for expiration
		time.Sleep(ttl + 50*time.Millisecond)

		got, err = s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Failed to get expired data: %v", err)
		}
		if got != nil {
			t.Error("Expected nil for expired data, got data")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		key := "delete-key"

		if err := s.Set(ctx, key, []byte("delete data"), time.Minute); err != nil {
			t.Fatalf("Failed to set data: %v", err)
		}
		if err := s.Delete(ctx, key); err != nil {
			t.Fatalf("Failed to delete key: %v", err)
		}

		got, err := s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Failed to get data after deletion: %v", err)
		}
		if got != nil {
			t.Error("Expected nil after deletion, got data")
		}

		// Deleting a missing key is not an error.
		if err := s.Delete(ctx, key); err != nil {
			t.Fatalf("Delete of missing key failed: %v", err)
		}
	})
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New() should reject a nil client")
	}
}

func TestNewFromURLRejectsBadURL(t *testing.T) {
	if _, err := NewFromURL(context.Background(), "not a url"); err == nil {
		t.Fatal("NewFromURL() should reject an invalid URL")
	}
}
