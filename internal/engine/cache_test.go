package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("transcript", "dQw4w9WgXcQ")
		k2 := CacheKey("transcript", "dQw4w9WgXcQ")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("transcript", "aaaaaaaaaaa")
		k2 := CacheKey("transcript", "bbbbbbbbbbb")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:3] != "yt:" {
			t.Errorf("expected yt: prefix, got %q", k[:3])
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	CacheSet(ctx, key, []byte("hello"))

	got, ok := CacheGet(ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestCacheJSON(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)
	ctx := context.Background()

	type payload struct {
		Text   string `json:"text"`
		Method string `json:"method"`
	}
	key := CacheKey("test", "json")
	CacheStoreJSON(ctx, key, payload{Text: "hi", Method: "whisper"})

	got, ok := CacheLoadJSON[payload](ctx, key)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Text != "hi" || got.Method != "whisper" {
		t.Errorf("got %+v", got)
	}

	CacheSet(ctx, CacheKey("test", "corrupt"), []byte("{not json"))
	if _, ok := CacheLoadJSON[payload](ctx, CacheKey("test", "corrupt")); ok {
		t.Error("expected miss on corrupt entry")
	}
}

func TestCacheExpiration(t *testing.T) {
	InitCache("", 1*time.Millisecond, 100, 5*time.Minute)

	ctx := context.Background()
	key := CacheKey("test", "expiry")

	CacheSet(ctx, key, []byte("temp"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache("", 1*time.Minute, 3, 5*time.Minute)
	ctx := context.Background()

	for i := range 5 {
		CacheSet(ctx, CacheKey("evict", fmt.Sprint(i)), []byte(fmt.Sprint(i)))
		time.Sleep(time.Millisecond)
	}

	count := 0
	transcriptCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("expected at most 3 entries, got %d", count)
	}
	if _, ok := CacheGet(ctx, CacheKey("evict", "4")); !ok {
		t.Error("newest entry should survive eviction")
	}
}

func TestCacheStats(t *testing.T) {
	InitCache("", 1*time.Minute, 100, 5*time.Minute)
	ctx := context.Background()

	h0, m0 := CacheStats()
	CacheGet(ctx, CacheKey("stats", "miss"))
	CacheSet(ctx, CacheKey("stats", "hit"), []byte("x"))
	CacheGet(ctx, CacheKey("stats", "hit"))
	h1, m1 := CacheStats()

	if h1-h0 != 1 {
		t.Errorf("hits delta = %d, want 1", h1-h0)
	}
	if m1-m0 != 1 {
		t.Errorf("misses delta = %d, want 1", m1-m0)
	}
}
