package publisher

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test requires a running Redis instance and is skipped otherwise.
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	pub := NewRedisPublisher(ctx, "localhost:6379", 0, "test_listings", 1, 10)
	defer pub.Close()
	defer client.Del(ctx, "test_listings:0")

	payload := []byte(`{"platform":"eBay","title":"Wireless Mouse"}`)
	require.NoError(t, pub.Publish("eBay", payload))

	entries, err := client.XRange(ctx, "test_listings:0", "-", "+").Result()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	encoded, ok := entries[len(entries)-1].Values["eBay"].(string)
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	// Trim caps the stream length
	for i := 0; i < 20; i++ {
		require.NoError(t, pub.Publish("eBay", payload))
	}
	require.NoError(t, pub.TrimStreams())

	time.Sleep(50 * time.Millisecond)
	length, err := client.XLen(ctx, "test_listings:0").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, length, int64(10))
}
