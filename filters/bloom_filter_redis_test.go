package filters

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kwertop/bloomset"
	"github.com/kwertop/bloomset/hash"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisFilterMatchesMemory(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	members := randomStrings(rand.NewSource(5), 3000, 8, nil)
	candidates := randomStrings(rand.NewSource(6), 500, 8, nil)

	memFilter, err := Build(members, 3000, 0.02, WithHashFamily(hash.Metro))
	require.NoError(t, err)
	redisFilter, err := BuildRedis(ctx, client, "words", members, 3000, 0.02, WithHashFamily(hash.Metro))
	require.NoError(t, err)

	require.Equal(t, memFilter.M(), redisFilter.M())
	require.Equal(t, memFilter.K(), redisFilter.K())
	require.Equal(t, memFilter.Count(), redisFilter.Count())

	memBits, _ := memFilter.BitSet().BitCount(ctx)
	redisBits, err := redisFilter.BitSet().BitCount(ctx)
	require.NoError(t, err)
	require.Equal(t, memBits, redisBits)

	for _, m := range members[:200] {
		ok, err := redisFilter.Contains(ctx, m)
		require.NoError(t, err)
		require.True(t, ok, "%v should be in filter", m)
	}
	for _, c := range candidates {
		ok, err := redisFilter.Contains(ctx, c)
		require.NoError(t, err)
		require.Equal(t, memFilter.Contains(c), ok, "filters disagree on %v", c)
	}
	ratio, err := redisFilter.FillRatio(ctx)
	require.NoError(t, err)
	require.InDelta(t, memFilter.FillRatio(), ratio, 1e-12)
}

func TestRedisFilterPublishesAtomically(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	_, err := BuildRedis(ctx, client, "words", []string{"cat", "dog", "bird"}, 10, 0.1)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"words", MetadataKey("words")}, mr.Keys())
}

func TestRedisFilterReplacesExisting(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	_, err := BuildRedis(ctx, client, "words", []string{"cat"}, 10, 0.1)
	require.NoError(t, err)
	filter, err := BuildRedis(ctx, client, "words", nil, 10, 0.1)
	require.NoError(t, err)
	ok, err := filter.Contains(ctx, "cat")
	require.NoError(t, err)
	require.False(t, ok, "rebuilt empty filter shouldn't contain cat")
}

func TestOpenRedis(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	built, err := BuildRedis(ctx, client, "words", []string{"cat", "dog", "bird"}, 10, 0.1, WithHashFamily(hash.XXH3))
	require.NoError(t, err)

	opened, err := OpenRedis(ctx, client, "words")
	require.NoError(t, err)
	require.Equal(t, built.M(), opened.M())
	require.Equal(t, built.K(), opened.K())
	require.Equal(t, built.P(), opened.P())
	require.Equal(t, built.N(), opened.N())
	require.Equal(t, uint(3), opened.Count())
	require.Equal(t, "xxh3", opened.HashFamily().Name())
	require.Equal(t, "words", opened.Key())

	for _, m := range []string{"cat", "dog", "bird"} {
		ok, err := opened.Contains(ctx, m)
		require.NoError(t, err)
		require.True(t, ok)
	}
	equal, err := built.BitSet().Equals(ctx, opened.BitSet())
	require.NoError(t, err)
	require.True(t, equal)
}

func TestOpenRedisNotFound(t *testing.T) {
	_, client := newTestClient(t)
	_, err := OpenRedis(context.Background(), client, "missing")
	require.ErrorIs(t, err, ErrFilterNotFound)
}

func TestOpenRedisBadMetadata(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	_, err := BuildRedis(ctx, client, "words", []string{"cat"}, 10, 0.1)
	require.NoError(t, err)

	client.HSet(ctx, MetadataKey("words"), "hash", "sha1")
	_, err = OpenRedis(ctx, client, "words")
	require.ErrorIs(t, err, bloomset.ErrInvalidParameter)

	client.HSet(ctx, MetadataKey("words"), "hash", "murmur3", "k", "99")
	_, err = OpenRedis(ctx, client, "words")
	require.ErrorIs(t, err, bloomset.ErrInvalidParameter)

	client.HSet(ctx, MetadataKey("words"), "k", "4", "p", "abc")
	_, err = OpenRedis(ctx, client, "words")
	require.ErrorIs(t, err, bloomset.ErrInvalidParameter)
}

func TestRedisFilterInvalidParameter(t *testing.T) {
	mr, client := newTestClient(t)
	_, err := BuildRedis(context.Background(), client, "words", []string{"cat"}, 0, 0.1)
	require.True(t, errors.Is(err, bloomset.ErrInvalidParameter))
	require.Empty(t, mr.Keys())
}

func TestRedisFilterEmpty(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	filter, err := BuildRedis(ctx, client, "words", nil, 100, 0.01)
	require.NoError(t, err)
	for _, c := range []string{"", "cat", "anything"} {
		ok, err := filter.Contains(ctx, c)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestRedisFilterDrop(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	filter, err := BuildRedis(ctx, client, "words", []string{"cat"}, 10, 0.1)
	require.NoError(t, err)
	require.NoError(t, filter.Drop(ctx))
	require.Empty(t, mr.Keys())
	_, err = OpenRedis(ctx, client, "words")
	require.ErrorIs(t, err, ErrFilterNotFound)
}

func TestRedisFilterConnectionError(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	filter, err := BuildRedis(ctx, client, "words", []string{"cat"}, 10, 0.1)
	require.NoError(t, err)
	mr.Close()
	_, err = filter.Contains(ctx, "cat")
	require.Error(t, err)
	_, err = BuildRedis(ctx, client, "other", []string{"cat"}, 10, 0.1)
	require.Error(t, err)
}
