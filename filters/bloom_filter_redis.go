package filters

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/kwertop/bloomset"
	"github.com/kwertop/bloomset/bitset"
	"github.com/kwertop/bloomset/hash"
	"github.com/redis/go-redis/v9"
)

// ErrFilterNotFound is returned by OpenRedis when no filter is published at a key.
var ErrFilterNotFound = errors.New("bloomset: filter not found")

// insertBatchSize caps the number of SETBIT commands sent per pipeline.
const insertBatchSize = 4096

// RedisBloomFilter is a Bloom filter whose bits live in a Redis string at
// _key_. Its metadata (n, p, m, k, hash family and member count) is kept in
// a Redis hash at MetadataKey(key).
// It is published only once fully built and is read-only afterwards.
type RedisBloomFilter struct {
	filterParams
	client *redis.Client
	key    string
	filter *bitset.BitSetRedis
}

// MetadataKey returns the Redis key holding the metadata of the filter at _key_
func MetadataKey(key string) string {
	return key + ":meta"
}

// BuildRedis creates a Redis backed filter at _key_ sized for _numItems_ and
// _errorRate_ and inserts every string in _members_. Bits are written to a
// staging key first; the bitset and its metadata then replace whatever was
// at _key_ in a single transaction.
func BuildRedis(ctx context.Context, client *redis.Client, key string, members []string, numItems uint, errorRate float64, opts ...Option) (*RedisBloomFilter, error) {
	params, err := newFilterParams(numItems, errorRate, opts)
	if err != nil {
		return nil, err
	}
	staging := key + ":staging:" + bloomset.GenerateRandomString(rand.NewSource(time.Now().UnixNano()), 16)
	stagingSet, err := bitset.NewBitSetRedis(ctx, client, staging, params.size)
	if err != nil {
		return nil, err
	}
	if err := fillRedis(ctx, stagingSet, &params, members); err != nil {
		_ = stagingSet.Delete(ctx)
		return nil, err
	}
	params.count = uint(len(members))

	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Rename(ctx, staging, key)
		pipe.HSet(ctx, MetadataKey(key), map[string]interface{}{
			"n":     params.numItems,
			"p":     strconv.FormatFloat(params.errorRate, 'g', -1, 64),
			"m":     params.size,
			"k":     params.numHashes,
			"hash":  params.family.Name(),
			"count": params.count,
		})
		return nil
	})
	if err != nil {
		_ = stagingSet.Delete(ctx)
		return nil, fmt.Errorf("bloomset: error while publishing filter %q: %w", key, err)
	}
	filter, err := bitset.FromRedisKey(ctx, client, key, params.size)
	if err != nil {
		return nil, err
	}
	return &RedisBloomFilter{filterParams: params, client: client, key: key, filter: filter}, nil
}

func fillRedis(ctx context.Context, filter *bitset.BitSetRedis, params *filterParams, members []string) error {
	indexes := make([]uint, 0, insertBatchSize+params.numHashes)
	for _, member := range members {
		indexes = params.appendIndexes(indexes, []byte(member))
		if len(indexes) >= insertBatchSize {
			if err := filter.InsertMulti(ctx, indexes); err != nil {
				return err
			}
			indexes = indexes[:0]
		}
	}
	if len(indexes) > 0 {
		return filter.InsertMulti(ctx, indexes)
	}
	return nil
}

// OpenRedis attaches to the filter published at _key_ by BuildRedis.
// It fails with ErrFilterNotFound when there is none, and with
// bloomset.ErrInvalidParameter when its metadata is unusable.
func OpenRedis(ctx context.Context, client *redis.Client, key string) (*RedisBloomFilter, error) {
	values, err := client.HGetAll(ctx, MetadataKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("bloomset: error while fetching metadata of %q: %w", key, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrFilterNotFound, key)
	}
	params, err := parseMetadata(values)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata of %q: %v", bloomset.ErrInvalidParameter, key, err)
	}
	filter, err := bitset.FromRedisKey(ctx, client, key, params.size)
	if err != nil {
		return nil, err
	}
	return &RedisBloomFilter{filterParams: params, client: client, key: key, filter: filter}, nil
}

func parseMetadata(values map[string]string) (filterParams, error) {
	numItems, err := strconv.ParseUint(values["n"], 10, 64)
	if err != nil {
		return filterParams{}, fmt.Errorf("field n: %v", err)
	}
	errorRate, err := strconv.ParseFloat(values["p"], 64)
	if err != nil {
		return filterParams{}, fmt.Errorf("field p: %v", err)
	}
	count, err := strconv.ParseUint(values["count"], 10, 64)
	if err != nil {
		return filterParams{}, fmt.Errorf("field count: %v", err)
	}
	family, err := hash.ByName(values["hash"])
	if err != nil {
		return filterParams{}, err
	}
	params, err := newFilterParams(uint(numItems), errorRate, []Option{WithHashFamily(family)})
	if err != nil {
		return filterParams{}, err
	}
	if values["m"] != strconv.FormatUint(uint64(params.size), 10) || values["k"] != strconv.FormatUint(uint64(params.numHashes), 10) {
		return filterParams{}, fmt.Errorf("m=%s k=%s do not match n=%d p=%v", values["m"], values["k"], numItems, errorRate)
	}
	params.count = uint(count)
	return params, nil
}

// Contains returns true if all the bits for _candidate_ are set, otherwise false
func (bloomFilter *RedisBloomFilter) Contains(ctx context.Context, candidate string) (bool, error) {
	indexes := bloomFilter.appendIndexes(make([]uint, 0, bloomFilter.numHashes), []byte(candidate))
	result, err := bloomFilter.filter.HasMulti(ctx, indexes)
	if err != nil {
		return false, err
	}
	for _, ok := range result {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Key returns the Redis key holding the bits of the filter
func (bloomFilter *RedisBloomFilter) Key() string {
	return bloomFilter.key
}

// BitSet returns the internal bitset
func (bloomFilter *RedisBloomFilter) BitSet() bitset.IBitSet {
	return bloomFilter.filter
}

// FillRatio returns the fraction of bits that are set
func (bloomFilter *RedisBloomFilter) FillRatio(ctx context.Context) (float64, error) {
	n, err := bloomFilter.filter.BitCount(ctx)
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(bloomFilter.size), nil
}

// Drop deletes the bits and the metadata of the filter from Redis
func (bloomFilter *RedisBloomFilter) Drop(ctx context.Context) error {
	if err := bloomFilter.client.Del(ctx, bloomFilter.key, MetadataKey(bloomFilter.key)).Err(); err != nil {
		return fmt.Errorf("bloomset: error while dropping filter %q: %w", bloomFilter.key, err)
	}
	return nil
}
