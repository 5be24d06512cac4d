package bitset

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// BitSetRedis is an implementation of IBitSet.
// size is the number of bits in the bitset
// key is the redis key to the bitset data structure in redis
// Bitsets or Bitmaps are implemented in Redis using string.
// All bit operations are done on the string stored at _key_.
// For more details, please refer https://redis.io/docs/data-types/bitmaps/
type BitSetRedis struct {
	client *redis.Client
	size   uint
	key    string
}

// NewBitSetRedis creates a new BitSetRedis of _size_ bits at _key_. Any value
// already stored at _key_ is replaced by an all-zero string long enough to
// hold _size_ bits.
func NewBitSetRedis(ctx context.Context, client *redis.Client, key string, size uint) (*BitSetRedis, error) {
	if size == 0 {
		return nil, fmt.Errorf("bloomset: redis bitset size must be positive")
	}
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SetBit(ctx, key, int64(size-1), 0)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bloomset: error while creating redis bitset %q: %w", key, err)
	}
	return &BitSetRedis{client: client, size: size, key: key}, nil
}

// FromRedisKey attaches to the bitset of _size_ bits already saved at redis
// key _key_
func FromRedisKey(ctx context.Context, client *redis.Client, key string, size uint) (*BitSetRedis, error) {
	length, err := client.StrLen(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("bloomset: error while reading redis bitset %q: %w", key, err)
	}
	if uint(length)*8 < size {
		return nil, fmt.Errorf("bloomset: redis bitset %q holds %d bits, need %d", key, length*8, size)
	}
	return &BitSetRedis{client: client, size: size, key: key}, nil
}

// Size returns the size of the bitset saved in redis
func (bitSet *BitSetRedis) Size() uint {
	return bitSet.size
}

// Key gives the key at which the bitset is saved in redis
func (bitSet *BitSetRedis) Key() string {
	return bitSet.key
}

// Has checks if the bit at index _index_ is set
func (bitSet *BitSetRedis) Has(ctx context.Context, index uint) (bool, error) {
	if err := checkIndex(index, bitSet.size); err != nil {
		return false, err
	}
	val, err := bitSet.client.GetBit(ctx, bitSet.key, int64(index)).Result()
	if err != nil {
		return false, fmt.Errorf("bloomset: error while reading bit %d of %q: %w", index, bitSet.key, err)
	}
	return val != 0, nil
}

// HasMulti checks if the bits at the indices specified by _indexes_ are set
// using a single pipeline
func (bitSet *BitSetRedis) HasMulti(ctx context.Context, indexes []uint) ([]bool, error) {
	if len(indexes) == 0 {
		return nil, errors.New("bloomset: at least 1 index is required")
	}
	if err := checkIndexes(indexes, bitSet.size); err != nil {
		return nil, err
	}
	pipe := bitSet.client.Pipeline()
	values := make([]*redis.IntCmd, len(indexes))
	for i := range indexes {
		values[i] = pipe.GetBit(ctx, bitSet.key, int64(indexes[i]))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("bloomset: error while reading bits of %q: %w", bitSet.key, err)
	}
	result := make([]bool, len(values))
	for i := range values {
		result[i] = values[i].Val() != 0
	}
	return result, nil
}

// Insert sets the bit at index specified by _index_
func (bitSet *BitSetRedis) Insert(ctx context.Context, index uint) error {
	if err := checkIndex(index, bitSet.size); err != nil {
		return err
	}
	if err := bitSet.client.SetBit(ctx, bitSet.key, int64(index), 1).Err(); err != nil {
		return fmt.Errorf("bloomset: error while setting bit %d of %q: %w", index, bitSet.key, err)
	}
	return nil
}

// InsertMulti sets the bits at the indices specified by _indexes_ using a
// single pipeline
func (bitSet *BitSetRedis) InsertMulti(ctx context.Context, indexes []uint) error {
	if len(indexes) == 0 {
		return errors.New("bloomset: at least 1 index is required")
	}
	if err := checkIndexes(indexes, bitSet.size); err != nil {
		return err
	}
	pipe := bitSet.client.Pipeline()
	for i := range indexes {
		pipe.SetBit(ctx, bitSet.key, int64(indexes[i]), 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("bloomset: error while setting bits of %q: %w", bitSet.key, err)
	}
	return nil
}

// BitCount returns the total number of set bits in the bitset
func (bitSet *BitSetRedis) BitCount(ctx context.Context) (uint, error) {
	bitRange := &redis.BitCount{Start: 0, End: -1}
	val, err := bitSet.client.BitCount(ctx, bitSet.key, bitRange).Result()
	if err != nil {
		return 0, fmt.Errorf("bloomset: error while counting bits of %q: %w", bitSet.key, err)
	}
	return uint(val), nil
}

// Equals checks if two BitSetRedis hold the same bits
func (aSet *BitSetRedis) Equals(ctx context.Context, otherBitSet IBitSet) (bool, error) {
	bSet, ok := otherBitSet.(*BitSetRedis)
	if !ok {
		return false, fmt.Errorf("bloomset: invalid bitset type %T, should be *BitSetRedis", otherBitSet)
	}
	if aSet.size != bSet.size {
		return false, nil
	}
	aSetVal, err := aSet.client.Get(ctx, aSet.key).Result()
	if err != nil {
		return false, fmt.Errorf("bloomset: error while reading %q: %w", aSet.key, err)
	}
	bSetVal, err := bSet.client.Get(ctx, bSet.key).Result()
	if err != nil {
		return false, fmt.Errorf("bloomset: error while reading %q: %w", bSet.key, err)
	}
	return aSetVal == bSetVal, nil
}

// Delete removes the bitset from redis
func (bitSet *BitSetRedis) Delete(ctx context.Context) error {
	if err := bitSet.client.Del(ctx, bitSet.key).Err(); err != nil {
		return fmt.Errorf("bloomset: error while deleting %q: %w", bitSet.key, err)
	}
	return nil
}
