/*
Package bitset implements the fixed size bit arrays that back a Bloom filter,
both in-memory and redis.
For in-memory, https://github.com/bits-and-blooms/bitset is used while
for redis, bitset operations of redis are used.
*/
package bitset

import (
	"context"
	"fmt"
)

type IBitSet interface {
	// Size returns the number of bits in the bitset
	Size() uint

	// Has returns true if the bit is set at index, else false
	Has(ctx context.Context, index uint) (bool, error)

	// HasMulti returns an array of boolean values for the queried
	// index values in the indexes array
	HasMulti(ctx context.Context, indexes []uint) ([]bool, error)

	// Insert sets the bit at index to true
	Insert(ctx context.Context, index uint) error

	// InsertMulti sets the bits at the indices passed in the indexes array
	InsertMulti(ctx context.Context, indexes []uint) error

	// BitCount returns the total number of set bits in the bitset
	BitCount(ctx context.Context) (uint, error)

	// Equals checks if two bitsets are equal
	Equals(ctx context.Context, otherBitSet IBitSet) (bool, error)
}

func checkIndex(index, size uint) error {
	if index >= size {
		return fmt.Errorf("bloomset: index %d out of range for bitset of size %d", index, size)
	}
	return nil
}

func checkIndexes(indexes []uint, size uint) error {
	for _, index := range indexes {
		if err := checkIndex(index, size); err != nil {
			return err
		}
	}
	return nil
}
