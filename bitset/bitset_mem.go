package bitset

import (
	"context"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// BitSetMem is an in-memory implementation of IBitSet.
// _size_ is the number of bits in the bitset
// _set_ is the bitset implementation adopted from https://github.com/bits-and-blooms/bitset
//
// Set is not synchronized. Test, Has, HasMulti and BitCount only read and
// may be called from any number of goroutines once writes have stopped.
type BitSetMem struct {
	set  *bitset.BitSet
	size uint
}

// NewBitSetMem creates a new BitSetMem of _size_ bits, all unset
func NewBitSetMem(size uint) *BitSetMem {
	return &BitSetMem{bitset.New(size), size}
}

// Size returns the size of the bitset
func (bitSet *BitSetMem) Size() uint {
	return bitSet.size
}

// Test reports whether the bit at _index_ is set. Out of range indexes
// report false.
func (bitSet *BitSetMem) Test(index uint) bool {
	return index < bitSet.size && bitSet.set.Test(index)
}

// Set sets the bit at _index_. It panics if _index_ is out of range, since
// bits-and-blooms would otherwise grow the set past its fixed size.
func (bitSet *BitSetMem) Set(index uint) {
	if index >= bitSet.size {
		panic(fmt.Sprintf("bloomset: index %d out of range for bitset of size %d", index, bitSet.size))
	}
	bitSet.set.Set(index)
}

// Has checks if the bit at index _index_ is set
func (bitSet *BitSetMem) Has(_ context.Context, index uint) (bool, error) {
	if err := checkIndex(index, bitSet.size); err != nil {
		return false, err
	}
	return bitSet.set.Test(index), nil
}

// HasMulti checks if the bits at the indices specified by _indexes_ are set
func (bitSet *BitSetMem) HasMulti(_ context.Context, indexes []uint) ([]bool, error) {
	if err := checkIndexes(indexes, bitSet.size); err != nil {
		return nil, err
	}
	result := make([]bool, len(indexes))
	for i, index := range indexes {
		result[i] = bitSet.set.Test(index)
	}
	return result, nil
}

// Insert sets the bit at index specified by _index_
func (bitSet *BitSetMem) Insert(_ context.Context, index uint) error {
	if err := checkIndex(index, bitSet.size); err != nil {
		return err
	}
	bitSet.set.Set(index)
	return nil
}

// InsertMulti sets the bits at the indices specified by _indexes_
func (bitSet *BitSetMem) InsertMulti(_ context.Context, indexes []uint) error {
	if err := checkIndexes(indexes, bitSet.size); err != nil {
		return err
	}
	for _, index := range indexes {
		bitSet.set.Set(index)
	}
	return nil
}

// BitCount returns the total number of set bits in the bitset
func (bitSet *BitSetMem) BitCount(_ context.Context) (uint, error) {
	return bitSet.set.Count(), nil
}

// Equals checks if two BitSetMem are equal or not
func (firstBitSet *BitSetMem) Equals(_ context.Context, otherBitSet IBitSet) (bool, error) {
	secondBitSet, ok := otherBitSet.(*BitSetMem)
	if !ok {
		return false, fmt.Errorf("bloomset: invalid bitset type %T, should be *BitSetMem", otherBitSet)
	}
	return firstBitSet.size == secondBitSet.size && firstBitSet.set.Equal(secondBitSet.set), nil
}
