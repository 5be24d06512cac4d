/*
Package filters provides Bloom filters built once from a set of members and
queried afterwards.

A Bloom filter is a space-efficient probabilistic data structure that is used to test
whether an element is a member of a set. It provides a way to check for the presence of
an element in a set without actually storing the entire set. A lookup can report an
element that was never inserted (a false positive) but never misses one that was.
Refer: https://web.stanford.edu/~balaji/papers/bloom.pdf

BloomFilter keeps its bits in memory. RedisBloomFilter keeps them in a Redis string so
several processes can share one filter.
*/
package filters

import (
	"context"

	"github.com/kwertop/bloomset/bitset"
)

// BloomFilter is an in-memory Bloom filter. It is populated by Build and
// is read-only afterwards, so Contains may be called from any number of
// goroutines without locking.
type BloomFilter struct {
	filterParams
	filter *bitset.BitSetMem
}

// Build creates a BloomFilter sized for _numItems_ expected items at false
// positive rate _errorRate_ and inserts every string in _members_.
// _numItems_ only sizes the filter; it need not equal len(members).
// It fails with bloomset.ErrInvalidParameter when _numItems_ is zero or
// _errorRate_ is not in (0, 1).
func Build(members []string, numItems uint, errorRate float64, opts ...Option) (*BloomFilter, error) {
	params, err := newFilterParams(numItems, errorRate, opts)
	if err != nil {
		return nil, err
	}
	bloomFilter := &BloomFilter{
		filterParams: params,
		filter:       bitset.NewBitSetMem(params.size),
	}
	for _, member := range members {
		bloomFilter.insert([]byte(member))
	}
	return bloomFilter, nil
}

func (bloomFilter *BloomFilter) insert(data []byte) {
	for i := uint(0); i < bloomFilter.numHashes; i++ {
		bloomFilter.filter.Set(bloomFilter.index(data, i))
	}
	bloomFilter.count++
}

// Contains returns true if all the bits for _candidate_ are set, otherwise false
func (bloomFilter *BloomFilter) Contains(candidate string) bool {
	return bloomFilter.ContainsBytes([]byte(candidate))
}

// ContainsBytes is Contains for a byte slice
func (bloomFilter *BloomFilter) ContainsBytes(data []byte) bool {
	for i := uint(0); i < bloomFilter.numHashes; i++ {
		if !bloomFilter.filter.Test(bloomFilter.index(data, i)) {
			return false
		}
	}
	return true
}

// BitSet returns the internal bitset
func (bloomFilter *BloomFilter) BitSet() bitset.IBitSet {
	return bloomFilter.filter
}

// FillRatio returns the fraction of bits that are set
func (bloomFilter *BloomFilter) FillRatio() float64 {
	return float64(bloomFilter.setBits()) / float64(bloomFilter.size)
}

func (bloomFilter *BloomFilter) setBits() uint {
	n, _ := bloomFilter.filter.BitCount(context.Background())
	return n
}

// Equals checks if two BloomFilter's have the same parameters and bits
func (aFilter *BloomFilter) Equals(bFilter *BloomFilter) bool {
	if !aFilter.sameShape(&bFilter.filterParams) {
		return false
	}
	ok, _ := aFilter.filter.Equals(context.Background(), bFilter.filter)
	return ok
}
