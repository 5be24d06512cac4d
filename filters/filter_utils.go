package filters

import (
	"fmt"

	"github.com/kwertop/bloomset"
	"github.com/kwertop/bloomset/hash"
)

type options struct {
	family hash.Family
}

// Option configures how a filter is built.
type Option func(*options)

// WithHashFamily selects the seeded hash family used to place bits.
// hash.Default is used otherwise.
func WithHashFamily(family hash.Family) Option {
	return func(o *options) {
		o.family = family
	}
}

// filterParams holds the sizing shared by every filter in this package.
// _numItems_ and _errorRate_ are the values the filter was sized from,
// _size_ and _numHashes_ the derived m and k, and _count_ the number of
// members inserted at build time.
type filterParams struct {
	numItems  uint
	errorRate float64
	size      uint
	numHashes uint
	family    hash.Family
	count     uint
}

func newFilterParams(numItems uint, errorRate float64, opts []Option) (filterParams, error) {
	o := options{family: hash.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if o.family == nil {
		return filterParams{}, fmt.Errorf("%w: hash family must not be nil", bloomset.ErrInvalidParameter)
	}
	size, numHashes, err := bloomset.Parameters(numItems, errorRate)
	if err != nil {
		return filterParams{}, err
	}
	if uint64(size) > hash.MaxRange(o.family) {
		return filterParams{}, fmt.Errorf("%w: %d bits exceed the range of the %d-bit %s hash", bloomset.ErrInvalidParameter, size, o.family.Width(), o.family.Name())
	}
	return filterParams{
		numItems:  numItems,
		errorRate: errorRate,
		size:      size,
		numHashes: numHashes,
		family:    o.family,
	}, nil
}

// index returns the bit position of hash function _i_ for _data_.
func (p *filterParams) index(data []byte, i uint) uint {
	return uint(p.family.Sum(data, uint32(i)) % uint64(p.size))
}

// appendIndexes appends the k bit positions of _data_ to _dst_.
func (p *filterParams) appendIndexes(dst []uint, data []byte) []uint {
	for i := uint(0); i < p.numHashes; i++ {
		dst = append(dst, p.index(data, i))
	}
	return dst
}

// M returns the number of bits in the filter
func (p *filterParams) M() uint {
	return p.size
}

// K returns the number of hash functions applied to every element
func (p *filterParams) K() uint {
	return p.numHashes
}

// P returns the false positive rate the filter was sized for
func (p *filterParams) P() float64 {
	return p.errorRate
}

// N returns the expected number of items the filter was sized for
func (p *filterParams) N() uint {
	return p.numItems
}

// Count returns the number of members inserted, duplicates included
func (p *filterParams) Count() uint {
	return p.count
}

// HashFamily returns the hash family used to place bits
func (p *filterParams) HashFamily() hash.Family {
	return p.family
}

// EstimatedFalsePositiveRate returns (1 - e^(-k*count/m))^k
func (p *filterParams) EstimatedFalsePositiveRate() float64 {
	return bloomset.EstimateFalsePositiveRate(p.size, p.numHashes, p.count)
}

func (p *filterParams) sameShape(o *filterParams) bool {
	return p.size == o.size && p.numHashes == o.numHashes && p.family.Name() == o.family.Name()
}
