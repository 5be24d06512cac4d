package filters

import "github.com/kwertop/bloomset/hash"

// Params describes how a built filter was sized. Both BloomFilter and
// RedisBloomFilter implement it.
type Params interface {
	M() uint
	K() uint
	P() float64
	N() uint
	Count() uint
	HashFamily() hash.Family
	EstimatedFalsePositiveRate() float64
}

var (
	_ Params = (*BloomFilter)(nil)
	_ Params = (*RedisBloomFilter)(nil)
)
