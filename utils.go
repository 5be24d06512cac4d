/*
Package bloomset derives the sizing parameters shared by the Bloom filters in
the filters package and holds the helpers common to every backend.

Given an expected number of items n and an acceptable false positive rate p,
the filter needs

	m = ceil(-n * ln(p) / ln(2)^2)    bits
	k = ceil(-log2(p))                hash functions

Refer: https://web.stanford.edu/~balaji/papers/bloom.pdf
*/
package bloomset

import (
	"fmt"
	"math"
	"math/rand"
)

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const (
	letterIdxBits = 6                    // 6 bits to represent a letter index
	letterIdxMask = 1<<letterIdxBits - 1 // All 1-bits, as many as letterIdxBits
	letterIdxMax  = 63 / letterIdxBits   // # of letter indices fitting in 63 bits
)

// maxFilterSize bounds m so that bit offsets stay representable as int64,
// which is what Redis bit commands take.
const maxFilterSize = float64(math.MaxInt64)

// ValidateParameters checks that _numItems_ and _errorRate_ can size a filter.
func ValidateParameters(numItems uint, errorRate float64) error {
	if numItems == 0 {
		return fmt.Errorf("%w: expected number of items must be positive, got %d", ErrInvalidParameter, numItems)
	}
	if math.IsNaN(errorRate) || errorRate <= 0 || errorRate >= 1 {
		return fmt.Errorf("%w: false positive rate must be in (0, 1), got %v", ErrInvalidParameter, errorRate)
	}
	return nil
}

// CalculateFilterSize returns the number of bits m needed to hold _length_
// items at false positive rate _errorRate_.
func CalculateFilterSize(length uint, errorRate float64) uint {
	return uint(math.Ceil(-(float64(length) * math.Log(errorRate)) / math.Pow(math.Log(2), 2)))
}

// CalculateNumHashes returns the number of hash functions k for _errorRate_.
func CalculateNumHashes(errorRate float64) uint {
	return uint(math.Ceil(-math.Log2(errorRate)))
}

// Parameters validates _numItems_ and _errorRate_ and returns the derived
// filter size m and hash count k.
func Parameters(numItems uint, errorRate float64) (size, numHashes uint, err error) {
	if err := ValidateParameters(numItems, errorRate); err != nil {
		return 0, 0, err
	}
	raw := math.Ceil(-(float64(numItems) * math.Log(errorRate)) / math.Pow(math.Log(2), 2))
	if raw > maxFilterSize {
		return 0, 0, fmt.Errorf("%w: filter of %v bits is too large", ErrInvalidParameter, raw)
	}
	size = CalculateFilterSize(numItems, errorRate)
	numHashes = CalculateNumHashes(errorRate)
	if size < 1 || numHashes < 1 {
		return 0, 0, fmt.Errorf("%w: derived size %d and hash count %d must both be at least 1", ErrInvalidParameter, size, numHashes)
	}
	return size, numHashes, nil
}

// EstimateFalsePositiveRate returns (1 - e^(-k*n/m))^k, the expected false
// positive rate of an m bit filter with k hashes after n insertions.
func EstimateFalsePositiveRate(size, numHashes, numItems uint) float64 {
	if size == 0 || numItems == 0 {
		return 0
	}
	k := float64(numHashes)
	return math.Pow(1-math.Exp(-k*float64(numItems)/float64(size)), k)
}

// GenerateRandomString returns an alphabetic string of length _n_ drawn from _src_.
func GenerateRandomString(src rand.Source, n int) string {
	b := make([]byte, n)
	// A src.Int63() generates 63 random bits, enough for letterIdxMax characters!
	for i, cache, remain := n-1, src.Int63(), letterIdxMax; i >= 0; {
		if remain == 0 {
			cache, remain = src.Int63(), letterIdxMax
		}
		if idx := int(cache & letterIdxMask); idx < len(letterBytes) {
			b[i] = letterBytes[idx]
			i--
		}
		cache >>= letterIdxBits
		remain--
	}
	return string(b)
}
