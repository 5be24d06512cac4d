/*
Package hash provides the seeded hash families used to derive the k bit
positions of a Bloom filter. Each family is a single non-cryptographic
algorithm; hash function i of a filter is the family evaluated with seed i.
*/
package hash

import (
	"fmt"

	"github.com/dgryski/go-metro"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Family is a seeded hash algorithm.
type Family interface {
	// Name identifies the family, e.g. in Redis metadata.
	Name() string

	// Width is the number of significant bits returned by Sum.
	Width() uint

	// Sum hashes data with seed.
	Sum(data []byte, seed uint32) uint64
}

type murmur3Family struct{}

func (murmur3Family) Name() string { return "murmur3" }
func (murmur3Family) Width() uint  { return 32 }
func (murmur3Family) Sum(data []byte, seed uint32) uint64 {
	return uint64(murmur3.Sum32WithSeed(data, seed))
}

type murmur3x64Family struct{}

func (murmur3x64Family) Name() string { return "murmur3x64" }
func (murmur3x64Family) Width() uint  { return 64 }
func (murmur3x64Family) Sum(data []byte, seed uint32) uint64 {
	return murmur3.Sum64WithSeed(data, seed)
}

type xxh3Family struct{}

func (xxh3Family) Name() string { return "xxh3" }
func (xxh3Family) Width() uint  { return 64 }
func (xxh3Family) Sum(data []byte, seed uint32) uint64 {
	return xxh3.HashSeed(data, uint64(seed))
}

type metroFamily struct{}

func (metroFamily) Name() string { return "metro" }
func (metroFamily) Width() uint  { return 64 }
func (metroFamily) Sum(data []byte, seed uint32) uint64 {
	return metro.Hash64(data, uint64(seed))
}

var (
	// Murmur3 is 32-bit MurmurHash3 (x86_32).
	Murmur3 Family = murmur3Family{}
	// Murmur3x64 is the first half of 128-bit MurmurHash3 (x64_128).
	Murmur3x64 Family = murmur3x64Family{}
	// XXH3 is the 64-bit XXH3 hash.
	XXH3 Family = xxh3Family{}
	// Metro is 64-bit MetroHash.
	Metro Family = metroFamily{}

	// Default is the family used when none is configured.
	Default = Murmur3
)

var families = map[string]Family{
	Murmur3.Name():    Murmur3,
	Murmur3x64.Name(): Murmur3x64,
	XXH3.Name():       XXH3,
	Metro.Name():      Metro,
}

// ByName returns the family registered under name.
func ByName(name string) (Family, error) {
	f, ok := families[name]
	if !ok {
		return nil, fmt.Errorf("bloomset: unknown hash family %q", name)
	}
	return f, nil
}

// Names lists the registered family names.
func Names() []string {
	return []string{Murmur3.Name(), Murmur3x64.Name(), XXH3.Name(), Metro.Name()}
}

// MaxRange is the number of distinct values Sum can produce for f, saturated
// at the maximum uint64.
func MaxRange(f Family) uint64 {
	if f.Width() >= 64 {
		return ^uint64(0)
	}
	return uint64(1) << f.Width()
}
