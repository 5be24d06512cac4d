package evaluate

import (
	"fmt"
	"math/rand"

	"github.com/kwertop/bloomset"
)

func memberSet(members []string) map[string]struct{} {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return set
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// Reversed reverses every member and keeps the reversals that are not
// themselves members. Palindromes are dropped this way.
func Reversed(members []string) []string {
	set := memberSet(members)
	candidates := make([]string, 0, len(members))
	for _, m := range members {
		r := reverse(m)
		if _, ok := set[r]; !ok {
			candidates = append(candidates, r)
		}
	}
	return candidates
}

// Random returns count distinct alphabetic strings of the given length, none
// of which is a member. The same seed gives the same strings.
func Random(members []string, count, length int, seed int64) ([]string, error) {
	if count < 0 || length < 1 {
		return nil, fmt.Errorf("bloomset: bad random candidate shape count=%d length=%d", count, length)
	}
	set := memberSet(members)
	seen := make(map[string]struct{}, count)
	candidates := make([]string, 0, count)
	src := rand.NewSource(seed)
	maxAttempts := 100*count + 1000
	for attempts := 0; len(candidates) < count; attempts++ {
		if attempts == maxAttempts {
			return nil, fmt.Errorf("bloomset: could only generate %d of %d absent candidates of length %d", len(candidates), count, length)
		}
		s := bloomset.GenerateRandomString(src, length)
		if _, ok := set[s]; ok {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		candidates = append(candidates, s)
	}
	return candidates, nil
}
