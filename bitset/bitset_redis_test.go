package bitset

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestBitSetRedisHas(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	bitset, err := NewBitSetRedis(ctx, client, "bits", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bitset.Insert(ctx, 1)
	bitset.Insert(ctx, 3)
	bitset.Insert(ctx, 7)
	if ok, _ := bitset.Has(ctx, 1); !ok {
		t.Fatalf("should be true at index 1, got %v", ok)
	}
	if ok, _ := bitset.Has(ctx, 4); ok {
		t.Fatalf("should be false at index 4, got %v", ok)
	}
	if _, err := bitset.Has(ctx, 8); err == nil {
		t.Fatal("has at index 8 should fail for size 8")
	}
}

func TestBitSetRedisZeroed(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	mr.Set("bits", "\xff\xff")
	bitset, err := NewBitSetRedis(ctx, client, "bits", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	setBits, _ := bitset.BitCount(ctx)
	if setBits != 0 {
		t.Fatalf("new bitset should have no set bits, got %v", setBits)
	}
	length, _ := client.StrLen(ctx, "bits").Result()
	if length != 3 {
		t.Fatalf("20 bits should take 3 bytes, got %v", length)
	}
}

func TestBitSetRedisMulti(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	bitset, _ := NewBitSetRedis(ctx, client, "bits", 100)
	if err := bitset.InsertMulti(ctx, []uint{0, 42, 99}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := bitset.HasMulti(ctx, []uint{0, 1, 42, 98, 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []bool{true, false, true, false, true}
	for i := range want {
		if result[i] != want[i] {
			t.Fatalf("index %v: should be %v, got %v", i, want[i], result[i])
		}
	}
	setBits, _ := bitset.BitCount(ctx)
	if setBits != 3 {
		t.Fatalf("count of set bits should be 3, got %v", setBits)
	}
	if err := bitset.InsertMulti(ctx, nil); err == nil {
		t.Fatal("insert multi without indexes should fail")
	}
	if _, err := bitset.HasMulti(ctx, []uint{100}); err == nil {
		t.Fatal("has multi out of range should fail")
	}
}

func TestBitSetRedisFromKey(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	original, _ := NewBitSetRedis(ctx, client, "bits", 16)
	original.Insert(ctx, 9)
	attached, err := FromRedisKey(ctx, client, "bits", 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := attached.Has(ctx, 9); !ok {
		t.Fatal("attached bitset should see bit 9")
	}
	if _, err := FromRedisKey(ctx, client, "bits", 64); err == nil {
		t.Fatal("attaching with a larger size should fail")
	}
	if _, err := FromRedisKey(ctx, client, "missing", 8); err == nil {
		t.Fatal("attaching to a missing key should fail")
	}
}

func TestBitSetRedisNotEqual(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	aBitset, _ := NewBitSetRedis(ctx, client, "a", 8)
	bBitset := NewBitSetMem(8)
	if ok, _ := aBitset.Equals(ctx, bBitset); ok {
		t.Fatal("aBitset and bBitset shouldn't be equal")
	}
	cBitset, _ := NewBitSetRedis(ctx, client, "c", 8)
	cBitset.Insert(ctx, 5)
	if ok, _ := aBitset.Equals(ctx, cBitset); ok {
		t.Fatal("aBitset and cBitset shouldn't be equal")
	}
}

func TestBitSetRedisEqual(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	aBitset, _ := NewBitSetRedis(ctx, client, "a", 3)
	aBitset.Insert(ctx, 0)
	aBitset.Insert(ctx, 1)
	bBitset, _ := NewBitSetRedis(ctx, client, "b", 3)
	bBitset.Insert(ctx, 0)
	bBitset.Insert(ctx, 1)
	ok, err := aBitset.Equals(ctx, bBitset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("aBitset and bBitset should be equal")
	}
}

func TestBitSetRedisDelete(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	bitset, _ := NewBitSetRedis(ctx, client, "bits", 8)
	if err := bitset.Delete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.Exists("bits") {
		t.Fatal("bitset key should be gone")
	}
}
