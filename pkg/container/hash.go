package container

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// HashBytes is Jenkins' one-at-a-time hash.
func HashBytes(data []byte) uint32 {
	var h uint32
	for _, b := range data {
		h += uint32(b)
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}

// HashString hashes s with HashBytes.
func HashString(s string) uint32 {
	return HashBytes([]byte(s))
}

// HashCombine mixes value into seed.
func HashCombine(seed, value uint32) uint32 {
	return seed ^ (value + 0x9e3779b9 + (seed << 6) + (seed >> 2))
}

func fold64(h uint64) uint32 {
	return uint32(h) ^ uint32(h>>32)
}

// HashUint32s hashes a fixed sequence of integers with xxhash.
func HashUint32s(values ...uint32) uint32 {
	var buf [64]byte
	b := buf[:0]
	for _, v := range values {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return fold64(xxhash.Sum64(b))
}

// HashInts hashes a fixed sequence of integers with xxhash.
func HashInts(values ...int) uint32 {
	var buf [64]byte
	b := buf[:0]
	for _, v := range values {
		b = binary.LittleEndian.AppendUint64(b, uint64(v))
	}
	return fold64(xxhash.Sum64(b))
}

// HashFloat64s hashes the bit patterns of a fixed sequence of floats.
func HashFloat64s(values ...float64) uint32 {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	return fold64(d.Sum64())
}
