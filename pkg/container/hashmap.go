package container

const (
	slotEmpty     uint32 = 0
	slotTombstone uint32 = 1
	// hashes colliding with the reserved slot markers are remapped here
	slotRemapped uint32 = 2

	defaultTableSize = 128
	maxLoadPercent   = 70
)

// Hasher maps a key to a 32-bit hash.
type Hasher[K comparable] func(K) uint32

// HashMap is an open-addressing hash table with triangular probing.
// The table size is always a power of two so the probe sequence
// (i*i + i) / 2 visits every slot before repeating.
type HashMap[K comparable, V any] struct {
	hash   Hasher[K]
	hashes []uint32
	keys   []K
	values []V
	count  int // live entries
	filled int // live entries plus tombstones
}

// NewHashMap returns an empty map using hash for its keys.
func NewHashMap[K comparable, V any](hash Hasher[K]) *HashMap[K, V] {
	return NewHashMapSize[K, V](hash, defaultTableSize)
}

// NewHashMapSize returns an empty map whose table holds at least size slots.
func NewHashMapSize[K comparable, V any](hash Hasher[K], size int) *HashMap[K, V] {
	m := &HashMap[K, V]{hash: hash}
	m.alloc(roundPow2(size))
	return m
}

func roundPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	if size < 8 {
		size = 8
	}
	return size
}

func (m *HashMap[K, V]) alloc(size int) {
	m.hashes = make([]uint32, size)
	m.keys = make([]K, size)
	m.values = make([]V, size)
	m.count = 0
	m.filled = 0
}

func (m *HashMap[K, V]) keyHash(k K) uint32 {
	h := m.hash(k)
	if h == slotEmpty || h == slotTombstone {
		h = slotRemapped
	}
	return h
}

// Len returns the number of live entries.
func (m *HashMap[K, V]) Len() int { return m.count }

// TableSize returns the number of slots.
func (m *HashMap[K, V]) TableSize() int { return len(m.hashes) }

// rehash rebuilds the table, doubling it when live entries alone are above
// half the load limit. Tombstones are dropped.
func (m *HashMap[K, V]) rehash() {
	size := len(m.hashes)
	if m.count*100/size >= maxLoadPercent/2 {
		size *= 2
	}
	oldHashes, oldKeys, oldValues := m.hashes, m.keys, m.values
	m.alloc(size)
	for i, h := range oldHashes {
		if h == slotEmpty || h == slotTombstone {
			continue
		}
		m.place(h, oldKeys[i], oldValues[i])
	}
}

// place stores an entry known to be absent from the table.
func (m *HashMap[K, V]) place(h uint32, k K, v V) {
	mask := uint32(len(m.hashes) - 1)
	pos := h & mask
	for i := uint32(1); ; i++ {
		if m.hashes[pos] == slotEmpty {
			m.hashes[pos] = h
			m.keys[pos] = k
			m.values[pos] = v
			m.count++
			m.filled++
			return
		}
		pos = (pos + i) & mask
	}
}

// Insert stores v under k. If k is already present the stored value is
// left alone and ErrKeyExists is returned.
func (m *HashMap[K, V]) Insert(k K, v V) error {
	if (m.filled+1)*100 >= len(m.hashes)*maxLoadPercent {
		m.rehash()
	}

	h := m.keyHash(k)
	mask := uint32(len(m.hashes) - 1)
	pos := h & mask
	tombstone := -1
	for i := uint32(1); i <= uint32(len(m.hashes)); i++ {
		switch m.hashes[pos] {
		case slotEmpty:
			slot := int(pos)
			if tombstone >= 0 {
				slot = tombstone
			} else {
				m.filled++
			}
			m.hashes[slot] = h
			m.keys[slot] = k
			m.values[slot] = v
			m.count++
			return nil
		case slotTombstone:
			if tombstone < 0 {
				tombstone = int(pos)
			}
		case h:
			if m.keys[pos] == k {
				return ErrKeyExists
			}
		}
		pos = (pos + i) & mask
	}

	// Every slot was visited; only reachable when tombstones fill the rest
	// of the table, so one of them is free.
	m.hashes[tombstone] = h
	m.keys[tombstone] = k
	m.values[tombstone] = v
	m.count++
	return nil
}

func (m *HashMap[K, V]) lookup(k K) int {
	h := m.keyHash(k)
	mask := uint32(len(m.hashes) - 1)
	pos := h & mask
	for i := uint32(1); i <= uint32(len(m.hashes)); i++ {
		switch m.hashes[pos] {
		case slotEmpty:
			return -1
		case h:
			if m.keys[pos] == k {
				return int(pos)
			}
		}
		pos = (pos + i) & mask
	}
	return -1
}

// Find returns the value stored under k.
func (m *HashMap[K, V]) Find(k K) (V, bool) {
	if slot := m.lookup(k); slot >= 0 {
		return m.values[slot], true
	}
	var zero V
	return zero, false
}

// Contains reports whether k is present.
func (m *HashMap[K, V]) Contains(k K) bool {
	return m.lookup(k) >= 0
}

// Erase removes k and returns the value it held so the caller can dispose
// of it.
func (m *HashMap[K, V]) Erase(k K) (V, bool) {
	var zero V
	slot := m.lookup(k)
	if slot < 0 {
		return zero, false
	}
	v := m.values[slot]
	m.hashes[slot] = slotTombstone
	m.keys[slot] = *new(K)
	m.values[slot] = zero
	m.count--
	return v, true
}

// Each calls fn for every entry until fn returns false. Order is unspecified.
func (m *HashMap[K, V]) Each(fn func(K, V) bool) {
	for i, h := range m.hashes {
		if h == slotEmpty || h == slotTombstone {
			continue
		}
		if !fn(m.keys[i], m.values[i]) {
			return
		}
	}
}

// Clear removes every entry, keeping the table size.
func (m *HashMap[K, V]) Clear() {
	m.alloc(len(m.hashes))
}
