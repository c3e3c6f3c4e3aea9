package insts

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// CacheConfig holds decoded-instruction cache parameters.
type CacheConfig struct {
	// Sets is the number of sets in the directory.
	Sets int
	// Associativity is the number of ways per set.
	Associativity int
}

// DefaultCacheConfig returns a cache large enough to hold every opcode slot
// of a typical ROM: 256 sets, 4-way.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Sets:          256,
		Associativity: 4,
	}
}

// CacheStatistics holds decoded-instruction cache statistics.
type CacheStatistics struct {
	Lookups   uint64
	Hits      uint64
	Misses    uint64
	Stale     uint64
	Evictions uint64
}

// HitRate returns the fraction of lookups served from the cache.
func (s CacheStatistics) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups)
}

// slotSize is the directory block size. Addresses are scaled by it so every
// byte address owns exactly one block, including odd program counters.
const slotSize = 2

// Cache memoizes decoded instructions per address using an Akita cache
// directory for tag and LRU management. Each entry remembers the raw opcode
// it was decoded from, so a write to program memory is caught on the next
// lookup and never executes a stale decode.
type Cache struct {
	config    CacheConfig
	decoder   *Decoder
	directory *akitacache.DirectoryImpl

	// entries is indexed by (setID * associativity + wayID).
	entries []Instruction

	stats CacheStatistics
}

// NewCache creates a decoded-instruction cache in front of decoder.
func NewCache(config CacheConfig, decoder *Decoder) *Cache {
	if config.Sets <= 0 || config.Associativity <= 0 {
		config = DefaultCacheConfig()
	}

	return &Cache{
		config:  config,
		decoder: decoder,
		directory: akitacache.NewDirectory(
			config.Sets,
			config.Associativity,
			slotSize,
			akitacache.NewLRUVictimFinder(),
		),
		entries: make([]Instruction, config.Sets*config.Associativity),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() CacheConfig {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStatistics {
	return c.stats
}

func (c *Cache) entryIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// Decode returns the decoded instruction for opcode fetched at addr.
// The returned instruction is owned by the cache and is only valid until
// the next call.
func (c *Cache) Decode(addr uint16, opcode uint16) *Instruction {
	c.stats.Lookups++
	key := uint64(addr) * slotSize

	block := c.directory.Lookup(0, key)
	if block != nil && block.IsValid {
		entry := &c.entries[c.entryIndex(block)]
		c.directory.Visit(block)
		if entry.Opcode == opcode {
			c.stats.Hits++
			return entry
		}

		// Program memory changed under this slot.
		c.stats.Stale++
		c.decoder.DecodeInto(opcode, entry)
		return entry
	}

	c.stats.Misses++

	victim := c.directory.FindVictim(key)
	if victim.IsValid {
		c.stats.Evictions++
	}
	victim.Tag = key
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	entry := &c.entries[c.entryIndex(victim)]
	c.decoder.DecodeInto(opcode, entry)
	return entry
}

// Reset invalidates every entry and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = CacheStatistics{}
}
