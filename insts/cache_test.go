package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chip8vm/chip8/insts"
)

var _ = Describe("Cache", func() {
	var c *insts.Cache

	BeforeEach(func() {
		// Small cache for testing: 4 sets, 2-way
		c = insts.NewCache(insts.CacheConfig{Sets: 4, Associativity: 2}, insts.NewDecoder())
	})

	It("should miss on a cold cache", func() {
		inst := c.Decode(0x200, 0x6A2F)

		Expect(inst.Op).To(Equal(insts.OpLDImm))
		stats := c.Stats()
		Expect(stats.Lookups).To(Equal(uint64(1)))
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.Hits).To(Equal(uint64(0)))
	})

	It("should hit on a repeated address", func() {
		c.Decode(0x200, 0x6A2F)
		inst := c.Decode(0x200, 0x6A2F)

		Expect(inst.Op).To(Equal(insts.OpLDImm))
		Expect(inst.NN).To(Equal(uint8(0x2F)))
		Expect(c.Stats().Hits).To(Equal(uint64(1)))
		Expect(c.Stats().HitRate()).To(BeNumerically("~", 0.5, 0.001))
	})

	It("should redecode when the opcode at an address changed", func() {
		c.Decode(0x200, 0x6A2F)
		inst := c.Decode(0x200, 0x00E0)

		Expect(inst.Op).To(Equal(insts.OpCLS))
		Expect(c.Stats().Stale).To(Equal(uint64(1)))
		Expect(c.Stats().Hits).To(Equal(uint64(0)))
	})

	It("should keep odd and even addresses apart", func() {
		c.Decode(0x200, 0x1200)
		inst := c.Decode(0x201, 0x00E0)

		Expect(inst.Op).To(Equal(insts.OpCLS))
		Expect(c.Stats().Misses).To(Equal(uint64(2)))
	})

	It("should evict the least recently used way", func() {
		// 0x200, 0x204, 0x208 share set 0 with 4 sets; scaled keys keep that.
		c.Decode(0x200, 0x6001)
		c.Decode(0x204, 0x6002)
		c.Decode(0x200, 0x6001)
		c.Decode(0x208, 0x6003)

		Expect(c.Stats().Evictions).To(Equal(uint64(1)))

		c.Decode(0x200, 0x6001)
		Expect(c.Stats().Hits).To(Equal(uint64(2)))
	})

	It("should forget everything on reset", func() {
		c.Decode(0x200, 0x6A2F)
		c.Reset()

		Expect(c.Stats()).To(BeZero())
		c.Decode(0x200, 0x6A2F)
		Expect(c.Stats().Misses).To(Equal(uint64(1)))
	})

	It("should fall back to defaults for an empty config", func() {
		c = insts.NewCache(insts.CacheConfig{}, insts.NewDecoder())
		Expect(c.Config()).To(Equal(insts.DefaultCacheConfig()))
	})
})
