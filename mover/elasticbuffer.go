package mover

import "log"

// elasticBuffer is a word FIFO that decouples the burst read engine from the
// stream output stage. Push and pop capacity are latched once per tick, so
// within a tick both sides see the occupancy as it was at the start of the
// tick, no matter in which order they run.
type elasticBuffer struct {
	slots      [][]byte
	head, tail int
	level      int

	pushCredit int
	popCredit  int
}

func newElasticBuffer(depth int) *elasticBuffer {
	if depth < 1 {
		log.Panicf("elastic buffer depth must be at least 1, got %d", depth)
	}

	return &elasticBuffer{
		slots: make([][]byte, depth),
	}
}

// sync latches the per-tick push and pop credits from the current occupancy.
// It must run once at the beginning of every tick, before any sub-unit.
func (b *elasticBuffer) sync() {
	b.pushCredit = len(b.slots) - b.level
	b.popCredit = b.level
}

func (b *elasticBuffer) canPush() bool {
	return b.pushCredit > 0
}

func (b *elasticBuffer) hasData() bool {
	return b.popCredit > 0
}

func (b *elasticBuffer) push(word []byte) {
	if b.pushCredit <= 0 {
		log.Panic("pushing to an elastic buffer with no push credit")
	}

	b.slots[b.tail] = word
	b.tail = (b.tail + 1) % len(b.slots)
	b.level++
	b.pushCredit--
}

func (b *elasticBuffer) pop() []byte {
	if b.popCredit <= 0 {
		log.Panic("popping from an elastic buffer with no pop credit")
	}

	word := b.slots[b.head]
	b.slots[b.head] = nil
	b.head = (b.head + 1) % len(b.slots)
	b.level--
	b.popCredit--

	return word
}

func (b *elasticBuffer) empty() bool {
	return b.level == 0
}

func (b *elasticBuffer) size() int {
	return b.level
}

func (b *elasticBuffer) capacity() int {
	return len(b.slots)
}

func (b *elasticBuffer) clear() {
	for i := range b.slots {
		b.slots[i] = nil
	}

	b.head = 0
	b.tail = 0
	b.level = 0
	b.pushCredit = 0
	b.popCredit = 0
}
