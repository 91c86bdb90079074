// Package lfu implements the Least-Frequently-Used eviction policy,
// ties broken in FIFO order within the same frequency class.
package lfu

import "github.com/sinecache/sinecache/policy"

// node is an intrusive doubly linked element inside a frequency bucket.
type node[K comparable] struct {
	key        K
	freq       int
	prev, next *node[K]
}

// bucket is the intrusive list of keys sharing one frequency; head is
// the oldest (FIFO tie-break winner), tail is the newest.
type bucket[K comparable] struct {
	head, tail *node[K]
	len        int
}

func (b *bucket[K]) pushTail(n *node[K]) {
	n.next = nil
	n.prev = b.tail
	if b.tail != nil {
		b.tail.next = n
	}
	b.tail = n
	if b.head == nil {
		b.head = n
	}
	b.len++
}

func (b *bucket[K]) unlink(n *node[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if b.head == n {
		b.head = n.next
	}
	if b.tail == n {
		b.tail = n.prev
	}
	n.prev, n.next = nil, nil
	b.len--
}

// lfu maintains (a) key->node, (b) frequency->bucket, (c) the running
// minimum frequency among non-empty buckets.
type lfu[K comparable] struct {
	idx     map[K]*node[K]
	buckets map[int]*bucket[K]
	minFreq int
	maxFreq int // highest frequency ever observed; bounds the remove-rescan
}

// New constructs an empty LFU policy.
func New[K comparable]() policy.Policy[K] {
	return &lfu[K]{
		idx:     make(map[K]*node[K]),
		buckets: make(map[int]*bucket[K]),
	}
}

// OnSet bumps frequency for a repeat key, or admits a fresh key at
// frequency 1 (making it the new minimum).
func (p *lfu[K]) OnSet(k K) {
	if n, ok := p.idx[k]; ok {
		p.bump(n)
		return
	}
	n := &node[K]{key: k, freq: 1}
	p.idx[k] = n
	p.bucketFor(1).pushTail(n)
	p.minFreq = 1
	if p.maxFreq < 1 {
		p.maxFreq = 1
	}
}

// OnGet bumps frequency, same as a repeat OnSet.
func (p *lfu[K]) OnGet(k K) {
	if n, ok := p.idx[k]; ok {
		p.bump(n)
	}
}

// Evict names the oldest key in the lowest-frequency bucket.
func (p *lfu[K]) Evict() (K, bool) {
	b := p.buckets[p.minFreq]
	if b == nil || b.head == nil {
		var zero K
		return zero, false
	}
	victim := b.head
	b.unlink(victim)
	delete(p.idx, victim.key)
	if b.len == 0 {
		delete(p.buckets, p.minFreq)
		p.advanceMinFreq(p.minFreq)
	}
	return victim.key, true
}

// Remove forgets k; unknown keys are a silent no-op.
func (p *lfu[K]) Remove(k K) {
	n, ok := p.idx[k]
	if !ok {
		return
	}
	freq := n.freq
	b := p.buckets[freq]
	b.unlink(n)
	delete(p.idx, k)
	if b.len == 0 {
		delete(p.buckets, freq)
		if freq == p.minFreq {
			p.advanceMinFreq(freq)
		}
	}
}

// ReplayNeedsGets reports true: frequency order depends on reads, so
// GET records must be journaled for replay to reproduce it.
func (p *lfu[K]) ReplayNeedsGets() bool { return true }

// bump moves n from its current bucket to freq+1, creating the target
// bucket if absent, and advances minFreq if the vacated bucket was the
// minimum and emptied.
func (p *lfu[K]) bump(n *node[K]) {
	old := n.freq
	b := p.buckets[old]
	b.unlink(n)
	emptied := b.len == 0
	if emptied {
		delete(p.buckets, old)
	}
	n.freq = old + 1
	p.bucketFor(n.freq).pushTail(n)
	if n.freq > p.maxFreq {
		p.maxFreq = n.freq
	}
	if emptied && old == p.minFreq {
		// The only place entries can go from freq f is f+1, which is
		// now guaranteed non-empty (n just landed there).
		p.minFreq = old + 1
	}
}

// advanceMinFreq scans upward from the just-vacated frequency for the
// next non-empty bucket. Used only on explicit Remove/Evict-drain,
// where (unlike bump) nothing is guaranteed to occupy vacated+1.
func (p *lfu[K]) advanceMinFreq(vacated int) {
	for f := vacated + 1; f <= p.maxFreq; f++ {
		if b, ok := p.buckets[f]; ok && b.len > 0 {
			p.minFreq = f
			return
		}
	}
	p.minFreq = 0
	p.maxFreq = 0
}

func (p *lfu[K]) bucketFor(freq int) *bucket[K] {
	b, ok := p.buckets[freq]
	if !ok {
		b = &bucket[K]{}
		p.buckets[freq] = b
	}
	return b
}
