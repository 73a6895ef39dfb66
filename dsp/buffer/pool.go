package buffer

import "sync"

// Pool provides sync.Pool-based Block reuse for real-time capture loops.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Block{}
			},
		},
	}
}

// Get returns a zeroed Block with the requested length. Callers must
// return it via Put when done.
func (p *Pool) Get(length int) *Block {
	b := p.pool.Get().(*Block)
	b.Resize(length)
	b.Zero()
	return b
}

// Copy returns a pooled Block holding a copy of src.
func (p *Pool) Copy(src []int16) *Block {
	b := p.pool.Get().(*Block)
	b.Set(src)
	return b
}

// Put returns a Block to the pool. The caller must not use it afterwards.
func (p *Pool) Put(b *Block) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}
