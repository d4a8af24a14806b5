package service

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness the games consume: deck shuffles, wheel spins,
// lottery draws and robbery odds. Tests inject fixed-seed or scripted
// sources to assert exact outcomes.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// lockedRand serializes access to a *rand.Rand, which is not safe for
// concurrent use. Roulette tables resolve in parallel and share one
// source.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// NewRand returns a time-seeded source safe for concurrent use
func NewRand() Rand {
	return &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}
