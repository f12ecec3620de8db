package usecase

import "sync"

// GenerationGuard implements last-request-wins per key. Each request takes a token with
// Next and only the holder of the newest token may apply its result.
type GenerationGuard struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewGenerationGuard() *GenerationGuard {
	return &GenerationGuard{latest: make(map[string]uint64)}
}

func (g *GenerationGuard) Next(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest[key]++
	return g.latest[key]
}

func (g *GenerationGuard) IsCurrent(key string, token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[key] == token
}
