package hyperliquid

import (
	"fmt"
	"strings"
	"sync"
)

// Asset is one perpetual market from meta.universe.
type Asset struct {
	Name       string `json:"name"`
	SzDecimals int    `json:"szDecimals"`
	// Index is the position in meta.universe; the exchange addresses
	// assets by it.
	Index int `json:"-"`
}

type metaResponse struct {
	Universe []Asset `json:"universe"`
}

// Universe caches the perp universe in a thread-safe manner.
type Universe struct {
	mu     sync.RWMutex
	assets map[string]Asset // name -> asset
	folded map[string]string
}

func NewUniverse() *Universe {
	return &Universe{
		assets: make(map[string]Asset),
		folded: make(map[string]string),
	}
}

// Replace swaps the cached universe for a fresh meta snapshot.
func (u *Universe) Replace(assets []Asset) {
	byName := make(map[string]Asset, len(assets))
	folded := make(map[string]string, len(assets))
	for i, a := range assets {
		a.Index = i
		byName[a.Name] = a
		folded[strings.ToUpper(a.Name)] = a.Name
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.assets = byName
	u.folded = folded
}

// Lookup finds an asset by exact name, falling back to a case-insensitive
// match (callers upper-case symbols, the venue spells some as kPEPE).
func (u *Universe) Lookup(name string) (Asset, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if a, ok := u.assets[name]; ok {
		return a, nil
	}
	if canonical, ok := u.folded[strings.ToUpper(name)]; ok {
		return u.assets[canonical], nil
	}
	return Asset{}, fmt.Errorf("asset %s not found in universe", name)
}

func (u *Universe) Count() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.assets)
}
