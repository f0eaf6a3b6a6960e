package engine

import (
	"time"

	"github.com/use-agent/koans/cache"
)

const (
	maxRememberedDomains = 4096
	domainPruneEvery     = time.Hour
)

// DomainMemory remembers which engine last succeeded for each domain so the
// Dispatcher can try it alone first. A nil *DomainMemory remembers nothing.
type DomainMemory struct {
	winners *cache.Cache[string]
}

// NewDomainMemory keeps each winner for ttl. Call Stop to end pruning.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	return &DomainMemory{winners: cache.New[string](maxRememberedDomains, ttl, domainPruneEvery)}
}

// Get returns the remembered engine name for domain, or "".
func (dm *DomainMemory) Get(domain string) string {
	if dm == nil {
		return ""
	}
	name, _ := dm.winners.Get(domain)
	return name
}

func (dm *DomainMemory) Set(domain, engineName string) {
	if dm == nil {
		return
	}
	dm.winners.Set(domain, engineName)
}

func (dm *DomainMemory) Delete(domain string) {
	if dm == nil {
		return
	}
	dm.winners.Delete(domain)
}

// Stop ends background pruning. Safe to call more than once.
func (dm *DomainMemory) Stop() {
	if dm == nil {
		return
	}
	dm.winners.Close()
}
