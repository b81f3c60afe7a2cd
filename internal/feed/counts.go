package feed

import (
	"sync"

	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

// Counts holds applicant counts by job. It is replaced wholesale on every
// fetch and never updated incrementally.
type Counts struct {
	mu     sync.RWMutex
	counts map[scoutjar.ID]int
}

func (c *Counts) Replace(list []scoutjar.ApplicantCount) {
	next := scoutjar.Counts(list)

	c.mu.Lock()
	c.counts = next
	c.mu.Unlock()
}

// Count returns the applicant count for jobID, or 0 when unknown.
func (c *Counts) Count(jobID scoutjar.ID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[jobID]
}

func (c *Counts) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.counts)
}
