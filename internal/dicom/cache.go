package dicom

import (
	"github.com/mrsinham/dicomgather/internal/dicom/tags"
)

// seriesCache memoizes parsed headers for one series so the consensus,
// statistics and b-value passes never re-read the same file. Unreadable
// files are cached as nil so a corrupt file costs one parse attempt.
// Not safe for concurrent use; each series is processed by a single worker.
type seriesCache struct {
	sets map[string]*tags.Set
}

func newSeriesCache() *seriesCache {
	return &seriesCache{sets: make(map[string]*tags.Set)}
}

func (c *seriesCache) get(path string) *tags.Set {
	if set, ok := c.sets[path]; ok {
		return set
	}
	set, err := tags.ParseSet(path)
	if err != nil {
		set = nil
	}
	c.sets[path] = set
	return set
}
