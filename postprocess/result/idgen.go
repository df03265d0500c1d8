package result

import (
	"sync"

	"github.com/edgevision/go-sscma/postprocess"
)

// IDGenerator hands out incremental detection IDs, safe for concurrent use
type IDGenerator struct {
	id int64
	sync.Mutex
}

// NewIDGenerator returns a generator whose first ID is 1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental number
func (id *IDGenerator) GetNext() int64 {
	id.Lock()
	defer id.Unlock()
	id.id++
	return id.id
}

// Assign stamps every detection result that has no ID yet with the next
// incremental number
func (id *IDGenerator) Assign(results []postprocess.DetectResult) {
	id.Lock()
	defer id.Unlock()

	for i := range results {
		if results[i].ID != 0 {
			continue
		}
		id.id++
		results[i].ID = id.id
	}
}

// Reset restarts numbering from 1
func (id *IDGenerator) Reset() {
	id.Lock()
	defer id.Unlock()
	id.id = 0
}
