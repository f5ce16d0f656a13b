package tzconvert

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrUnknownTimezone reports a zone name absent from the IANA database. The
// lookup still yields UTC so callers can degrade instead of dropping the
// record.
var ErrUnknownTimezone = errors.New("unknown timezone")

// LocationCache memoizes IANA zone lookups. It is handed explicitly to the
// call sites that need it rather than living as package state, so tests and
// independent pipelines get isolated instances.
type LocationCache struct {
	mu     sync.Mutex
	byName map[string]*time.Location
}

func NewLocationCache() *LocationCache {
	return &LocationCache{byName: make(map[string]*time.Location)}
}

// Load resolves name against the IANA database. An empty name and "utc"
// (any case) resolve to UTC directly. Unknown names return UTC together
// with a wrapped ErrUnknownTimezone; the returned location is always usable.
func (c *LocationCache) Load(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "utc") {
		return time.UTC, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byName == nil {
		c.byName = make(map[string]*time.Location)
	}
	if loc, ok := c.byName[name]; ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
	}
	c.byName[name] = loc
	return loc, nil
}
