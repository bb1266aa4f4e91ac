package attend

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/natefinch/atomic"
)

// AuditLog persists every canonical tag ever seen as a JSON array at a fixed
// path. Writes are unions: tags already on disk are never dropped.
type AuditLog struct {
	mu   sync.Mutex
	path string
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// Load returns the previously seen tags. A missing file is an empty set.
func (a *AuditLog) Load() (map[string]struct{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load()
}

func (a *AuditLog) load() (map[string]struct{}, error) {
	b, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		out[t] = struct{}{}
	}
	return out, nil
}

// Merge unions tags into the file, rewriting it only when something new
// appeared.
func (a *AuditLog) Merge(tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	existing, err := a.load()
	if err != nil {
		return err
	}
	added := false
	for _, t := range tags {
		if _, ok := existing[t]; !ok {
			existing[t] = struct{}{}
			added = true
		}
	}
	if !added {
		return nil
	}
	all := make([]string, 0, len(existing))
	for t := range existing {
		all = append(all, t)
	}
	sort.Strings(all)
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(a.path, bytes.NewReader(b))
}
