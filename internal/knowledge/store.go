package knowledge

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Kind classifies a learned item.
type Kind string

const (
	KindPattern      Kind = "pattern"
	KindInsight      Kind = "insight"
	KindBestPractice Kind = "best_practice"
	KindTechnology   Kind = "technology"
)

// Item is one learned fact. The key is derived from the serialized payload,
// so learning the same payload twice reinforces the existing item.
type Item struct {
	Key         uint64          `json:"key"`
	Kind        Kind            `json:"kind"`
	Payload     json.RawMessage `json:"payload"`
	Strength    int             `json:"strength"`
	LastTouched time.Time       `json:"last_touched"`
}

// Store holds learned items in memory behind a mutex, capped at maxItems.
// It is constructed once at process start and injected into the components
// that learn or recall; there is no package-level instance. An optional
// Postgres backend mirrors writes for durability across restarts.
type Store struct {
	mu       sync.RWMutex
	byKey    map[uint64]*Item
	maxItems int
	db       *pgBackend
}

const defaultMaxItems = 4096

func NewStore() *Store {
	return &Store{
		byKey:    make(map[uint64]*Item),
		maxItems: defaultMaxItems,
	}
}

// NewFromEnv returns a Postgres-mirrored store when KNOWLEDGE_PG_DSN is set
// and reachable, and a memory-only store otherwise.
func NewFromEnv() *Store {
	s := NewStore()
	if db, err := newPGBackendFromEnv(); err == nil && db != nil {
		s.db = db
	}
	return s
}

// Learn stores or reinforces an item. Repeated learning of an identical
// payload increments the strength counter; it never decreases here.
func (s *Store) Learn(kind Kind, payload any) (uint64, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("knowledge: serialize payload: %w", err)
	}
	key := hashPayload(raw)

	s.mu.Lock()
	item, ok := s.byKey[key]
	if ok {
		item.Strength++
		item.LastTouched = time.Now()
	} else {
		item = &Item{
			Key:         key,
			Kind:        kind,
			Payload:     raw,
			Strength:    1,
			LastTouched: time.Now(),
		}
		s.byKey[key] = item
		s.evictLocked()
	}
	snapshot := *item
	s.mu.Unlock()

	if s.db != nil {
		_ = s.db.upsert(snapshot)
	}
	return key, nil
}

// AdjustStrength applies an explicit strength update. "decreased" is the
// only path that lowers a counter; anything else reinforces.
func (s *Store) AdjustStrength(key uint64, direction string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byKey[key]
	if !ok {
		return false
	}
	if direction == "decreased" {
		if item.Strength > 0 {
			item.Strength--
		}
	} else {
		item.Strength++
	}
	item.LastTouched = time.Now()
	if s.db != nil {
		_ = s.db.upsert(*item)
	}
	return true
}

// Get returns a copy of the item for key.
func (s *Store) Get(key uint64) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.byKey[key]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// Len reports the number of items held in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}

// Relevant ranks items of the given kind by keyword overlap between the
// serialized query context and each item's payload. Zero-overlap items are
// omitted.
func (s *Store) Relevant(queryContext any, kind Kind, limit int) []Item {
	raw, err := json.Marshal(queryContext)
	if err != nil {
		return nil
	}
	queryWords := keywords(string(raw))

	type scored struct {
		item    Item
		overlap int
	}
	s.mu.RLock()
	var candidates []scored
	for _, item := range s.byKey {
		if kind != "" && item.Kind != kind {
			continue
		}
		overlap := overlapCount(queryWords, keywords(string(item.Payload)))
		if overlap > 0 {
			candidates = append(candidates, scored{item: *item, overlap: overlap})
		}
	}
	s.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].overlap != candidates[j].overlap {
			return candidates[i].overlap > candidates[j].overlap
		}
		return candidates[i].item.Strength > candidates[j].item.Strength
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Item, len(candidates))
	for i, c := range candidates {
		out[i] = c.item
	}
	return out
}

// Export serializes the full store for persistence or inspection.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	items := make([]Item, 0, len(s.byKey))
	for _, item := range s.byKey {
		items = append(items, *item)
	}
	s.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return json.Marshal(items)
}

// Import merges exported items into the store. Existing keys keep the higher
// strength.
func (s *Store) Import(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("knowledge: import: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range items {
		item := items[i]
		if existing, ok := s.byKey[item.Key]; ok {
			if item.Strength > existing.Strength {
				existing.Strength = item.Strength
			}
			if item.LastTouched.After(existing.LastTouched) {
				existing.LastTouched = item.LastTouched
			}
			continue
		}
		s.byKey[item.Key] = &item
	}
	s.evictLocked()
	return nil
}

// Close releases the optional database backend.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.close()
	}
	return nil
}

// evictLocked drops the weakest, least-recently-touched items once the cap
// is exceeded.
func (s *Store) evictLocked() {
	for len(s.byKey) > s.maxItems {
		var victim *Item
		for _, item := range s.byKey {
			if victim == nil {
				victim = item
				continue
			}
			if item.Strength < victim.Strength ||
				(item.Strength == victim.Strength && item.LastTouched.Before(victim.LastTouched)) {
				victim = item
			}
		}
		delete(s.byKey, victim.Key)
	}
}

func hashPayload(raw []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(raw)
	return h.Sum64()
}

// keywords lowercases and splits text on non-alphanumeric runes, dropping
// short tokens.
func keywords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) >= 3 {
			words[w] = struct{}{}
		}
	}
	return words
}

func overlapCount(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
