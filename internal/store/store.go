// Package store provides the shared fact store that all analysis stages
// read and write through. One store instance backs a run; stages never pass
// results to each other directly.
package store

import (
	"reflect"
	"sync"
)

// FactStore is a thread-safe key/value memory for multi-stage collaboration.
// Every method is atomic with respect to the others: a reader never observes
// a partially applied write.
type FactStore struct {
	mu    sync.RWMutex
	facts map[string]any
}

// New creates an empty FactStore.
func New() *FactStore {
	return &FactStore{facts: make(map[string]any)}
}

// Set stores a value under the given key, replacing any existing value.
func (s *FactStore) Set(key string, value any) {
	s.mu.Lock()
	s.facts[key] = value
	s.mu.Unlock()
}

// Get retrieves a value. The second return is false if the key is absent.
func (s *FactStore) Get(key string) (any, bool) {
	s.mu.RLock()
	v, ok := s.facts[key]
	s.mu.RUnlock()
	return v, ok
}

// Update merges the incoming value into an existing one. Two maps of the
// same type merge key-wise (incoming keys win); two slices of the same type
// append. Any other combination, or a missing key, degrades to Set.
// The merge builds a fresh value so concurrent readers holding the old one
// are unaffected.
func (s *FactStore) Update(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.facts[key]
	if !ok {
		s.facts[key] = value
		return
	}
	s.facts[key] = merged(existing, value)
}

// Snapshot returns a shallow copy of the whole store.
func (s *FactStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.facts))
	for k, v := range s.facts {
		out[k] = v
	}
	return out
}

// Len returns the number of stored facts.
func (s *FactStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

// Clear removes all facts. Tests call this between cases to avoid cross-run
// contamination.
func (s *FactStore) Clear() {
	s.mu.Lock()
	s.facts = make(map[string]any)
	s.mu.Unlock()
}

func merged(existing, incoming any) any {
	ev := reflect.ValueOf(existing)
	iv := reflect.ValueOf(incoming)

	switch {
	case ev.Kind() == reflect.Map && iv.Kind() == reflect.Map && ev.Type() == iv.Type():
		out := reflect.MakeMapWithSize(ev.Type(), ev.Len()+iv.Len())
		for _, k := range ev.MapKeys() {
			out.SetMapIndex(k, ev.MapIndex(k))
		}
		for _, k := range iv.MapKeys() {
			out.SetMapIndex(k, iv.MapIndex(k))
		}
		return out.Interface()

	case ev.Kind() == reflect.Slice && iv.Kind() == reflect.Slice && ev.Type() == iv.Type():
		out := reflect.MakeSlice(ev.Type(), 0, ev.Len()+iv.Len())
		out = reflect.AppendSlice(out, ev)
		out = reflect.AppendSlice(out, iv)
		return out.Interface()

	default:
		return incoming
	}
}

// --- Ticker-scoped keys ---
//
// Each stage owns exactly one key per ticker and never writes another
// stage's key.

// RawKey is the key for the raw-fetch record of a ticker.
func RawKey(ticker string) string { return "data_" + ticker }

// TechnicalKey is the key for the technical stage record.
func TechnicalKey(ticker string) string { return "technical_" + ticker }

// FundamentalKey is the key for the fundamental stage record.
func FundamentalKey(ticker string) string { return "fundamental_" + ticker }

// SentimentKey is the key for the sentiment stage record.
func SentimentKey(ticker string) string { return "sentiment_" + ticker }

// RiskKey is the key for the risk stage record.
func RiskKey(ticker string) string { return "risk_" + ticker }

// ReportKey is the key for the final aggregated report.
func ReportKey(ticker string) string { return "report_" + ticker }
