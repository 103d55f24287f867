// Package mapdemo populates two ordered string maps, walks the first in key
// order and reports every key that the second one also holds.
package mapdemo

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/usuihiro/btree"
)

// StringMap is an ordered map from string to string.
type StringMap = btree.Map[string, string]

// Entry is a key and value as stored in a StringMap.
type Entry struct {
	Key   string
	Value string
}

// Match records a key of the walked map and the entry found for it in the
// probed map.
type Match struct {
	Key   string
	Found Entry
}

// NewStringMap returns an empty map ordered byte-wise by key.
func NewStringMap() *StringMap {
	return btree.NewMap[string, string](strings.Compare)
}

// Primary returns the map that is walked.
func Primary() *StringMap {
	m := NewStringMap()
	m.Upsert("hoge", "hogehoge")
	m.Upsert("foo", "foofoo")
	m.Upsert("bar", "barbar")
	return m
}

// Secondary returns the map that is probed.
func Secondary() *StringMap {
	m := NewStringMap()
	m.Upsert("foo", "sfsfsfsfsf")
	return m
}

// Probe walks a in key order and looks each key up in b. Keys missing
// from b are skipped.
func Probe(a, b *StringMap) []Match {
	var matches []Match
	for k := range a.Keys() {
		foundK, foundV, ok := b.Find(k)
		if !ok {
			continue
		}
		matches = append(matches, Match{
			Key:   k,
			Found: Entry{Key: foundK, Value: foundV},
		})
	}
	return matches
}

// Report writes the size line followed by two lines per match.
func Report(w io.Writer, size int, matches []Match) error {
	if _, err := fmt.Fprintf(w, "map size: %d\n", size); err != nil {
		return fmt.Errorf("write size: %w", err)
	}
	for _, m := range matches {
		if _, err := fmt.Fprintf(w, "found! : %s\n  %s  %s\n", m.Key, m.Found.Key, m.Found.Value); err != nil {
			return fmt.Errorf("write match %q: %w", m.Key, err)
		}
	}
	return nil
}

// Run builds both maps, probes the primary against the secondary and
// writes the report to w.
func Run(w io.Writer, logger *zap.Logger) error {
	a := Primary()
	logger.Debug("populated map", zap.String("map", "primary"), zap.Int("size", a.Len()))
	b := Secondary()
	logger.Debug("populated map", zap.String("map", "secondary"), zap.Int("size", b.Len()))

	matches := Probe(a, b)
	logger.Debug("probed", zap.Int("walked", a.Len()), zap.Int("matches", len(matches)))

	return Report(w, a.Len(), matches)
}
