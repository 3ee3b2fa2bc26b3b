// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topics detects predefined political topics in free text using a
// fixed keyword taxonomy.
package topics

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// ErrUnknownTopic is returned when a caller names a topic outside the taxonomy.
var ErrUnknownTopic = errors.New("unknown topic")

// Taxonomy is an immutable mapping from topic name to keyword list.
type Taxonomy struct {
	keywords map[string][]string
	names    []string
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := ParseTaxonomy(defaultTaxonomyYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in taxonomy: %v", err))
	}
	return t
}

// LoadTaxonomy reads a YAML taxonomy file. An empty path yields the
// built-in taxonomy.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %s: %w", path, err)
	}
	t, err := ParseTaxonomy(data)
	if err != nil {
		return nil, fmt.Errorf("parsing taxonomy %s: %w", path, err)
	}
	return t, nil
}

// ParseTaxonomy decodes a YAML document of the form
// {topic: [keyword, ...]}. Keywords are lowercased and deduplicated;
// topics without keywords are rejected.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("taxonomy defines no topics")
	}

	t := &Taxonomy{keywords: make(map[string][]string, len(raw))}
	for topic, kws := range raw {
		name := strings.TrimSpace(topic)
		if name == "" {
			return nil, fmt.Errorf("taxonomy has an empty topic name")
		}

		seen := make(map[string]bool, len(kws))
		var clean []string
		for _, kw := range kws {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			clean = append(clean, kw)
		}
		if len(clean) == 0 {
			return nil, fmt.Errorf("topic %q has no keywords", name)
		}

		t.keywords[name] = clean
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t, nil
}

// Topics returns the topic names in sorted order.
func (t *Taxonomy) Topics() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Keywords returns a copy of the keyword list for topic, or
// ErrUnknownTopic.
func (t *Taxonomy) Keywords(topic string) ([]string, error) {
	kws, ok := t.keywords[topic]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
	out := make([]string, len(kws))
	copy(out, kws)
	return out, nil
}

// Has reports whether topic is part of the taxonomy.
func (t *Taxonomy) Has(topic string) bool {
	_, ok := t.keywords[topic]
	return ok
}
