package geo

import (
	"encoding/json"
	"sort"
	"strings"
)

// Boundaries indexes GeoJSON features by region name.
type Boundaries struct {
	property  string
	features  map[string]json.RawMessage
	canonical map[string]string
}

func newBoundaries(property string) *Boundaries {
	return &Boundaries{
		property:  property,
		features:  map[string]json.RawMessage{},
		canonical: map[string]string{},
	}
}

func (b *Boundaries) add(name string, feature json.RawMessage) {
	b.features[name] = feature
	b.canonical[normalize(name)] = name
}

// FeatureIDKey is the path renderers use to match values to features.
func (b *Boundaries) FeatureIDKey() string {
	if b == nil {
		return "properties." + defaultFeatureProperty
	}
	return "properties." + b.property
}

// Region resolves name to the feature's own spelling. Exact names win;
// otherwise names are compared case-insensitively with hyphens read as
// spaces and "&" read as "and".
func (b *Boundaries) Region(name string) (string, json.RawMessage, bool) {
	if b == nil {
		return "", nil, false
	}
	if feature, ok := b.features[name]; ok {
		return name, feature, true
	}
	canonical, ok := b.canonical[normalize(name)]
	if !ok {
		return "", nil, false
	}
	return canonical, b.features[canonical], true
}

// Names lists every region in lexical order.
func (b *Boundaries) Names() []string {
	names := make([]string, 0, len(b.features))
	for name := range b.features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *Boundaries) Len() int {
	return len(b.features)
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "&", " and ")
	return strings.Join(strings.Fields(name), " ")
}
