package types

import "encoding/json"

type ChartKind string

const (
	ChartPie           ChartKind = "pie"
	ChartBar           ChartKind = "bar"
	ChartHorizontalBar ChartKind = "horizontal_bar"
	ChartGroupedBar    ChartKind = "grouped_bar"
	ChartLine          ChartKind = "line"
	ChartChoropleth    ChartKind = "choropleth"
	ChartSunburst      ChartKind = "sunburst"
)

func (k ChartKind) IsValid() bool {
	switch k {
	case ChartPie, ChartBar, ChartHorizontalBar, ChartGroupedBar, ChartLine, ChartChoropleth, ChartSunburst:
		return true
	}
	return false
}

// ChartSpec is a renderer-neutral chart description.
type ChartSpec struct {
	Kind           ChartKind         `json:"kind"`
	Title          string            `json:"title"`
	CategoryFields []string          `json:"category_fields"`
	ValueFields    []string          `json:"value_fields"`
	Series         []Series          `json:"series"`
	Colors         map[string]string `json:"colors,omitempty"`
	Hierarchy      []Node            `json:"hierarchy,omitempty"`
	Regions        *RegionBinding    `json:"regions,omitempty"`
}

type Series struct {
	Name       string  `json:"name"`
	ValueField string  `json:"value_field"`
	Color      string  `json:"color,omitempty"`
	Points     []Point `json:"points"`
}

// Point carries the full key tuple in Path; Label is its display form.
type Point struct {
	Label string   `json:"label"`
	Path  []string `json:"path,omitempty"`
	Value float64  `json:"value"`
}

// Node is one sector of a sunburst. Root sectors have an empty Parent.
type Node struct {
	ID     string  `json:"id"`
	Parent string  `json:"parent"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
}

// RegionBinding ties choropleth values to boundary geometries.
type RegionBinding struct {
	FeatureIDKey string                     `json:"feature_id_key"`
	ColorScale   string                     `json:"color_scale"`
	Values       []RegionValue              `json:"values"`
	Boundaries   map[string]json.RawMessage `json:"boundaries"`
}

type RegionValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
