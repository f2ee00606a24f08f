package types

import "strings"

// TableID names one of the logical aggregate tables.
type TableID string

const (
	TableTransactionByState    TableID = "transaction_by_state"
	TableTransactionByDistrict TableID = "transaction_by_district"
	TableUserByDistrict        TableID = "user_by_district"
	TableUserByBrand           TableID = "user_by_brand"
)

// Dimension is a grouping or filtering key of an AggregateRow.
type Dimension string

const (
	DimensionYear            Dimension = "year"
	DimensionQuarter         Dimension = "quarter"
	DimensionState           Dimension = "state"
	DimensionDistrict        Dimension = "district"
	DimensionBrand           Dimension = "brand"
	DimensionTransactionType Dimension = "transaction_type"
)

var dimensionLabels = map[Dimension]string{
	DimensionYear:            "Year",
	DimensionQuarter:         "Quarter",
	DimensionState:           "State",
	DimensionDistrict:        "District",
	DimensionBrand:           "Brand",
	DimensionTransactionType: "Transaction Type",
}

func (d Dimension) Label() string {
	if label, ok := dimensionLabels[d]; ok {
		return label
	}
	return string(d)
}

func (d Dimension) IsValid() bool {
	_, ok := dimensionLabels[d]
	return ok
}

// Metric is a summable measure of an AggregateRow.
type Metric string

const (
	MetricCount           Metric = "count"
	MetricAmount          Metric = "amount"
	MetricRegisteredUsers Metric = "registered_users"
	MetricAppOpens        Metric = "app_opens"
)

var metricMeta = map[Metric]struct {
	label string
	field string
}{
	MetricCount:           {label: "Transaction Count", field: "transaction_count"},
	MetricAmount:          {label: "Transaction Amount", field: "transaction_amount"},
	MetricRegisteredUsers: {label: "Registered Users", field: "registered_users"},
	MetricAppOpens:        {label: "App Opens", field: "app_opens"},
}

func (m Metric) IsValid() bool {
	_, ok := metricMeta[m]
	return ok
}

// Label is the human heading used in chart titles.
func (m Metric) Label() string {
	if meta, ok := metricMeta[m]; ok {
		return meta.label
	}
	return string(m)
}

// Field is the value field name exposed in chart specs.
func (m Metric) Field() string {
	if meta, ok := metricMeta[m]; ok {
		return meta.field
	}
	return string(m)
}

// TableDescriptor lists what a logical table can be grouped by and summed over.
type TableDescriptor struct {
	ID         TableID     `json:"id"`
	Title      string      `json:"title"`
	Dimensions []Dimension `json:"dimensions"`
	Metrics    []Metric    `json:"metrics"`
}

var descriptors = []TableDescriptor{
	{
		ID:         TableTransactionByState,
		Title:      "Transactions by state and type",
		Dimensions: []Dimension{DimensionYear, DimensionQuarter, DimensionState, DimensionTransactionType},
		Metrics:    []Metric{MetricCount, MetricAmount},
	},
	{
		ID:         TableTransactionByDistrict,
		Title:      "Transactions by district",
		Dimensions: []Dimension{DimensionYear, DimensionQuarter, DimensionState, DimensionDistrict},
		Metrics:    []Metric{MetricCount, MetricAmount},
	},
	{
		ID:         TableUserByDistrict,
		Title:      "Registered users and app opens by district",
		Dimensions: []Dimension{DimensionYear, DimensionQuarter, DimensionState, DimensionDistrict},
		Metrics:    []Metric{MetricRegisteredUsers, MetricAppOpens},
	},
	{
		ID:         TableUserByBrand,
		Title:      "Transactions by device brand",
		Dimensions: []Dimension{DimensionYear, DimensionQuarter, DimensionState, DimensionBrand},
		Metrics:    []Metric{MetricCount},
	},
}

// Tables returns every known table descriptor in a fixed order.
func Tables() []TableDescriptor {
	out := make([]TableDescriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Descriptor looks up a table by id.
func Descriptor(id TableID) (TableDescriptor, bool) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return TableDescriptor{}, false
}

// ParseTableID accepts the id in any case with surrounding whitespace.
func ParseTableID(raw string) (TableID, bool) {
	id := TableID(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := Descriptor(id)
	return id, ok
}

func (d TableDescriptor) Provides(dim Dimension) bool {
	for _, candidate := range d.Dimensions {
		if candidate == dim {
			return true
		}
	}
	return false
}

func (d TableDescriptor) Measures(metric Metric) bool {
	for _, candidate := range d.Metrics {
		if candidate == metric {
			return true
		}
	}
	return false
}
