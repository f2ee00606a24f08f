package chart

import "github.com/angelmondragon/pulse-analytics/internal/pulse/types"

// defaultColors cycles across series and pie slices.
var defaultColors = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// metricColors pins user metrics to the same color on every chart: registered
// users in orange and app opens in blue.
var metricColors = map[types.Metric]string{
	types.MetricRegisteredUsers: "#ff7f0e",
	types.MetricAppOpens:        "#1f77b4",
}

// ChoroplethScale is the continuous color scale used for region maps.
const ChoroplethScale = "Viridis"

func colorAt(i int) string {
	return defaultColors[i%len(defaultColors)]
}
