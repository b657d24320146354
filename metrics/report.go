package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	gethmetrics "github.com/ethereum/go-ethereum/metrics"
	"github.com/olekukonko/tablewriter"
)

// Setup enables metric collection if requested.
func Setup(cfg Config) {
	if cfg.Enabled {
		gethmetrics.Enable()
	}
}

// WriteReport renders every registered metric under prefix as a table.
func WriteReport(w io.Writer, prefix string) {
	all := gethmetrics.DefaultRegistry.GetAll()
	names := make([]string, 0, len(all))
	for name := range all {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Field", "Value"})
	for _, name := range names {
		fields := all[name]
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			table.Append([]string{name, k, fmt.Sprint(fields[k])})
		}
	}
	table.Render()
}
