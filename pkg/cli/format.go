package cli

import (
	"fmt"
	"strings"

	"github.com/mattfenwick/collections/pkg/slice"
	"github.com/mattfenwick/scan-utils/pkg/command"
	"github.com/mattfenwick/scan-utils/pkg/connector"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/exp/maps"
)

func ScanInfoTable(infos []*connector.ScanInfo) string {
	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)
	table.SetAutoWrapText(false)
	table.SetRowLine(true)
	table.SetHeader([]string{"ID", "Name", "State", "Progress", "Created", "Current", "Error"})
	for _, info := range infos {
		table.Append([]string{
			fmt.Sprintf("%d", info.ID),
			info.Name,
			string(info.State),
			fmt.Sprintf("%d/%d (%d%%)", info.PerformedWorkUnits, info.TotalWorkUnits, info.PercentDone()),
			info.Created.Format("2006-01-02 15:04:05"),
			info.CurrentCommand,
			info.Error,
		})
	}
	table.Render()
	return tableString.String()
}

// SamplesTable has one column per device, in alphabetical order
func SamplesTable(samples []*connector.Sample) string {
	deviceSet := map[string]bool{}
	for _, sample := range samples {
		for device := range sample.Values {
			deviceSet[device] = true
		}
	}
	devices := slice.Sort(maps.Keys(deviceSet))

	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)
	table.SetAutoWrapText(false)
	table.SetHeader(append([]string{"#"}, devices...))
	for _, sample := range samples {
		row := []string{fmt.Sprintf("%d", sample.Index)}
		for _, device := range devices {
			value, ok := sample.Values[device]
			if ok {
				row = append(row, command.FormatNumber(value))
			} else {
				row = append(row, "")
			}
		}
		table.Append(row)
	}
	table.Render()
	return tableString.String()
}
