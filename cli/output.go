package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

const bytesPerRow = 16

// FormatBuffer renders buf as a hex dump table, 16 bytes per row with an ASCII column.
func FormatBuffer(buf []byte) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Offset", "Data", "ASCII"})
	for i, row := range lo.Chunk(buf, bytesPerRow) {
		hexBytes := lo.Map(row, func(b byte, _ int) string {
			return fmt.Sprintf("%02X", b)
		})
		ascii := lo.Map(row, func(b byte, _ int) string {
			if b < 0x20 || b > 0x7E {
				return "."
			}
			return string(rune(b))
		})
		t.AppendRow(table.Row{
			fmt.Sprintf("0x%02X", i*bytesPerRow),
			strings.Join(hexBytes, " "),
			strings.Join(ascii, ""),
		})
	}
	return t.Render()
}
