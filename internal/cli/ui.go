package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan  = lipgloss.Color("36")  // Teal - headings and instruction names
	colorGreen = lipgloss.Color("35")  // Green - reachable
	colorRed   = lipgloss.Color("167") // Soft red - unreachable
	colorDim   = lipgloss.Color("240") // Dim gray - muted cells
)

var (
	// styleTitle for headings such as the graph name.
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// styleName for instruction names.
	styleName = lipgloss.NewStyle().Foreground(colorCyan)

	// styleReachable marks a positive reachability answer.
	styleReachable = lipgloss.NewStyle().Foreground(colorGreen)

	// styleUnreachable marks a negative reachability answer.
	styleUnreachable = lipgloss.NewStyle().Foreground(colorRed)

	// styleDim for empty table cells and secondary text.
	styleDim = lipgloss.NewStyle().Foreground(colorDim)
)
