package core

// Color represents a foreground color for a screen cell.
// The platform maps each value onto an ANSI 256-color code.
type Color uint8

// Predefined colors. Games pick from these; they never see ANSI codes.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)
