package ui

import "strings"

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name                                   string
	Title, Muted, Accent, Success, Error   string
	Pending                                string
	BoxPending, BoxBought                  string
	CornerTL, CornerTR, CornerBL, CornerBR string
	H, V                                   string
	SymBought, SymPending                  string

	// NoColor themes render plain text whatever the terminal supports.
	NoColor bool
	// Palette holds 256-colour codes for the interactive list.
	Palette Palette
}

// Palette is the theme's colours as ANSI 256 codes ("" leaves the default).
type Palette struct {
	Title, Muted, Accent, Success, Error, Pending string
}

var current = classic()

func classic() Theme {
	return Theme{
		Name:  "classic",
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Pending: fgYellow,
		BoxPending: "☐", BoxBought: "☑",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
		SymBought: "✔", SymPending: "•",
		Palette: Palette{Muted: "8", Accent: "12", Success: "42", Error: "9", Pending: "214"},
	}
}

// SetTheme selects classic, neon or mono. Unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Name:  "neon",
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Pending: "\033[93m",
			BoxPending: "◻", BoxBought: "◼",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			SymBought: "✔", SymPending: "•",
			Palette: Palette{Title: "13", Muted: "8", Accent: "14", Success: "10", Error: "9", Pending: "11"},
		}
	case "mono":
		current = Theme{
			Name:       "mono",
			BoxPending: "[ ]", BoxBought: "[x]",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymBought: "x", SymPending: "-",
			NoColor: true,
		}
	default:
		current = classic()
	}
}

// Current returns the active theme.
func Current() Theme { return current }
