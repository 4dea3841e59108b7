package ui

import (
	"fmt"

	"github.com/Makepad-fr/shoplist/internal/model"
)

const maxNameWidth = 80

// Stats counts bought and pending items.
func Stats(items []model.Item) (bought, pending int) {
	for _, it := range items {
		if it.IsBought {
			bought++
		} else {
			pending++
		}
	}
	return
}

// ListPanel builds the lines for the framed `ls` view: header, progress, items, tip.
func ListPanel(items []model.Item, group bool) []string {
	t := Current()
	b, p := Stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, "Shopping list"),
		C(t.Success, t.SymBought), b,
		C(t.Pending, t.SymPending), p,
		C(t.Accent, "Total"), len(items),
	)

	lines := []string{header, C(t.Muted, ProgressBar(b, b+p, 28)), ""}
	if group {
		lines = append(lines, GroupLines(items)...)
	} else {
		lines = append(lines, ItemLines(items)...)
	}
	lines = append(lines, "", C(t.Muted, "Tip: add with `shoplist add \"Milk\"`"))
	return lines
}

// ItemLines renders one line per item, numbered by 1-based position.
func ItemLines(items []model.Item) []string {
	return itemLines(items, nil)
}

// GroupLines renders pending items, then bought ones. Positions still refer
// to the ungrouped view so they can be passed to toggle/edit/rm.
func GroupLines(items []model.Item) []string {
	t := Current()
	var pend, bought []int
	for i, it := range items {
		if it.IsBought {
			bought = append(bought, i)
		} else {
			pend = append(pend, i)
		}
	}

	var lines []string
	lines = append(lines, C(t.Accent, "To buy"))
	if len(pend) == 0 {
		lines = append(lines, C(t.Muted, "(none)"))
	} else {
		lines = append(lines, itemLines(items, pend)...)
	}
	lines = append(lines, "", C(t.Accent, "Bought"))
	if len(bought) == 0 {
		lines = append(lines, C(t.Muted, "(none)"))
	} else {
		lines = append(lines, itemLines(items, bought)...)
	}
	return lines
}

func itemLines(items []model.Item, positions []int) []string {
	t := Current()
	if positions == nil {
		if len(items) == 0 {
			return []string{C(t.Muted, "no items")}
		}
		positions = make([]int, len(items))
		for i := range items {
			positions[i] = i
		}
	}
	out := make([]string, 0, len(positions))
	for _, i := range positions {
		it := items[i]
		box, color := t.BoxPending, t.Muted
		if it.IsBought {
			box, color = t.BoxBought, t.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			Dim(fmt.Sprintf("%2d.", i+1)), C(color, box), Truncate(it.Name, maxNameWidth)))
	}
	return out
}

// Truncate shortens s to at most n runes, ending in "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
