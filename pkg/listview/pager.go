package listview

import (
	"fmt"
	"strings"
)

// ButtonKind is the role of one pager control.
type ButtonKind int

const (
	ButtonFirst ButtonKind = iota
	ButtonPrev
	ButtonPage
	ButtonPlaceholder
	ButtonNext
	ButtonLast
)

// Button is one control in the pager row. Page is only meaningful for
// ButtonPage; a placeholder occupies a number slot but never jumps anywhere.
type Button struct {
	Kind     ButtonKind
	Page     int
	Current  bool
	Disabled bool
}

// LayoutPageButtons lays out the pager for a zero-based current page. The
// row is always first, previous, up to five number slots, next, last. With
// five or more pages exactly five slots are produced and the current page is
// kept centered, shifting only at the edges; with fewer pages only the real
// pages are rendered. A computed number that falls outside the page range
// becomes an inert placeholder, never a clamped duplicate.
func LayoutPageButtons(current, pageCount int) []Button {
	atStart := current <= 0
	atEnd := current >= pageCount-1

	buttons := []Button{
		{Kind: ButtonFirst, Disabled: atStart},
		{Kind: ButtonPrev, Disabled: atStart},
	}

	var lo, hi int
	switch {
	case pageCount <= 5:
		lo, hi = 0, pageCount-1
	case current < 2:
		lo, hi = 0, 4
	case current >= pageCount-2:
		lo, hi = pageCount-5, pageCount-1
	default:
		lo, hi = current-2, current+2
	}

	for n := lo; n <= hi; n++ {
		if n < 0 || n > pageCount-1 {
			buttons = append(buttons, Button{Kind: ButtonPlaceholder})
			continue
		}
		buttons = append(buttons, Button{Kind: ButtonPage, Page: n, Current: n == current})
	}

	buttons = append(buttons,
		Button{Kind: ButtonNext, Disabled: atEnd},
		Button{Kind: ButtonLast, Disabled: atEnd},
	)
	return buttons
}

// RenderPager renders a button row as a single line of text, the way the
// CLI shows it. Pages are displayed one-based, the current page in
// brackets, disabled navigation in parentheses and placeholders as dots.
func RenderPager(buttons []Button) string {
	tokens := make([]string, 0, len(buttons))
	for _, b := range buttons {
		var tok string
		switch b.Kind {
		case ButtonFirst:
			tok = "|<"
		case ButtonPrev:
			tok = "<"
		case ButtonNext:
			tok = ">"
		case ButtonLast:
			tok = ">|"
		case ButtonPlaceholder:
			tok = ".."
		case ButtonPage:
			tok = fmt.Sprintf("%d", b.Page+1)
			if b.Current {
				tok = "[" + tok + "]"
			}
		}
		if b.Disabled {
			tok = "(" + tok + ")"
		}
		tokens = append(tokens, tok)
	}
	return strings.Join(tokens, " ")
}
