package listview

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageNumbers(buttons []Button) []int {
	var pages []int
	for _, b := range buttons {
		if b.Kind == ButtonPage {
			pages = append(pages, b.Page)
		}
	}
	return pages
}

func TestLayoutPageButtons(t *testing.T) {
	t.Run("few pages render only real pages", func(t *testing.T) {
		buttons := LayoutPageButtons(0, 3)
		assert.Equal(t, []int{0, 1, 2}, pageNumbers(buttons))
		// first, prev, three pages, next, last
		assert.Len(t, buttons, 7)
	})

	t.Run("five slots centered in the middle", func(t *testing.T) {
		buttons := LayoutPageButtons(4, 10)
		assert.Equal(t, []int{2, 3, 4, 5, 6}, pageNumbers(buttons))
	})

	t.Run("window clamps at the start", func(t *testing.T) {
		buttons := LayoutPageButtons(1, 10)
		assert.Equal(t, []int{0, 1, 2, 3, 4}, pageNumbers(buttons))
	})

	t.Run("window clamps at the end", func(t *testing.T) {
		buttons := LayoutPageButtons(9, 10)
		assert.Equal(t, []int{5, 6, 7, 8, 9}, pageNumbers(buttons))
	})

	t.Run("navigation disabled at the edges", func(t *testing.T) {
		buttons := LayoutPageButtons(0, 10)
		assert.True(t, buttons[0].Disabled) // first
		assert.True(t, buttons[1].Disabled) // prev
		last := buttons[len(buttons)-1]
		next := buttons[len(buttons)-2]
		assert.False(t, next.Disabled)
		assert.False(t, last.Disabled)

		buttons = LayoutPageButtons(9, 10)
		assert.False(t, buttons[0].Disabled)
		assert.True(t, buttons[len(buttons)-1].Disabled)
		assert.True(t, buttons[len(buttons)-2].Disabled)
	})

	t.Run("exactly one current page", func(t *testing.T) {
		for pageCount := 1; pageCount <= 12; pageCount++ {
			for current := 0; current < pageCount; current++ {
				t.Run(fmt.Sprintf("%d_of_%d", current, pageCount), func(t *testing.T) {
					currents := 0
					for _, b := range LayoutPageButtons(current, pageCount) {
						if b.Kind == ButtonPage && b.Current {
							require.Equal(t, current, b.Page)
							currents++
						}
					}
					require.Equal(t, 1, currents)
				})
			}
		}
	})

	t.Run("never more than five number slots", func(t *testing.T) {
		for pageCount := 1; pageCount <= 12; pageCount++ {
			for current := 0; current < pageCount; current++ {
				slots := 0
				for _, b := range LayoutPageButtons(current, pageCount) {
					if b.Kind == ButtonPage || b.Kind == ButtonPlaceholder {
						slots++
					}
				}
				assert.LessOrEqual(t, slots, 5)
			}
		}
	})
}

func TestRenderPagerGolden(t *testing.T) {
	g := goldie.New(t)

	cases := []struct {
		name      string
		current   int
		pageCount int
	}{
		{"single_page", 0, 1},
		{"first_of_three", 0, 3},
		{"first_of_ten", 0, 10},
		{"middle_of_ten", 4, 10},
		{"last_of_ten", 9, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := RenderPager(LayoutPageButtons(tc.current, tc.pageCount))
			g.Assert(t, tc.name, []byte(line))
		})
	}
}
