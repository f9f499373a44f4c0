package layout

import "fmt"

// cursor is the transient per-render pagination state.
type cursor struct {
	y    float64
	page int
}

// advance moves the cursor down and starts a new page once the bottom
// limit is crossed. The reset is always to exactly TopY.
func (c *cursor) advance(dy float64, cfg Config) {
	c.y += dy
	if c.y > cfg.BottomY {
		c.page++
		c.y = cfg.TopY
	}
}

// Result is the paged output of the paginator. Pages counts every page the
// cursor touched, including a trailing page opened by the final answer gap
// even if no further text lands on it.
type Result struct {
	Placements []Placement
	Pages      int
}

// Paginate distributes the answers across pages. Each answer gets a "N."
// label at NumberX (numbered by position, starting at 1) and its wrapped
// body lines at MarginX. An answer may span a page break; the label stays
// on the page where the answer started and is not repeated.
func Paginate(answers []string, cfg Config, m TextMeasurer) Result {
	body := func(s string) float64 { return m.TextWidth(s, cfg.BodySize) }
	cur := cursor{y: cfg.TopY, page: 1}

	var placements []Placement
	for i, ans := range answers {
		placements = append(placements, Placement{
			Text: fmt.Sprintf("%d.", i+1),
			X:    cfg.NumberX,
			Y:    cur.y,
			Page: cur.page,
		})
		for _, line := range Wrap(ans, cfg.MaxWidth, body) {
			placements = append(placements, Placement{
				Text: line,
				X:    cfg.MarginX,
				Y:    cur.y,
				Page: cur.page,
			})
			cur.advance(cfg.LineHeight, cfg)
		}
		cur.advance(cfg.AnswerGap, cfg)
	}

	return Result{Placements: placements, Pages: cur.page}
}
