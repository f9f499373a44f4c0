package layout

// HeaderOverlay produces the per-page header placements: for every page,
// the student name centred at NameY followed by the roll number centred at
// RollY. Output order is fixed — name then roll, page by page — which is
// how the writer tells the two font sizes apart. Pages left empty of
// answer content still get their header pair.
func HeaderOverlay(pages int, info HeaderInfo, cfg Config, m TextMeasurer) []Placement {
	overlay := make([]Placement, 0, 2*pages)
	for page := 1; page <= pages; page++ {
		overlay = append(overlay,
			Placement{
				Text: info.Name,
				X:    cfg.CenterX - m.TextWidth(info.Name, cfg.NameSize)/2,
				Y:    cfg.NameY,
				Page: page,
			},
			Placement{
				Text: info.Roll,
				X:    cfg.CenterX - m.TextWidth(info.Roll, cfg.RollSize)/2,
				Y:    cfg.RollY,
				Page: page,
			},
		)
	}
	return overlay
}

// Document is everything the document writer needs to emit the final PDF.
type Document struct {
	Header  HeaderInfo
	Content []Placement
	Overlay []Placement
	Pages   int
}

// Compose runs the full layout pipeline over sanitized solution text:
// validate geometry, segment into answers, paginate, overlay headers.
func Compose(solution string, info HeaderInfo, cfg Config, m TextMeasurer) (Document, error) {
	if err := cfg.Validate(); err != nil {
		return Document{}, err
	}
	res := Paginate(SplitAnswers(solution), cfg, m)
	return Document{
		Header:  info,
		Content: res.Placements,
		Overlay: HeaderOverlay(res.Pages, info, cfg, m),
		Pages:   res.Pages,
	}, nil
}
