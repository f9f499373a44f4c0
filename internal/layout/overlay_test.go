package layout

import "testing"

func TestHeaderOverlayTwoPerPage(t *testing.T) {
	cfg := Default()
	info := HeaderInfo{Name: "Grace Hopper", Roll: "NAVY-01"}

	for _, pages := range []int{1, 2, 5} {
		overlay := HeaderOverlay(pages, info, cfg, charMeasurer{})
		if len(overlay) != 2*pages {
			t.Errorf("pages=%d: overlay has %d placements, want %d", pages, len(overlay), 2*pages)
			continue
		}
		for page := 1; page <= pages; page++ {
			name := overlay[2*(page-1)]
			roll := overlay[2*(page-1)+1]
			if name.Text != info.Name || name.Page != page || name.Y != cfg.NameY {
				t.Errorf("pages=%d page=%d: name placement = %+v", pages, page, name)
			}
			if roll.Text != info.Roll || roll.Page != page || roll.Y != cfg.RollY {
				t.Errorf("pages=%d page=%d: roll placement = %+v", pages, page, roll)
			}
		}
	}
}

func TestHeaderOverlayCentering(t *testing.T) {
	cfg := Default()
	info := HeaderInfo{Name: "abcd", Roll: "xy"}
	overlay := HeaderOverlay(1, info, cfg, charMeasurer{})

	// charMeasurer: width equals rune count.
	if want := cfg.CenterX - 2; overlay[0].X != want {
		t.Errorf("name X = %v, want %v", overlay[0].X, want)
	}
	if want := cfg.CenterX - 1; overlay[1].X != want {
		t.Errorf("roll X = %v, want %v", overlay[1].X, want)
	}
}

func TestHeaderOverlayZeroPages(t *testing.T) {
	if got := HeaderOverlay(0, HeaderInfo{Name: "n", Roll: "r"}, Default(), charMeasurer{}); len(got) != 0 {
		t.Errorf("overlay for zero pages = %v, want none", got)
	}
}
