package tabhost

import "testing"

func TestLayoutStripEmpty(t *testing.T) {
	l := LayoutStrip(800, 28, 0)
	if len(l.TabRects) != 0 {
		t.Fatalf("expected no tab rects, got %d", len(l.TabRects))
	}
	if l.MenuButton.Width != menuButtonWidth || l.MenuButton.Height != 28 {
		t.Fatalf("unexpected menu button rect: %+v", l.MenuButton)
	}
}

func TestLayoutStripTabsFollowMenuButton(t *testing.T) {
	l := LayoutStrip(800, 28, 3)
	if len(l.TabRects) != 3 || len(l.CloseRects) != 3 {
		t.Fatalf("expected 3 tab and close rects")
	}
	if l.TabRects[0].X != menuButtonWidth+tabGapWidth {
		t.Fatalf("first tab must start after menu button, got x=%d", l.TabRects[0].X)
	}
	for i := 1; i < 3; i++ {
		if l.TabRects[i].X <= l.TabRects[i-1].X {
			t.Fatalf("tabs must be laid out left to right")
		}
	}
	for i, cr := range l.CloseRects {
		tr := l.TabRects[i]
		if cr.X+cr.Width != tr.X+tr.Width {
			t.Fatalf("close box %d must be flush with tab right edge", i)
		}
	}
}

func TestLayoutStripClampsTabWidth(t *testing.T) {
	wide := LayoutStrip(3000, 28, 2)
	if wide.TabRects[0].Width != tabMaxWidth {
		t.Fatalf("expected max tab width %d, got %d", tabMaxWidth, wide.TabRects[0].Width)
	}

	narrow := LayoutStrip(200, 28, 10)
	if narrow.TabRects[0].Width != tabMinWidth {
		t.Fatalf("expected min tab width %d, got %d", tabMinWidth, narrow.TabRects[0].Width)
	}
}

func TestStripHit(t *testing.T) {
	l := LayoutStrip(800, 28, 2)

	if kind, _ := l.Hit(5, 10); kind != HitMenu {
		t.Fatalf("expected menu hit, got %v", kind)
	}

	tr := l.TabRects[1]
	if kind, i := l.Hit(tr.X+2, 10); kind != HitTab || i != 1 {
		t.Fatalf("expected tab 1 hit, got %v %d", kind, i)
	}

	cr := l.CloseRects[0]
	if kind, i := l.Hit(cr.X+1, 10); kind != HitClose || i != 0 {
		t.Fatalf("expected close 0 hit, got %v %d", kind, i)
	}

	if kind, _ := l.Hit(799, 10); kind != HitNone {
		t.Fatalf("expected no hit past the tabs, got %v", kind)
	}
	if kind, _ := l.Hit(5, 28); kind != HitNone {
		t.Fatalf("expected no hit below the strip, got %v", kind)
	}
}

func TestTruncateLabel(t *testing.T) {
	if got := truncateLabel("short", 10); got != "short" {
		t.Fatalf("expected untouched label, got %q", got)
	}
	if got := truncateLabel("a very long window title", 10); got != "a very l.." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateLabel("abc", 0); got != "" {
		t.Fatalf("expected empty label, got %q", got)
	}
}

func TestTruncateLabelKeepsRunesWhole(t *testing.T) {
	title := "Éditeur de texte"
	got := truncateLabel(title, 10)
	if got != "Éditeur .." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	for _, r := range got {
		if r == '�' {
			t.Fatalf("truncation split a rune: %q", got)
		}
	}
	if got := truncateLabel("日本語のタイトル", 2); got != "日本" {
		t.Fatalf("unexpected short truncation: %q", got)
	}
}
