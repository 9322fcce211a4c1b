package transcript

import "testing"

func TestShouldFollowNearBottom(t *testing.T) {
	p := ScrollPolicy{NearBottomPx: 100}

	cases := []struct {
		name string
		v    Viewport
		want bool
	}{
		{"at bottom", Viewport{ScrollHeight: 1000, ScrollTop: 600, ClientHeight: 400}, true},
		{"just inside threshold", Viewport{ScrollHeight: 1000, ScrollTop: 501, ClientHeight: 400}, true},
		{"exactly at threshold", Viewport{ScrollHeight: 1000, ScrollTop: 500, ClientHeight: 400}, false},
		{"scrolled up reading history", Viewport{ScrollHeight: 5000, ScrollTop: 0, ClientHeight: 400}, false},
	}
	for _, c := range cases {
		if got := p.ShouldFollow(c.v, false); got != c.want {
			t.Fatalf("%s: ShouldFollow = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestShouldFollowFirstLoadIsUnconditional(t *testing.T) {
	p := ScrollPolicy{NearBottomPx: 100}
	far := Viewport{ScrollHeight: 5000, ScrollTop: 0, ClientHeight: 400}
	if !p.ShouldFollow(far, true) {
		t.Fatalf("first load must always follow to the newest message")
	}
}
