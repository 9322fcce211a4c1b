package transcript

// Viewport is the scroll geometry of a message list as reported by the view.
type Viewport struct {
	ScrollHeight int
	ScrollTop    int
	ClientHeight int
}

// DistanceFromBottom returns how far the viewport sits above the newest
// content.
func (v Viewport) DistanceFromBottom() int {
	return v.ScrollHeight - v.ScrollTop - v.ClientHeight
}

// ScrollPolicy decides when the view may jump to the newest message.
// Auto-scroll must never yank a user away from history they are reading: it
// only fires when the viewport was already near the bottom before the new
// message arrived, or unconditionally on first load of a non-empty
// transcript.
type ScrollPolicy struct {
	// NearBottomPx is the "caught up" threshold in pixels.
	NearBottomPx int
}

// ShouldFollow reports whether the view should scroll to the newest message.
func (p ScrollPolicy) ShouldFollow(v Viewport, firstLoad bool) bool {
	if firstLoad {
		return true
	}
	return v.DistanceFromBottom() < p.NearBottomPx
}
