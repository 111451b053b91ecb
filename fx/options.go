package fx

// Option configures a Renderer.
type Option func(*options)

type options struct {
	tileSize           int
	framebuffers       bool
	unorderedComposite bool
	sortByHeight       bool
	atlasSize          IVec2
}

func defaultOptions() options {
	return options{
		tileSize:     DefaultTileSize,
		framebuffers: true,
		atlasSize:    DefaultAtlasSize,
	}
}

// WithTileSize sets the nominal tile size in pixels used for visibility.
func WithTileSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.tileSize = px
		}
	}
}

// WithFramebuffers enables or disables offscreen rendering. Without
// framebuffers ordered effects are drawn directly like unordered ones.
func WithFramebuffers(on bool) Option {
	return func(o *options) {
		o.framebuffers = on
	}
}

// WithUnorderedComposite routes unordered effects through a pair of
// offscreen targets covering the visible tiles, composited with the same
// three passes as ordered effects. It requires framebuffers.
func WithUnorderedComposite(on bool) Option {
	return func(o *options) {
		o.unorderedComposite = on
	}
}

// WithHeightSortedPacking packs ordered effects tallest first instead of in
// submission order.
func WithHeightSortedPacking(on bool) Option {
	return func(o *options) {
		o.sortByHeight = on
	}
}

// WithInitialAtlasSize sets the starting size of the ordered atlas.
func WithInitialAtlasSize(w, h int) Option {
	return func(o *options) {
		if w > 0 && h > 0 {
			o.atlasSize = IVec2{min(w, MaxAtlasSize.X), min(h, MaxAtlasSize.Y)}
		}
	}
}
