package recording

// Option configures a Queue.
type Option func(*options)

type options struct {
	fallbackTexture uint32
	vertexCapacity  int
	indexCapacity   int
}

func defaultOptions() options {
	return options{
		vertexCapacity: 1024,
		indexCapacity:  1536,
	}
}

// WithFallbackTexture sets the texture bound when BindTexture(0) is called.
// It should be a 1x1 opaque white texture so that untextured geometry
// renders with its vertex color.
func WithFallbackTexture(id uint32) Option {
	return func(o *options) {
		o.fallbackTexture = id
	}
}

// WithCapacity preallocates room for the given number of vertices and
// indices in the scratch buffers.
func WithCapacity(vertices, indices int) Option {
	return func(o *options) {
		if vertices > 0 {
			o.vertexCapacity = vertices
		}
		if indices > 0 {
			o.indexCapacity = indices
		}
	}
}
