package splitter

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// Options chunking parameters
type Options struct {
	chunkSize    int
	overlap      int
	tokenCounter TokenCounter
}

// Option is a function type for configuring chunker Options.
type Option func(*Options)

// WithChunkSize sets the target tokens per chunk
func WithChunkSize(size int) Option {
	return func(o *Options) {
		o.chunkSize = size
	}
}

// WithOverlap sets how many trailing tokens of a chunk are repeated in the next one
func WithOverlap(overlap int) Option {
	return func(o *Options) {
		o.overlap = overlap
	}
}

func WithTokenCounter(counter TokenCounter) Option {
	return func(o *Options) {
		o.tokenCounter = counter
	}
}

func newOptions(opts ...Option) Options {
	ret := Options{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(&ret)
	}
	if ret.tokenCounter == nil {
		ret.tokenCounter = WordsTokenCounter{}
	}
	if ret.chunkSize <= 0 {
		ret.chunkSize = DefaultChunkSize
	}
	if ret.overlap < 0 {
		ret.overlap = 0
	}
	return ret
}

func (o Options) ChunkSize() int {
	return o.chunkSize
}

func (o Options) Overlap() int {
	return o.overlap
}

func (o Options) TokenCount(txt string) int {
	return o.tokenCounter.Count([]byte(txt))
}
