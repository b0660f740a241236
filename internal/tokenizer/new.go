package tokenizer

import (
	"github.com/nguyentantai21042004/medscribe/internal/logger"
)

// DefaultModel is the HuggingFace tokenizer used when none is configured.
const DefaultModel = "Qwen/Qwen2-7B-Instruct"

// LoaderFunc loads a Codec for a model identifier.
type LoaderFunc func(model string) (Codec, error)

// Options configures a Tokenizer.
type Options struct {
	Backend Backend
	// Model is the HuggingFace model id or a local tokenizer.json path.
	Model string
	// Cache holds loaded codecs. A private cache is created when nil.
	Cache *Cache

	// Loaders are overridable for tests and offline setups.
	HuggingFaceLoader LoaderFunc
	TiktokenLoader    LoaderFunc
}

type implTokenizer struct {
	backend Backend
	model   string
	cache   *Cache
	hfLoad  LoaderFunc
	tikLoad LoaderFunc
	logger  logger.Logger
}

// New creates a Tokenizer.
func New(opts Options, log logger.Logger) Tokenizer {
	if opts.Backend == "" {
		opts.Backend = BackendHuggingFace
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Cache == nil {
		opts.Cache = MustNewCache(DefaultCacheSize)
	}
	if opts.HuggingFaceLoader == nil {
		opts.HuggingFaceLoader = LoadHuggingFace
	}
	if opts.TiktokenLoader == nil {
		opts.TiktokenLoader = LoadTiktoken
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &implTokenizer{
		backend: opts.Backend,
		model:   opts.Model,
		cache:   opts.Cache,
		hfLoad:  opts.HuggingFaceLoader,
		tikLoad: opts.TiktokenLoader,
		logger:  log,
	}
}
