package driven

// ConfigStore exposes config.toml as flat dotted keys, for example
// "search.batch_size" or "backend.url". Typed getters return the zero
// value when a key is missing or holds another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set changes a value in memory. Save writes it out.
	Set(key string, value any) error
	Save() error

	// Load rereads the backing file, discarding unsaved changes.
	Load() error

	// Path is the backing file, or ":memory:".
	Path() string
}
