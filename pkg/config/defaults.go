package config

const (
	defaultEndpoint = "https://api.openai.com/v1/responses"
	defaultModel    = "gpt-4o-mini"

	defaultBufferLimit = 512 * 1024
	defaultIdleTimeout = "90s"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Endpoint: defaultEndpoint,
			Model:    defaultModel,
		},
		Stream: StreamConfig{
			BufferLimit: defaultBufferLimit,
			IdleTimeout: defaultIdleTimeout,
		},
		History: HistoryConfig{},
	}
}
