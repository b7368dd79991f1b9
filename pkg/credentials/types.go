package credentials

// Credentials represents the stored API credential in credentials.toml.
type Credentials struct {
	Version int    `toml:"version"`
	APIKey  string `toml:"api_key"`
}
