// Package credentials manages the stored API credential used to
// authenticate streaming requests. The credential is a single opaque
// string persisted under a fixed key in credentials.toml in the .morfo/
// directory; morfo never interprets its format beyond non-emptiness.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/morfolab/morfo/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// envVars are consulted, in order, when no credential is stored on disk.
var envVars = []string{"MORFO_API_KEY", "OPENAI_API_KEY"}

// Manager manages reading and writing credentials.toml in the .morfo/
// directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty
// it is used as the .morfo/ directory; otherwise the standard dotdir
// resolution applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{Version: currentVersion}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetKey stores the API key.
func (m *Manager) SetKey(key string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Version = currentVersion
	creds.APIKey = key

	return m.Save(creds)
}

// GetKey returns the stored API key, falling back to the environment
// (MORFO_API_KEY, then OPENAI_API_KEY) when nothing is stored. Returns an
// empty string if no key is available anywhere.
func (m *Manager) GetKey() (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	if creds.APIKey != "" {
		return creds.APIKey, nil
	}

	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}

	return "", nil
}

// RemoveKey deletes the stored credential.
func (m *Manager) RemoveKey() error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.APIKey = ""

	return m.Save(creds)
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// EnvVars returns the environment variable names consulted as fallbacks,
// in precedence order.
func EnvVars() []string {
	return append([]string(nil), envVars...)
}
