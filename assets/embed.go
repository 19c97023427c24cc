package assets

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigTOML is the commented configuration template written by
// `config init`.
//
//go:embed default_config.toml
var DefaultConfigTOML []byte

// WriteDefaultConfig writes the template to path. An existing file is kept
// unless force is set.
func WriteDefaultConfig(path string, force bool) error {
	if len(DefaultConfigTOML) == 0 {
		return errors.New("embedded default_config.toml is empty")
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, DefaultConfigTOML, 0o644)
}
