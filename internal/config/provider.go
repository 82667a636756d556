package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// fileProvider is a koanf.Provider reading a YAML document through afero.
type fileProvider struct {
	fs   afero.Fs
	path string
}

func yamlFile(fs afero.Fs, path string) *fileProvider {
	return &fileProvider{fs: fs, path: path}
}

// ReadBytes returns the raw file contents.
func (p *fileProvider) ReadBytes() ([]byte, error) {
	return afero.ReadFile(p.fs, p.path)
}

// Read returns the decoded YAML document as a nested map.
func (p *fileProvider) Read() (map[string]any, error) {
	b, err := p.ReadBytes()
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if out == nil {
		return nil, errors.New("decoding yaml: document is not a mapping")
	}
	return out, nil
}
