package tenant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedMunicipality is one entry of the startup seed file.
type SeedMunicipality struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	State          string `json:"state" yaml:"state"`
	LogoURL        string `json:"logo_url" yaml:"logo_url"`
	PrimaryColor   string `json:"primary_color" yaml:"primary_color"`
	SecondaryColor string `json:"secondary_color" yaml:"secondary_color"`
	AccentColor    string `json:"accent_color" yaml:"accent_color"`
	FontFamily     string `json:"font_family" yaml:"font_family"`
}

type SeedFile struct {
	Municipalities []SeedMunicipality `json:"municipalities" yaml:"municipalities"`
}

// LoadSeed reads a YAML or JSON seed file, chosen by extension.
func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data, filepath.Ext(path))
}

func ParseSeed(data []byte, ext string) (*SeedFile, error) {
	var file SeedFile
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse seed file: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse seed file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed file extension: %s", ext)
	}

	seen := make(map[string]bool, len(file.Municipalities))
	for _, m := range file.Municipalities {
		if m.ID == "" || m.Name == "" {
			return nil, fmt.Errorf("seed municipality requires id and name")
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate seed municipality: %s", m.ID)
		}
		seen[m.ID] = true
	}
	return &file, nil
}
