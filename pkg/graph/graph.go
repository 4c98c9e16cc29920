package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/metromap/pkg/errors"
)

// Input formats for career maps.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// FormatFromPath infers the input format from a file extension.
// Unknown extensions default to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// Career Map Serialization API
// =============================================================================

// ReadCareerMap decodes a career map in the given format and validates it.
func ReadCareerMap(r io.Reader, format string) (CareerMap, error) {
	var m CareerMap
	switch format {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&m); err != nil {
			return CareerMap{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode json")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
			return CareerMap{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode toml")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&m); err != nil {
			return CareerMap{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode yaml")
		}
	default:
		return CareerMap{}, errs.New(errs.ErrCodeInvalidFormat, "unsupported input format %q", format)
	}
	if err := m.Validate(); err != nil {
		return CareerMap{}, err
	}
	return m, nil
}

// ReadCareerMapFile reads a career map file, inferring the format from its
// extension.
func ReadCareerMapFile(path string) (CareerMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return CareerMap{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadCareerMap(f, FormatFromPath(path))
}

// UnmarshalCareerMap decodes JSON bytes into a validated CareerMap.
func UnmarshalCareerMap(data []byte) (CareerMap, error) {
	return ReadCareerMap(bytes.NewReader(data), FormatJSON)
}

// MarshalCareerMap encodes m as pretty-printed JSON.
// Output is stable for equal maps, which makes it usable as a cache key.
func MarshalCareerMap(m CareerMap) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCareerMap(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCareerMap writes m as JSON to w.
func WriteCareerMap(m CareerMap, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
