package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ReadRecordsFile decodes a records file. The extension selects the format:
// .yaml, .yml or .toml.
func ReadRecordsFile(path string) (Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Records{}, fmt.Errorf("failed to read records file %q: %w", path, err)
	}

	records, err := DecodeRecords(data, formatOf(path))
	if err != nil {
		return Records{}, fmt.Errorf("failed to parse records file %q: %w", path, err)
	}
	return records, nil
}

// DecodeRecords decodes records in the given format ("yaml" or "toml").
func DecodeRecords(data []byte, format string) (Records, error) {
	var records Records

	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return Records{}, err
		}
	case "toml":
		md, err := toml.Decode(string(data), &records)
		if err != nil {
			return Records{}, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return Records{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	default:
		return Records{}, fmt.Errorf("unsupported records format %q", format)
	}

	return records, nil
}

// formatOf maps a file extension to a records format.
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
}
