package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envReference matches ${NAME}. Bare $NAME is left alone because XPath
// uses $ for variables.
var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadEnv loads KEY=value pairs from path into the environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadFile reads and validates the crawl definition at path.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a crawl definition. ${NAME} references inside values are
// replaced from the environment after the document is parsed, so a value
// may contain any character. Unknown keys are rejected so typos surface
// early.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Kind == 0 {
		return nil, ErrNoSpiders
	}
	expandEnv(&doc)

	expanded, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(expanded))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoSpiders
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// expandEnv replaces ${NAME} references in every scalar below node.
// An expanded plain scalar drops its resolved tag so "6379" still
// decodes into an int and "a: b" is quoted when re-encoded.
func expandEnv(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode {
		value := envReference.ReplaceAllStringFunc(node.Value, func(ref string) string {
			return os.Getenv(envReference.FindStringSubmatch(ref)[1])
		})
		if value != node.Value {
			node.Value = value
			if node.Style == 0 {
				node.Tag = ""
			}
		}
		return
	}
	for _, child := range node.Content {
		expandEnv(child)
	}
}

// FindConfigFile searches for the crawl definition in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for spider.yaml in the current directory
// 3. Look for spider.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := []string{DefaultConfigFile}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), DefaultConfigFile))
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
