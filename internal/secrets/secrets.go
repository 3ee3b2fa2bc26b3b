// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: reddit-client-id, reddit-client-secret, reddit-user-agent.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", "name", name, "err", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Key file names.
const (
	RedditClientID     = "reddit-client-id"
	RedditClientSecret = "reddit-client-secret"
	RedditUserAgent    = "reddit-user-agent"
)

// Reddit holds application credentials for Reddit's OAuth API.
type Reddit struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// RedditFrom picks the Reddit credentials out of a loaded secrets map.
func RedditFrom(m map[string]string) Reddit {
	return Reddit{
		ClientID:     m[RedditClientID],
		ClientSecret: m[RedditClientSecret],
		UserAgent:    m[RedditUserAgent],
	}
}

// HasOAuth reports whether both halves of the client credentials are set.
// Without them collection falls back to the public endpoints.
func (r Reddit) HasOAuth() bool {
	return r.ClientID != "" && r.ClientSecret != ""
}
