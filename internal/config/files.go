package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// envFileName names the per-environment variant of a file: base.ext, or base.env.ext
func envFileName(base, env, ext string) string {
	if env == "" {
		return base + ext
	}
	return base + "." + env + ext
}

// locateEnvFile finds the environment's file in the working directory, then the home directory
func locateEnvFile(base, env, ext string) (string, error) {
	name := envFileName(base, env, ext)

	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}

// decodeFile reads path into v with the given unmarshaller. kind names the file in errors.
func decodeFile(path, kind string, unmarshal func([]byte, any) error, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s file: %w", kind, err)
	}

	if err := unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s file: %w", kind, err)
	}
	return nil
}
