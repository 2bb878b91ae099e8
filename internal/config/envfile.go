package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// envFileNames are read in order; earlier files win.
var envFileNames = []string{".env.local", ".env"}

// loadEnvFiles fills unset environment variables from the env files in the
// working directory and next to the executable. It returns the files read.
func loadEnvFiles() []string {
	var loaded []string
	seen := map[string]bool{}
	for _, dir := range envDirs() {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		loaded = append(loaded, loadEnvDir(dir)...)
	}
	return loaded
}

func envDirs() []string {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return dirs
}

func loadEnvDir(dir string) []string {
	var loaded []string
	for _, name := range envFileNames {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		vars, err := parseEnvFile(f)
		f.Close()
		if err != nil {
			continue
		}
		for k, v := range vars {
			if os.Getenv(k) == "" {
				_ = os.Setenv(k, v)
			}
		}
		loaded = append(loaded, path)
	}
	return loaded
}

// parseEnvFile reads KEY=VALUE lines. Blank lines, comments and lines without
// a key are skipped; an "export " prefix and surrounding quotes are dropped.
func parseEnvFile(r io.Reader) (map[string]string, error) {
	vars := map[string]string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		vars[key] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return vars, sc.Err()
}
