// Package cachepath resolves the on-disk location of the SQLite response
// cache shared by the respond commands.
package cachepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/respond/pkg/dotdir"
)

const cacheFile = "cache.db"

// ResolveCachePath returns the path to the SQLite cache database. An explicit
// override always wins, then the RESPOND_SQLITE environment variable, then
// any existing database file in the usual locations. When no database exists
// yet, the path lands inside the resolved .respond/ directory, creating
// ~/.respond/ if nothing else resolves.
func ResolveCachePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("RESPOND_SQLITE")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range cacheCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	ddm := dotdir.NewManager()
	target, err := ddm.Target("")
	if err != nil {
		return "", fmt.Errorf("resolving cache dir: %w", err)
	}

	if target == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home dir: %w", err)
		}
		target = filepath.Join(home, ".respond")
		if err := os.MkdirAll(target, 0o755); err != nil {
			return "", fmt.Errorf("creating cache dir: %w", err)
		}
	}

	return filepath.Join(target, cacheFile), nil
}

func cacheCandidates() []string {
	candidates := []string{
		filepath.Join(".respond", cacheFile),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".respond", cacheFile))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "respond", cacheFile),
		}, candidates...)
	}

	return candidates
}
