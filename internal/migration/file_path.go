package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

const (
	modulePath    = "github.com/elskow/press-portal"
	migrationsDir = "migrations"
)

var errModuleRootNotFound = errors.New("module root not found")

// resolveMigrationsDir picks the SQL directory: the configured one, then a
// migrations directory beside the executable, then the one at the module
// root above the working directory.
func resolveMigrationsDir(configured string) (string, error) {
	if configured != "" {
		abs, err := filepath.Abs(configured)
		if err != nil {
			return "", err
		}
		if !isDir(abs) {
			return "", fmt.Errorf("migrations directory %s does not exist", abs)
		}
		return abs, nil
	}

	if exe, err := os.Executable(); err == nil {
		if dir := filepath.Join(filepath.Dir(exe), migrationsDir); isDir(dir) {
			return dir, nil
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := findModuleRoot(wd)
	if err != nil {
		return "", fmt.Errorf("failed to locate migrations: %w", err)
	}
	return filepath.Join(root, migrationsDir), nil
}

// findModuleRoot walks up from start to the directory whose go.mod declares
// this module. go.mod files of other modules are skipped.
func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		content, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		switch {
		case err == nil:
			if modfile.ModulePath(content) == modulePath {
				return dir, nil
			}
		case !errors.Is(err, os.ErrNotExist):
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w above %s", errModuleRootNotFound, start)
		}
		dir = parent
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
