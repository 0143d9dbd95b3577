package bot

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var forbiddenNames = regexp.MustCompile(`[/\\<>:"|?*]`)

// sanitizeName strips filesystem-hostile characters from a display name.
// Names with nothing left after replacement fall back to "untitled".
func sanitizeName(name string) string {
	cleaned := strings.TrimSpace(forbiddenNames.ReplaceAllString(name, "_"))
	if strings.Trim(cleaned, "_ ") == "" {
		cleaned = "untitled"
	}
	return cleaned
}

// workspace is the filesystem scope of a single workflow invocation: a unique
// temp directory that is removed on every exit path, so partial downloads
// never outlive the workflow and same-named tracks from concurrent users
// never collide.
type workspace struct {
	dir string
}

// newWorkspace creates a unique temp directory under parent ("" uses the
// system temp directory).
func newWorkspace(parent string) (*workspace, error) {
	dir, err := os.MkdirTemp(parent, "spotfetch-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &workspace{dir: dir}, nil
}

// Path returns the location for a named artifact inside the workspace.
func (w *workspace) Path(name string) string {
	return filepath.Join(w.dir, sanitizeName(name))
}

// Close removes the workspace and everything in it.
func (w *workspace) Close() error {
	return os.RemoveAll(w.dir)
}

// buildArchive writes a zip at zipPath containing the given files under their
// base names. Duplicate paths are archived once.
func buildArchive(zipPath string, files []string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	archive := zip.NewWriter(out)

	seen := make(map[string]bool)
	for _, file := range files {
		if seen[file] {
			continue
		}
		seen[file] = true

		if err := addArchiveEntry(archive, file); err != nil {
			archive.Close()
			return err
		}
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return out.Close()
}

func addArchiveEntry(archive *zip.Writer, file string) error {
	in, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %w", file, err)
	}
	defer in.Close()

	entry, err := archive.Create(filepath.Base(file))
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %w", err)
	}

	if _, err := io.Copy(entry, in); err != nil {
		return fmt.Errorf("failed to write archive entry: %w", err)
	}
	return nil
}
