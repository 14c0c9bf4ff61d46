package debugplot

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/pointselect/internal/fsutil"
	"github.com/banshee-data/pointselect/internal/security"
)

// OutputPath builds dir/<name>.<ext> with name made safe for use as a
// file name, so request ids can name debug output.
func OutputPath(dir, name, ext string) string {
	return filepath.Join(dir, security.SanitizeFilename(name)+"."+ext)
}

func writeFile(fsys fsutil.FileSystem, path string, write func(io.Writer) (int64, error)) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
