package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonwraymond/infisical-secrets/fault"
	"github.com/jonwraymond/infisical-secrets/observe"
	"github.com/jonwraymond/infisical-secrets/secret"
)

// FileMode is the permission of written secret files.
const FileMode os.FileMode = 0o600

// File writes the secret map to a file under the workspace root.
type File struct {
	path   string
	logger observe.Logger
}

// NewFile creates a file exporter for workspace/relPath. A leading separator
// in relPath is ignored; a path that climbs out of the workspace is rejected.
func NewFile(workspace, relPath string, logger observe.Logger) (*File, error) {
	const op = "export.file"

	if strings.TrimSpace(relPath) == "" {
		return nil, fault.Wrap(fault.KindConfig, op, ErrMissingFilePath)
	}
	path, err := ResolvePath(workspace, relPath)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfig, op, err)
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &File{path: path, logger: logger}, nil
}

// Path returns the resolved output path.
func (f *File) Path() string {
	return f.path
}

// Export renders secrets and replaces the output file atomically.
func (f *File) Export(ctx context.Context, secrets secret.Map) error {
	if err := ctx.Err(); err != nil {
		return fault.Wrap(fault.KindIO, "export.file", err)
	}
	if err := WriteFileAtomic(f.path, []byte(Render(secrets)), FileMode); err != nil {
		return fault.Wrap(fault.KindIO, "export.file", err)
	}

	f.logger.Debug(ctx, "file export finished",
		observe.Field{Key: "path", Value: f.path},
		observe.Field{Key: "secrets", Value: secrets.Len()},
	)
	return nil
}

// Render formats secrets as KEY='VALUE' lines in key order, joined by "\n".
func Render(secrets secret.Map) string {
	lines := make([]string, 0, secrets.Len())
	secrets.Range(func(key, value string) bool {
		lines = append(lines, key+"='"+value+"'")
		return true
	})
	return strings.Join(lines, "\n")
}

// ResolvePath joins relPath onto workspace and ensures the result stays
// inside it.
func ResolvePath(workspace, relPath string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimSpace(relPath)))
	if filepath.IsAbs(rel) {
		rel = strings.TrimPrefix(rel, string(filepath.Separator))
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, relPath)
	}
	if rel == "." || rel == "" {
		return "", ErrMissingFilePath
	}
	return filepath.Join(workspace, rel), nil
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never see a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

var _ Exporter = (*File)(nil)
