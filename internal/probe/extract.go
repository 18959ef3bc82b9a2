package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeka/zip"
)

// Extract decodes the archive with password into dir. Entry names that would
// escape dir are rejected. It returns the number of files written.
func Extract(ctx context.Context, archive string, password []byte, dir string) (int, error) {
	rc, err := zip.OpenReader(archive)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer rc.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("resolve extract dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return 0, fmt.Errorf("create extract dir: %w", err)
	}

	buf := make([]byte, readChunkSize)
	written := 0
	for _, f := range rc.File {
		target, err := safeJoin(root, f.Name)
		if err != nil {
			return written, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, fmt.Errorf("create %s: %w", f.Name, err)
			}
			continue
		}
		if f.IsEncrypted() {
			f.SetPassword(string(password))
		}
		if err := extractFile(ctx, f, target, buf); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func extractFile(ctx context.Context, f *zip.File, target string, buf []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent for %s: %w", f.Name, err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if err := copyContext(ctx, dst, src, buf); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	return nil
}

func safeJoin(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes extract dir", name)
	}
	return filepath.Join(root, cleaned), nil
}
