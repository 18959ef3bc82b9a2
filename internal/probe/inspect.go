package probe

import (
	"fmt"

	"github.com/yeka/zip"
)

// Summary describes an archive's entries without decoding them.
type Summary struct {
	Entries   int
	Encrypted int
	Bytes     uint64
}

// Inspect reads the archive's central directory.
func Inspect(path string) (Summary, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open archive: %w", err)
	}
	defer rc.Close()

	var summary Summary
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		summary.Entries++
		summary.Bytes += f.UncompressedSize64
		if f.IsEncrypted() {
			summary.Encrypted++
		}
	}
	return summary, nil
}
