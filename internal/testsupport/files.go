package testsupport

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/yeka/zip"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// ZipEntry is a single file written by WriteEncryptedZip.
type ZipEntry struct {
	Name    string
	Content []byte
}

// Encryption selects the cipher used by WriteEncryptedZip.
type Encryption int

const (
	// ZipCrypto is the legacy PKWARE stream cipher.
	ZipCrypto Encryption = iota
	// AES256 is WinZip AES with a 256-bit key.
	AES256
)

// WriteEncryptedZip writes a password-protected archive at path. An empty
// password stores the entries unencrypted.
func WriteEncryptedZip(t testing.TB, path, password string, enc Encryption, entries ...ZipEntry) {
	t.Helper()

	if len(entries) == 0 {
		entries = []ZipEntry{{Name: "secret.txt", Content: []byte("the vault code is 0000\n")}}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	method := zip.StandardEncryption
	if enc == AES256 {
		method = zip.AES256Encryption
	}

	zw := zip.NewWriter(f)
	for _, entry := range entries {
		var (
			w   io.Writer
			err error
		)
		if password == "" {
			w, err = zw.Create(entry.Name)
		} else {
			w, err = zw.Encrypt(entry.Name, password, method)
		}
		if err != nil {
			t.Fatalf("add %s: %v", entry.Name, err)
		}
		if _, err := w.Write(entry.Content); err != nil {
			t.Fatalf("write %s: %v", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
}

// WriteGarbage writes bytes that are not a ZIP archive.
func WriteGarbage(t testing.TB, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
