package probe_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"zipcrack/internal/probe"
	"zipcrack/internal/testsupport"
)

func openProber(t *testing.T, path string) probe.Prober {
	t.Helper()
	p, err := probe.ZipOpener{Path: path}.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestZipProberClassifiesPasswords(t *testing.T) {
	for _, tc := range []struct {
		name string
		enc  testsupport.Encryption
	}{
		{name: "zipcrypto", enc: testsupport.ZipCrypto},
		{name: "aes256", enc: testsupport.AES256},
	} {
		t.Run(tc.name, func(t *testing.T) {
			archive := filepath.Join(t.TempDir(), "vault.zip")
			testsupport.WriteEncryptedZip(t, archive, "ba", tc.enc,
				testsupport.ZipEntry{Name: "a.txt", Content: []byte("alpha alpha alpha")},
				testsupport.ZipEntry{Name: "dir/b.txt", Content: []byte("bravo")},
			)
			p := openProber(t, archive)

			for _, wrong := range []string{"aa", "ab", "bb", "b", "baa"} {
				res := p.Probe(context.Background(), []byte(wrong))
				require.Equal(t, probe.WrongPassword, res.Outcome, "candidate %q", wrong)
				require.Error(t, res.Err)
			}

			res := p.Probe(context.Background(), []byte("ba"))
			require.True(t, res.OK(), "expected success, got %v (%v)", res.Outcome, res.Err)
			require.NoError(t, res.Err)
		})
	}
}

func TestZipProberReusableAfterSuccess(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "vault.zip")
	testsupport.WriteEncryptedZip(t, archive, "k3y", testsupport.AES256)
	p := openProber(t, archive)

	require.True(t, p.Probe(context.Background(), []byte("k3y")).OK())
	require.Equal(t, probe.WrongPassword, p.Probe(context.Background(), []byte("key")).Outcome)
	require.True(t, p.Probe(context.Background(), []byte("k3y")).OK())
}

func TestZipProberCorruptArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "garbage.zip")
	testsupport.WriteGarbage(t, archive)
	p := openProber(t, archive)

	res := p.Probe(context.Background(), []byte("aa"))
	require.Equal(t, probe.Corrupt, res.Outcome)
	require.Error(t, res.Err)

	// The reader is reopened on every attempt until it succeeds.
	res = p.Probe(context.Background(), []byte("ab"))
	require.Equal(t, probe.Corrupt, res.Outcome)
}

func TestZipProberMissingArchiveIsCorrupt(t *testing.T) {
	p := openProber(t, filepath.Join(t.TempDir(), "missing.zip"))
	res := p.Probe(context.Background(), []byte("aa"))
	require.Equal(t, probe.Corrupt, res.Outcome)
}

func TestZipProberHonoursCanceledContext(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "vault.zip")
	testsupport.WriteEncryptedZip(t, archive, "ba", testsupport.ZipCrypto)
	p := openProber(t, archive)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := p.Probe(ctx, []byte("ba"))
	require.False(t, res.OK())
	require.True(t, errors.Is(res.Err, context.Canceled))
}

func TestZipOpenerRejectsEmptyPath(t *testing.T) {
	_, err := probe.ZipOpener{Path: "  "}.Open()
	require.Error(t, err)
}

func TestZipProberCloseIsIdempotent(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "vault.zip")
	testsupport.WriteEncryptedZip(t, archive, "ba", testsupport.ZipCrypto)
	p, err := probe.ZipOpener{Path: archive}.Open()
	require.NoError(t, err)
	p.Probe(context.Background(), []byte("aa"))
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	encrypted := filepath.Join(dir, "enc.zip")
	testsupport.WriteEncryptedZip(t, encrypted, "pw", testsupport.ZipCrypto,
		testsupport.ZipEntry{Name: "one", Content: []byte("12345")},
		testsupport.ZipEntry{Name: "two", Content: []byte("678")},
	)
	summary, err := probe.Inspect(encrypted)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Entries)
	require.Equal(t, 2, summary.Encrypted)
	require.EqualValues(t, 8, summary.Bytes)

	plain := filepath.Join(dir, "plain.zip")
	testsupport.WriteEncryptedZip(t, plain, "", testsupport.ZipCrypto)
	summary, err = probe.Inspect(plain)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Entries)
	require.Zero(t, summary.Encrypted)

	garbage := filepath.Join(dir, "garbage.zip")
	testsupport.WriteGarbage(t, garbage)
	_, err = probe.Inspect(garbage)
	require.Error(t, err)
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "vault.zip")
	testsupport.WriteEncryptedZip(t, archive, "ba", testsupport.AES256,
		testsupport.ZipEntry{Name: "a.txt", Content: []byte("alpha")},
		testsupport.ZipEntry{Name: "nested/b.txt", Content: []byte("bravo")},
	)
	out := filepath.Join(dir, "out")

	n, err := probe.Extract(context.Background(), archive, []byte("ba"), out)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := os.ReadFile(filepath.Join(out, "nested", "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "bravo", string(got))
}

func TestExtractWrongPassword(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "vault.zip")
	testsupport.WriteEncryptedZip(t, archive, "ba", testsupport.AES256)

	_, err := probe.Extract(context.Background(), archive, []byte("ab"), filepath.Join(dir, "out"))
	require.Error(t, err)
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	testsupport.WriteEncryptedZip(t, archive, "", testsupport.ZipCrypto,
		testsupport.ZipEntry{Name: "../escape.txt", Content: []byte("x")},
	)

	_, err := probe.Extract(context.Background(), archive, nil, filepath.Join(dir, "out"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "escape.txt"))
	require.True(t, os.IsNotExist(statErr))
}
