package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yeka/zip"
)

const readChunkSize = 32 * 1024

// ZipOpener opens the archive at Path once per worker. zip.FileHeader carries
// the password being tried, so readers are never shared between workers.
type ZipOpener struct {
	Path string
}

// Open returns a prober for the archive. The archive itself is opened lazily
// on the first probe; a reader that fails to open is retried on every probe
// and each failure counts as a Corrupt outcome.
func (o ZipOpener) Open() (Prober, error) {
	if strings.TrimSpace(o.Path) == "" {
		return nil, errors.New("zip prober: archive path is empty")
	}
	return &ZipProber{path: o.Path, buf: make([]byte, readChunkSize)}, nil
}

// ZipProber decodes every entry of a ZIP archive with a candidate password.
type ZipProber struct {
	path string
	rc   *zip.ReadCloser
	buf  []byte
}

// Probe decodes all entries with password. Decoding runs to the end of each
// entry so the archive's integrity checks are evaluated; ctx cancellation is
// observed between read chunks.
func (p *ZipProber) Probe(ctx context.Context, password []byte) Result {
	if err := ctx.Err(); err != nil {
		return Result{Outcome: WrongPassword, Err: err}
	}
	if p.rc == nil {
		rc, err := zip.OpenReader(p.path)
		if err != nil {
			return Result{Outcome: Corrupt, Err: fmt.Errorf("open archive: %w", err)}
		}
		p.rc = rc
	}

	pw := string(password)
	for _, f := range p.rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		encrypted := f.IsEncrypted()
		if encrypted {
			f.SetPassword(pw)
		}
		if err := p.drain(ctx, f); err != nil {
			return Result{Outcome: classify(err, encrypted), Err: fmt.Errorf("decode %s: %w", f.Name, err)}
		}
	}
	return Result{Outcome: Success}
}

func (p *ZipProber) drain(ctx context.Context, f *zip.File) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return copyContext(ctx, io.Discard, r, p.buf)
}

// Close releases the archive reader.
func (p *ZipProber) Close() error {
	if p.rc == nil {
		return nil
	}
	err := p.rc.Close()
	p.rc = nil
	return err
}

// classify maps a decode error to an Outcome. With a wrong key the decrypted
// stream is noise, so any failure while reading an encrypted entry (checksum,
// authentication, inflate errors, size overruns) is a password failure. An
// unsupported compression method is structural regardless of the key.
func classify(err error, encrypted bool) Outcome {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return WrongPassword
	case errors.Is(err, zip.ErrAlgorithm):
		return Corrupt
	case errors.Is(err, zip.ErrPassword), errors.Is(err, zip.ErrAuthentication), errors.Is(err, zip.ErrChecksum):
		return WrongPassword
	case encrypted:
		return WrongPassword
	default:
		return Corrupt
	}
}

func copyContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
