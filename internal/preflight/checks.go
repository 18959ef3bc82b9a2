package preflight

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"zipcrack/internal/probe"
)

// ArchiveCheckName names the result produced by CheckArchive.
const ArchiveCheckName = "Archive"

// CheckArchive verifies that the archive exists and is a readable file.
func CheckArchive(path string) Result {
	const name = ArchiveCheckName

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "no archive path given"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d bytes)", path, info.Size())}
}

// CheckEncryptedEntries reads the archive directory. An archive with no
// encrypted entries is reported as an advisory failure: every candidate
// would succeed. An unreadable directory is advisory too; the search counts
// those attempts as corrupt.
func CheckEncryptedEntries(path string) Result {
	const name = "Encrypted entries"

	summary, err := probe.Inspect(path)
	if err != nil {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("cannot read zip directory: %v", err)}
	}
	if summary.Entries == 0 {
		return Result{Name: name, Advisory: true, Detail: "archive has no file entries"}
	}
	if summary.Encrypted == 0 {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("none of %d entries are encrypted", summary.Entries)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d of %d entries encrypted", summary.Encrypted, summary.Entries)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckNtfyTopic validates the topic URL without contacting the server.
func CheckNtfyTopic(_ context.Context, topic string) Result {
	const name = "ntfy"

	parsed, err := url.Parse(strings.TrimSpace(topic))
	if err != nil {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("invalid topic url: %v", err)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("topic url must be http or https, got %q", parsed.Scheme)}
	}
	if parsed.Host == "" || strings.Trim(parsed.Path, "/") == "" {
		return Result{Name: name, Advisory: true, Detail: "topic url needs a host and a topic path"}
	}
	return Result{Name: name, Passed: true, Detail: parsed.Host + parsed.Path}
}
