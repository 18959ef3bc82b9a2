package search_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"zipcrack/internal/keyspace"
	"zipcrack/internal/probe"
	"zipcrack/internal/search"
	"zipcrack/internal/services"
	"zipcrack/internal/testsupport"
)

// fakeProber accepts a single password. Every call is recorded.
type fakeProber struct {
	password string
	outcome  func(candidate string) probe.Outcome
	delay    time.Duration
	rec      *recorder
}

func (f *fakeProber) Probe(ctx context.Context, password []byte) probe.Result {
	candidate := string(password)
	if f.rec != nil {
		f.rec.add(candidate)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return probe.Result{Outcome: probe.WrongPassword, Err: ctx.Err()}
		}
	}
	if f.outcome != nil {
		return probe.Result{Outcome: f.outcome(candidate)}
	}
	if candidate == f.password {
		return probe.Result{Outcome: probe.Success}
	}
	return probe.Result{Outcome: probe.WrongPassword, Err: errors.New("bad password")}
}

func (f *fakeProber) Close() error { return nil }

type recorder struct {
	mu    sync.Mutex
	tried []string
}

func (r *recorder) add(c string) {
	r.mu.Lock()
	r.tried = append(r.tried, c)
	r.mu.Unlock()
}

func (r *recorder) sorted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.tried...)
	sort.Strings(out)
	return out
}

func openerFor(p fakeProber) probe.Opener {
	return probe.OpenerFunc(func() (probe.Prober, error) {
		clone := p
		return &clone, nil
	})
}

func placeholderArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault.zip")
	testsupport.WriteFile(t, path, 16)
	return path
}

func mustAlphabet(t *testing.T, symbols string) keyspace.Alphabet {
	t.Helper()
	a, err := keyspace.NewAlphabet(symbols)
	require.NoError(t, err)
	return a
}

func baseRequest(t *testing.T, archive, alphabet string, length, workers int) search.Request {
	return search.Request{
		Archive:      archive,
		Alphabet:     mustAlphabet(t, alphabet),
		Length:       length,
		Workers:      workers,
		PollInterval: 10 * time.Millisecond,
		JoinTimeout:  500 * time.Millisecond,
	}
}

func TestCoordinatorFindsPasswordTwoWorkers(t *testing.T) {
	archive := placeholderArchive(t)
	output := filepath.Join(t.TempDir(), "password.txt")
	req := baseRequest(t, archive, "ab", 2, 2)
	req.Opener = openerFor(fakeProber{password: "ba"})
	req.Sink = search.FileSink{Path: output}

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.True(t, report.Found)
	require.Equal(t, "ba", report.Password)
	require.Equal(t, 2, report.WorkersLaunched)
	require.Zero(t, report.Stragglers)
	require.NoError(t, report.OutputErr)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, "ba", string(data))
}

// arrivalGate releases every caller once n of them are waiting, or after a
// bound so a worker that never arrives cannot hang the test.
type arrivalGate struct {
	mu      sync.Mutex
	n       int
	arrived int
	open    chan struct{}
}

func newArrivalGate(n int) *arrivalGate {
	return &arrivalGate{n: n, open: make(chan struct{})}
}

func (g *arrivalGate) wait() {
	g.mu.Lock()
	g.arrived++
	if g.arrived == g.n {
		close(g.open)
	}
	g.mu.Unlock()
	select {
	case <-g.open:
	case <-time.After(2 * time.Second):
	}
}

func TestCoordinatorConcurrentSuccessesKeepOneResult(t *testing.T) {
	archive := placeholderArchive(t)
	for i := range 20 {
		output := filepath.Join(t.TempDir(), "password.txt")
		gate := newArrivalGate(2)
		req := baseRequest(t, archive, "ab", 2, 2)
		req.Opener = openerFor(fakeProber{outcome: func(string) probe.Outcome {
			gate.wait()
			return probe.Success
		}})
		req.Sink = search.FileSink{Path: output}

		report, err := search.NewCoordinator(nil).Run(context.Background(), req)
		require.NoError(t, err, "run %d", i)
		require.True(t, report.Found, "run %d", i)
		require.Contains(t, []string{"aa", "ba"}, report.Password, "run %d", i)
		require.Equal(t, 2, report.WorkersLaunched)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		require.Equal(t, report.Password, string(data), "run %d", i)
	}
}

func TestCoordinatorFindsPasswordInRealArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "emergency_storage_key.zip")
	testsupport.WriteEncryptedZip(t, archive, "ba", testsupport.ZipCrypto)
	output := filepath.Join(dir, "password.txt")

	req := baseRequest(t, archive, "ab", 2, 2)
	req.Sink = search.FileSink{Path: output}

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.True(t, report.Found)
	require.Equal(t, "ba", report.Password)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, "ba", string(data))

	// The archive is never modified.
	summary, err := probe.Inspect(archive)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Encrypted)
}

func TestCoordinatorMissingArchive(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "password.txt")
	opened := false
	req := baseRequest(t, filepath.Join(dir, "missing.zip"), "ab", 2, 2)
	req.Opener = probe.OpenerFunc(func() (probe.Prober, error) {
		opened = true
		return &fakeProber{}, nil
	})
	req.Sink = search.FileSink{Path: output}

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.ErrorIs(t, err, search.ErrTargetNotFound)
	require.ErrorIs(t, err, services.ErrNotFound)
	require.False(t, report.Found)
	require.Zero(t, report.WorkersLaunched)
	require.False(t, opened)
	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr))
}

func TestCoordinatorExhaustsWithoutMatch(t *testing.T) {
	archive := placeholderArchive(t)
	output := filepath.Join(t.TempDir(), "password.txt")
	rec := &recorder{}
	req := baseRequest(t, archive, "ab", 2, 2)
	req.Opener = openerFor(fakeProber{password: "abc", rec: rec})
	req.Sink = search.FileSink{Path: output}

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.False(t, report.Found)
	require.Empty(t, report.Password)
	require.EqualValues(t, 4, report.Attempts)
	require.Equal(t, []string{"aa", "ab", "ba", "bb"}, rec.sorted())

	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr))
}

func TestCoordinatorLengthOne(t *testing.T) {
	archive := placeholderArchive(t)
	req := baseRequest(t, archive, "xyz", 1, 3)
	req.Opener = openerFor(fakeProber{password: "z"})

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.True(t, report.Found)
	require.Equal(t, "z", report.Password)
}

func TestCoordinatorSkipsEmptyPartitions(t *testing.T) {
	archive := placeholderArchive(t)
	rec := &recorder{}
	req := baseRequest(t, archive, "ab", 2, 5)
	req.Opener = openerFor(fakeProber{password: "zz", rec: rec})

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 2, report.WorkersLaunched)
	require.Len(t, rec.sorted(), 4)
}

func TestCoordinatorDefaultsWorkerCount(t *testing.T) {
	archive := placeholderArchive(t)
	req := baseRequest(t, archive, "abcdefghijklmnopqrstuvwxyz0123456789", 1, 0)
	req.Opener = openerFor(fakeProber{password: "9"})

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.True(t, report.Found)
	require.GreaterOrEqual(t, report.WorkersLaunched, 1)
}

func TestCoordinatorCountsCorruptOutcomes(t *testing.T) {
	archive := placeholderArchive(t)
	req := baseRequest(t, archive, "ab", 2, 2)
	req.Opener = openerFor(fakeProber{outcome: func(string) probe.Outcome { return probe.Corrupt }})

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.False(t, report.Found)
	require.EqualValues(t, 4, report.Attempts)
	require.EqualValues(t, 4, report.Corrupt)
}

func TestCoordinatorAbortOnCorrupt(t *testing.T) {
	archive := placeholderArchive(t)
	req := baseRequest(t, archive, "ab", 3, 1)
	req.AbortOnCorrupt = true
	req.Opener = openerFor(fakeProber{outcome: func(string) probe.Outcome { return probe.Corrupt }})

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.ErrorIs(t, err, search.ErrArchiveCorrupt)
	require.ErrorIs(t, err, services.ErrCorrupt)
	require.False(t, report.Found)
	require.EqualValues(t, 1, report.Attempts)
}

func TestCoordinatorKeepsSearchingPastCorruptOutcomes(t *testing.T) {
	archive := placeholderArchive(t)
	req := baseRequest(t, archive, "ab", 2, 1)
	req.Opener = openerFor(fakeProber{outcome: func(c string) probe.Outcome {
		switch c {
		case "bb":
			return probe.Success
		case "ab":
			return probe.Corrupt
		default:
			return probe.WrongPassword
		}
	}})

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.True(t, report.Found)
	require.Equal(t, "bb", report.Password)
	require.EqualValues(t, 1, report.Corrupt)
}

func TestCoordinatorReportsOutputFailure(t *testing.T) {
	archive := placeholderArchive(t)
	req := baseRequest(t, archive, "ab", 2, 2)
	req.Opener = openerFor(fakeProber{password: "ba"})
	req.Sink = search.SinkFunc(func(string) error { return errors.New("disk full") })

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.True(t, report.Found)
	require.Equal(t, "ba", report.Password)
	require.EqualError(t, report.OutputErr, "disk full")
}

func TestCoordinatorCancellation(t *testing.T) {
	archive := placeholderArchive(t)
	req := baseRequest(t, archive, "abcdef", 6, 2)
	req.Opener = openerFor(fakeProber{password: "zzzzzz", delay: 5 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	report, err := search.NewCoordinator(nil).Run(ctx, req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, report.Found)
	require.Zero(t, report.Stragglers)
	require.Positive(t, report.Attempts)
}

// stuckProber ignores cancellation once it reaches its trigger candidate.
type stuckProber struct {
	trigger string
	release chan struct{}
}

func (s *stuckProber) Probe(_ context.Context, password []byte) probe.Result {
	if string(password) == s.trigger {
		<-s.release
	}
	if string(password) == "ab" {
		return probe.Result{Outcome: probe.Success}
	}
	return probe.Result{Outcome: probe.WrongPassword}
}

func (s *stuckProber) Close() error { return nil }

func TestCoordinatorAbandonsStragglers(t *testing.T) {
	archive := placeholderArchive(t)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	req := baseRequest(t, archive, "ab", 2, 2)
	req.JoinTimeout = 30 * time.Millisecond
	req.Opener = probe.OpenerFunc(func() (probe.Prober, error) {
		return &stuckProber{trigger: "ba", release: release}, nil
	})

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.NoError(t, err)
	require.True(t, report.Found)
	require.Equal(t, "ab", report.Password)
	require.Equal(t, 1, report.Stragglers)
	require.Len(t, report.Workers, 1)
}

func TestCoordinatorOpenerFailure(t *testing.T) {
	archive := placeholderArchive(t)
	req := baseRequest(t, archive, "ab", 2, 2)
	req.Opener = probe.OpenerFunc(func() (probe.Prober, error) {
		return nil, errors.New("no handles left")
	})

	report, err := search.NewCoordinator(nil).Run(context.Background(), req)
	require.Error(t, err)
	require.Zero(t, report.WorkersLaunched)
}
