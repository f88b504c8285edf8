package sharedmime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testGlobs = `50:text/plain:*.txt
50:image/x-a:*.dat
50:image/x-b:*.dat
`

// testMagic is a hand-built "MIME-Magic\0\n" database with a single section
// that recognizes files beginning "AB\x00" as image/x-b.
func testMagic(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "magic")
	var buf []byte
	buf = append(buf, "MIME-Magic\x00\n"...)
	buf = append(buf, "[50:image/x-b]\n"...)
	buf = append(buf, ">0="...)
	buf = append(buf, 0x00, 0x03) // big-endian length 3
	buf = append(buf, 'A', 'B', 0x00)
	buf = append(buf, '\n')
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func writeGlobs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "globs")
	require.NoError(t, os.WriteFile(path, []byte(testGlobs), 0o644))
	return path
}

func openResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := Open(Options{GlobsPath: writeGlobs(t), MagicPath: testMagic(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestResolveBySuffix(t *testing.T) {
	r := openResolver(t)
	mime, ok := r.Resolve(context.Background(), "report.txt")
	require.True(t, ok)
	require.Equal(t, "text/plain", mime)
}

func TestResolveFallsThroughToMagicOnAmbiguousGlob(t *testing.T) {
	r := openResolver(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.dat")
	require.NoError(t, os.WriteFile(path, []byte("AB\x00rest"), 0o644))

	// name doubles as the openable path, matching the original library's
	// get_type(name), which opens name directly for magic sniffing.
	mime, ok := r.Resolve(context.Background(), path)
	require.True(t, ok)
	require.Equal(t, "image/x-b", mime)
}

func TestResolveNoMatch(t *testing.T) {
	r := openResolver(t)
	mime, ok := r.Resolve(context.Background(), "mystery.bin")
	require.False(t, ok)
	require.Empty(t, mime)
}

func TestOpenFailsWhenNeitherDatabaseExists(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(Options{
		GlobsPath: filepath.Join(dir, "nope-globs"),
		MagicPath: filepath.Join(dir, "nope-magic"),
	})
	require.Error(t, err)
}

func TestOpenDegradesGracefullyWithOnlyGlobs(t *testing.T) {
	r, err := Open(Options{GlobsPath: writeGlobs(t), MagicPath: filepath.Join(t.TempDir(), "nope")})
	require.NoError(t, err)
	defer r.Close()

	mime, ok := r.Resolve(context.Background(), "report.txt")
	require.True(t, ok)
	require.Equal(t, "text/plain", mime)
}

func TestReopenWithoutCloseFails(t *testing.T) {
	r := &Resolver{}
	_, err := r.open(Options{GlobsPath: writeGlobs(t)})
	require.NoError(t, err)

	_, err = r.open(Options{GlobsPath: writeGlobs(t)})
	require.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestResolveAfterCloseReturnsNoMatch(t *testing.T) {
	r := openResolver(t)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "Close must be idempotent")

	mime, ok := r.Resolve(context.Background(), "report.txt")
	require.False(t, ok)
	require.Empty(t, mime)
}
