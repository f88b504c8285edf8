// Package sharedmime resolves a filename to a MIME type using the
// shared-mime-info algorithm: filename-glob matching first, content-based
// magic-byte matching as the fallback.
package sharedmime

import (
	"context"
	"os"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/mrclksr/go-sharedmime/internal/glob"
	"github.com/mrclksr/go-sharedmime/internal/magic"
	"github.com/mrclksr/go-sharedmime/internal/resolvelog"
	"github.com/mrclksr/go-sharedmime/internal/xdgpaths"
)

// ErrAlreadyOpen is returned when a Resolver that has already opened
// successfully is opened again; re-initializing without an intervening
// Close is not supported. Open always constructs a fresh Resolver, so it
// never returns this error itself.
var ErrAlreadyOpen = errors.New("sharedmime: resolver already open")

// ErrClosed names the state of a Resolver after Close. No method returns
// it: Resolve reports a closed Resolver as ("", false), and GlobRules and
// MagicSections return nil.
var ErrClosed = errors.New("sharedmime: resolver closed")

// Options configures a Resolver. GlobsPath and MagicPath, if set, override
// XDG discovery entirely; Locator is consulted only for the paths left
// unset.
type Options struct {
	GlobsPath string
	MagicPath string
	Locator   xdgpaths.Locator
}

// Resolver is a composite glob+magic MIME resolver. The zero value is not
// usable; construct one with Open.
type Resolver struct {
	mu     sync.Mutex
	opened bool
	closed bool

	globs *glob.Database
	magic *magic.Database
}

// Open locates and parses the globs and/or magic databases and returns a
// ready-to-use Resolver. A missing or unparsable database degrades
// gracefully: Open only fails if neither engine could be loaded. Each call
// returns a new Resolver.
func Open(opts Options) (*Resolver, error) {
	r := &Resolver{}
	return r.open(opts)
}

func (r *Resolver) open(opts Options) (*Resolver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opened {
		return nil, ErrAlreadyOpen
	}

	locator := opts.Locator
	if locator == nil {
		locator = xdgpaths.Default()
	}

	var errs *multierror.Error

	globsPath := opts.GlobsPath
	if globsPath == "" {
		globsPath = firstExisting(locator.GlobsCandidates())
	}
	if globsPath != "" {
		db, err := glob.Load(globsPath)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, "sharedmime: load globs"))
			resolvelog.Log.Warnf("could not load globs database %s: %s", globsPath, err)
		} else {
			r.globs = db
		}
	} else {
		resolvelog.Log.Warnf("no globs database found")
	}

	magicPath := opts.MagicPath
	if magicPath == "" {
		magicPath = firstExisting(locator.MagicCandidates())
	}
	if magicPath != "" {
		db, err := magic.Load(magicPath)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, "sharedmime: load magic"))
			resolvelog.Log.Warnf("could not load magic database %s: %s", magicPath, err)
		} else {
			r.magic = db
		}
	} else {
		resolvelog.Log.Warnf("no magic database found")
	}

	if r.globs == nil && r.magic == nil {
		if errs != nil {
			return nil, errs.ErrorOrNil()
		}
		return nil, errors.New("sharedmime: neither globs nor magic database available")
	}

	r.opened = true
	return r, nil
}

// firstExisting returns the first path in candidates that stat()s
// successfully, or "" if none do.
func firstExisting(candidates []string) string {
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Resolve tries case-sensitive glob matching, then case-insensitive glob
// matching, then magic content sniffing against name opened as a path;
// first success wins. It never returns an error for "no match" — callers
// cannot distinguish "no match" from an internal I/O failure on the
// subject file, which is deliberate; a failure to open the subject file is
// logged at warn level. ctx is checked once, before the subject file is
// opened for magic sniffing; the read itself is not interrupted, and ctx is
// not threaded into any goroutine since lookups stay synchronous.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, bool) {
	r.mu.Lock()
	closed := r.closed
	g := r.globs
	m := r.magic
	r.mu.Unlock()
	if closed {
		return "", false
	}

	if g != nil {
		if mime, ok := g.Lookup(name, false); ok {
			return mime, true
		}
		if mime, ok := g.Lookup(name, true); ok {
			return mime, true
		}
	}

	if m == nil {
		return "", false
	}
	select {
	case <-ctx.Done():
		return "", false
	default:
	}
	f, err := os.Open(name)
	if err != nil {
		resolvelog.Log.Warnf("sharedmime: could not open %s for magic sniffing: %s", name, err)
		return "", false
	}
	defer f.Close()
	return m.Lookup(f)
}

// GlobRules returns every parsed glob rule, for introspection and the
// mimeresolve --list command. It returns nil if no globs database loaded.
func (r *Resolver) GlobRules() []glob.Rule {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.globs == nil {
		return nil
	}
	return r.globs.Rules()
}

// MagicSections returns every parsed magic section, for introspection and
// the mimeresolve --list command. It returns nil if no magic database
// loaded.
func (r *Resolver) MagicSections() []magic.Section {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.magic == nil {
		return nil
	}
	return r.magic.Sections()
}

// Close releases the parsed databases. Close is idempotent; calling
// Resolve after Close returns ("", false) rather than panicking.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.globs = nil
	r.magic = nil
	return nil
}
