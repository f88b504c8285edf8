// Package xdgpaths locates shared-mime-info database files the way the
// original library did: a fixed system prefix first, then the user's XDG
// data directory, stopping as soon as both a globs and a magic file have
// been found.
package xdgpaths

import (
	"path/filepath"

	"github.com/MatthiasKunnen/xdg/basedir"
)

// systemPrefix mirrors PATH_MIMEPREFIX from the original implementation:
// the system-wide shared-mime-info install location.
const systemPrefix = "/usr/share"

const (
	globsRelPath = "mime/globs"
	magicRelPath = "mime/magic"
)

// Locator yields, in priority order, the candidate paths to try for the
// globs and magic databases. Resolver.Open stops at the first candidate of
// each kind that exists.
type Locator interface {
	GlobsCandidates() []string
	MagicCandidates() []string
}

// osLocator reproduces dsbmime_init's base directory list: the system
// prefix, then $XDG_DATA_HOME (or ~/.local/share), in that order.
type osLocator struct{}

// Default returns the Locator used outside of tests: the system prefix
// followed by the caller's XDG data home, via
// github.com/MatthiasKunnen/xdg/basedir.
func Default() Locator {
	return osLocator{}
}

func (osLocator) GlobsCandidates() []string {
	return baseDirs(globsRelPath)
}

func (osLocator) MagicCandidates() []string {
	return baseDirs(magicRelPath)
}

func baseDirs(relPath string) []string {
	return []string{
		filepath.Join(systemPrefix, relPath),
		filepath.Join(basedir.DataHome, relPath),
	}
}

// Fixed is a Locator for tests and callers that already know exactly which
// files to read, bypassing XDG discovery entirely.
type Fixed struct {
	Globs []string
	Magic []string
}

func (f Fixed) GlobsCandidates() []string { return f.Globs }
func (f Fixed) MagicCandidates() []string { return f.Magic }
