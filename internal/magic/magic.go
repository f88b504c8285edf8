// Package magic implements the content-sniffing half of the shared-mime-info
// resolution algorithm: a binary rules file compiled into an indented tree
// of byte-pattern predicates, evaluated against a file's bytes in section
// order.
package magic

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// magicPrefix is the fixed 12-byte header every rules file must open with.
const magicPrefix = "MIME-Magic\x00\n"

const (
	defaultRange    = 1
	defaultWordSize = 1
)

// Record is one byte-match predicate in a section's indent tree.
type Record struct {
	Indent   uint8
	Offset   uint32
	Value    []byte
	Mask     []byte // nil means "no mask" (all bits significant)
	Range    uint32 // number of successive start positions to try
	WordSize uint8  // parsed, never consulted (see design notes)
}

// Section is a prioritized, ordered list of records that together decide
// one candidate MIME type.
type Section struct {
	MIME     string
	Priority uint16
	Records  []Record
}

// Database holds every section parsed from one magic rules file, in the
// order they appeared — the order whole-file lookup relies on.
type Database struct {
	sections []Section
}

// Sections returns every parsed section, in file order, for introspection.
func (db *Database) Sections() []Section {
	out := make([]Section, len(db.sections))
	copy(out, db.sections)
	return out
}

// Load parses a magic rules file at path.
func Load(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "magic: open %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse parses a magic rules file from r. A magic prefix mismatch is the
// one fatal parse error; malformed records are skipped and parsing
// resynchronizes at the next line.
func Parse(r io.Reader) (*Database, error) {
	p := newParser(r)
	if err := p.readPrefix(); err != nil {
		return nil, err
	}
	db := &Database{}
	for {
		item, err := p.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed record: already resynchronized onto the next
			// line by next(); keep parsing the rest of the database.
			continue
		}
		switch v := item.(type) {
		case sectionHeader:
			db.sections = append(db.sections, Section{MIME: v.mime, Priority: v.priority})
		case Record:
			if len(db.sections) == 0 {
				// A record before any header is not addressable to a
				// MIME type; drop it rather than inventing one.
				continue
			}
			last := &db.sections[len(db.sections)-1]
			last.Records = append(last.Records, v)
		}
	}
	return db, nil
}

// Lookup evaluates every section in file order against r and returns the
// MIME type of the first section whose indent tree accepts. Priority is
// parsed but never used to reorder sections; matching order is file order.
func (db *Database) Lookup(r io.ReaderAt) (string, bool) {
	for _, sec := range db.sections {
		if sectionMatches(sec, r) {
			return sec.MIME, true
		}
	}
	return "", false
}
