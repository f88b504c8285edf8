package magic

import "io"

// sectionMatches decides whether sec's indent tree accepts r, following the
// original implementation's linear preorder scan (magic_match_record in
// magic.c): a section matches when the scan reaches a succeeding record
// with no deeper-indented successor, i.e. the end of a root-to-leaf path
// whose records all succeeded along the way. A record's children start
// immediately after it and are recognized by a strictly greater Indent; a
// sibling or an ancestor's sibling shares or reduces the Indent.
//
// The check on failure only ever looks at the immediate next record: if it
// is indented under the one that just failed, the whole section fails
// right there, even when a later, less-indented record would have matched;
// the failed parent's subtree is never skipped to try such a record.
func sectionMatches(sec Section, r io.ReaderAt) bool {
	records := sec.Records
	for i := 0; i < len(records); i++ {
		hasNext := i+1 < len(records)
		if recordMatches(records[i], r) {
			// Nothing indented under this record means it's a leaf: the
			// path to here is a full accept.
			if !hasNext || records[i+1].Indent <= records[i].Indent {
				return true
			}
			continue // descend into the first child
		}
		// This record failed. If the next record is its child, that
		// child can't rescue a failed parent, so the whole section fails.
		if hasNext && records[i+1].Indent > records[i].Indent {
			return false
		}
		// Otherwise the next record is a sibling or ancestor's sibling;
		// try it as an alternative.
	}
	return false
}

// recordMatches tries every start position in [Offset, Offset+Range) and
// accepts on the first one whose bytes equal Value under Mask.
func recordMatches(rec Record, r io.ReaderAt) bool {
	n := len(rec.Value)
	if n == 0 {
		return true
	}
	buf := make([]byte, n)
	for s := uint32(0); s < rec.Range; s++ {
		off := int64(rec.Offset) + int64(s)
		read, err := r.ReadAt(buf, off)
		if read < n {
			if err == io.EOF || err != nil {
				continue
			}
		}
		if bytesEqualMasked(buf, rec.Value, rec.Mask) {
			return true
		}
	}
	return false
}

func bytesEqualMasked(file, value, mask []byte) bool {
	for i := range value {
		fb, vb := file[i], value[i]
		if mask != nil {
			m := mask[i]
			fb &= m
			vb &= m
		}
		if fb != vb {
			return false
		}
	}
	return true
}
