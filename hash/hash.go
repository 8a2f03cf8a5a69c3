// Package hash fingerprints unit source files and reads the per-root
// ledger that freezes released interfaces.
//
// A ledger file (ledger.txt at a package root) holds one line per frozen
// unit: the lowercase hex digest, whitespace, the fully-qualified name.
// Blank lines and #-comments are allowed. A unit may appear on several
// lines; any listed digest is acceptable.
package hash

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/openifc/idlgen/errors"
	"github.com/openifc/idlgen/fqname"
)

// LedgerFilename is the well-known ledger name at a package root.
const LedgerFilename = "ledger.txt"

// Digest returns the lowercase hex SHA-256 of content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Ledger is a parsed ledger file.
type Ledger struct {
	digests map[string][]string
}

// EmptyLedger is what a root without a ledger file yields: nothing is
// frozen, everything passes.
func EmptyLedger() *Ledger {
	return &Ledger{digests: map[string][]string{}}
}

// ParseLedger parses ledger file content. filename is used in
// diagnostics only.
func ParseLedger(filename string, content []byte) (*Ledger, error) {
	ledger := EmptyLedger()

	scanner := bufio.NewScanner(bytes.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.Mark(
				errors.Newf("%s:%d: ledger lines are '<digest> <fqname>'", filename, lineNo),
				errors.ErrParse)
		}
		digest, name := fields[0], fields[1]
		if !validDigest(digest) {
			return nil, errors.Mark(
				errors.Newf("%s:%d: malformed digest %q", filename, lineNo, digest),
				errors.ErrParse)
		}
		fqn, err := fqname.Parse(name)
		if err != nil || !fqn.IsFullyQualified() {
			return nil, errors.Mark(
				errors.Newf("%s:%d: malformed unit name %q", filename, lineNo, name),
				errors.ErrParse)
		}

		key := fqn.String()
		ledger.digests[key] = append(ledger.digests[key], digest)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}

	return ledger, nil
}

func validDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// Frozen reports whether the ledger pins any digests for fqn.
func (l *Ledger) Frozen(fqn fqname.FQName) bool {
	return len(l.digests[fqn.String()]) > 0
}

// Matches reports whether digest is acceptable for fqn. Units the ledger
// does not mention accept anything.
func (l *Ledger) Matches(fqn fqname.FQName, digest string) bool {
	pinned := l.digests[fqn.String()]
	if len(pinned) == 0 {
		return true
	}
	for _, d := range pinned {
		if d == digest {
			return true
		}
	}
	return false
}

// Digests returns the pinned digests for fqn, nil when unpinned.
func (l *Ledger) Digests(fqn fqname.FQName) []string {
	return l.digests[fqn.String()]
}
