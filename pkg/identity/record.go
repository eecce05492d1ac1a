// Package identity normalizes developer (name, email) records into the
// comparable form used by the similarity heuristics.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrMalformedRecord is the sentinel wrapped by every MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed developer record")

// MalformedRecordError reports a developer record that cannot be normalized.
type MalformedRecordError struct {
	Record DeveloperRecord
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s %q <%s>: %s", ErrMalformedRecord, e.Record.Name, e.Record.Email, e.Reason)
}

// Unwrap returns ErrMalformedRecord.
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// DeveloperRecord is one unique (name, email) pair mined from commit history.
type DeveloperRecord struct {
	Name  string
	Email string
}

// RecordFromRow builds a DeveloperRecord from a devs table row (name, email).
func RecordFromRow(row []string) (DeveloperRecord, error) {
	const fields = 2

	if len(row) < fields {
		rec := DeveloperRecord{}
		if len(row) == 1 {
			rec.Name = row[0]
		}

		return rec, &MalformedRecordError{Record: rec, Reason: fmt.Sprintf("expected %d fields, got %d", fields, len(row))}
	}

	return DeveloperRecord{Name: row[0], Email: row[1]}, nil
}

// Row returns the record as a devs table row.
func (r DeveloperRecord) Row() []string {
	return []string{r.Name, r.Email}
}

// Identity is the normalized, comparable form of a DeveloperRecord.
type Identity struct {
	Folded       string
	First        string
	Last         string
	InitialFirst string
	InitialLast  string
	LocalPart    string
}

// asciiPunctuation mirrors the classic ASCII punctuation set, which also
// contains characters Unicode classifies as symbols ($+<=>^`|~).
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func isPunctuation(r rune) bool {
	return strings.ContainsRune(asciiPunctuation, r) || unicode.IsPunct(r)
}

// foldChain builds the name folding transformer. Transformers keep state, so
// every call gets a fresh chain. Punctuation is removed again after NFKD
// because compatibility forms such as "℅" or "⑴" decompose into it.
func foldChain() transform.Transformer {
	return transform.Chain(
		runes.Remove(runes.Predicate(isPunctuation)),
		norm.NFKD,
		runes.Remove(runes.Predicate(isPunctuation)),
		runes.Remove(runes.In(unicode.Mn)),
		cases.Fold(),
	)
}

// FoldName strips punctuation and diacritics, case-folds, and collapses
// whitespace runs to single spaces.
func FoldName(name string) string {
	folded, _, err := transform.String(foldChain(), name)
	if err != nil {
		// Only invalid transformer state can fail here; fall back to the raw name.
		folded = name
	}

	return strings.Join(strings.Fields(folded), " ")
}

// SplitName splits a folded name at its first space. A name without spaces
// is all first name.
func SplitName(folded string) (first, last string) {
	first, last, _ = strings.Cut(folded, " ")

	return first, last
}

// initial returns the first rune of part, or "" when part has at most one rune.
func initial(part string) string {
	if utf8.RuneCountInString(part) <= 1 {
		return ""
	}

	r, _ := utf8.DecodeRuneInString(part)

	return string(r)
}

// LocalPart returns the email text before the first '@'.
func LocalPart(email string) (string, bool) {
	local, _, found := strings.Cut(email, "@")

	return local, found
}

// Normalize converts a record into its comparable Identity.
func Normalize(rec DeveloperRecord) (Identity, error) {
	local, ok := LocalPart(rec.Email)
	if !ok {
		return Identity{}, &MalformedRecordError{Record: rec, Reason: "email has no '@'"}
	}

	folded := FoldName(rec.Name)
	first, last := SplitName(folded)

	return Identity{
		Folded:       folded,
		First:        first,
		Last:         last,
		InitialFirst: initial(first),
		InitialLast:  initial(last),
		LocalPart:    local,
	}, nil
}

// NormalizeAll normalizes records in order and stops at the first malformed one.
func NormalizeAll(recs []DeveloperRecord) ([]Identity, error) {
	out := make([]Identity, len(recs))

	for i, rec := range recs {
		id, err := Normalize(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		out[i] = id
	}

	return out, nil
}
