// Package id provides identifier generation for simulated resources.
// This is the canonical source for ID generation across the codebase.
package id

import (
	"crypto/rand"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// UUID generates a UUID v4 string. Used for job identifiers and any
// resource whose real-world counterpart uses opaque UUIDs.
func UUID() string {
	return uuid.NewString()
}

// alphaCharset matches the character class accepted by resource ID
// validation: letters and digits only.
const alphaCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Alphanumeric generates a random alphanumeric string of the given length.
func Alphanumeric(length int) string {
	b := make([]byte, length)
	randBytes := make([]byte, length)
	_, _ = rand.Read(randBytes)
	for i := range b {
		b[i] = alphaCharset[int(randBytes[i])%len(alphaCharset)]
	}
	return string(b)
}

// Prefixed generates an ID with the given prefix and an alphanumeric tail.
// Design-tool style resource IDs are produced this way (e.g. "DAF" + 8 chars).
func Prefixed(prefix string, tailLen int) string {
	return prefix + Alphanumeric(tailLen)
}

// Sequence issues monotonically increasing integer identifiers, rendered
// as decimal strings. Sourcing-platform resources use small sequential
// integers; the sequence is advanced past the highest ID present in seed
// data or a loaded snapshot.
type Sequence struct {
	mu   sync.Mutex
	next int
}

// NewSequence creates a sequence whose first issued value is start.
func NewSequence(start int) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() string {
	return strconv.Itoa(s.NextInt())
}

// NextInt returns the next identifier as an int.
func (s *Sequence) NextInt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.next
	s.next++
	return v
}

// Advance moves the sequence forward so the next issued value is at least
// floor+1.
func (s *Sequence) Advance(floor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next <= floor {
		s.next = floor + 1
	}
}
