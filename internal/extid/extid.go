// Package extid derives the external ids that deduplicate imported transactions.
package extid

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// payloadDateLayout formats "now" when a transaction has no DTPOSTED.
const payloadDateLayout = "20060102150405"

// Fields are the raw, untrimmed tag values an id is derived from.
// Empty means the tag was absent.
type Fields struct {
	FitID      string
	DatePosted string
	Amount     string
	Memo       string
}

// Allocator hands out external ids for the transactions of one statement file.
// It is not safe for concurrent use.
type Allocator struct {
	newUUID func() string
	now     func() time.Time
	seen    map[string]struct{}
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithUUID replaces the uuid source used for transactions without a FITID.
func WithUUID(fn func() string) Option {
	return func(a *Allocator) { a.newUUID = fn }
}

// WithClock replaces the clock used when DTPOSTED is missing.
func WithClock(fn func() time.Time) Option {
	return func(a *Allocator) { a.now = fn }
}

// NewAllocator returns an Allocator with an empty seen set.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		newUUID: uuid.NewString,
		now:     time.Now,
		seen:    make(map[string]struct{}),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Next returns the external id for f.
//
// The first transaction carrying a FITID keeps it verbatim. Later transactions
// with the same FITID get "<fitid>-<md5(date|amount|memo)>", and if that is
// taken too an occurrence counter "-2", "-3", ... is appended. Transactions
// without a FITID get "<uuid>-<md5(date|amount|memo)>".
func (a *Allocator) Next(f Fields) string {
	fitID := strings.TrimSpace(f.FitID)
	if fitID == "" {
		return a.claim(a.newUUID() + "-" + a.hash(f))
	}
	if !a.taken(fitID) {
		return a.claim(fitID)
	}
	return a.claim(fitID + "-" + a.hash(f))
}

// claim records id, appending an occurrence suffix until it is unused.
func (a *Allocator) claim(id string) string {
	candidate := id
	for n := 2; a.taken(candidate); n++ {
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	a.seen[candidate] = struct{}{}
	return candidate
}

func (a *Allocator) taken(id string) bool {
	_, ok := a.seen[id]
	return ok
}

func (a *Allocator) hash(f Fields) string {
	date := strings.TrimSpace(f.DatePosted)
	if date == "" {
		date = a.now().Format(payloadDateLayout)
	}
	amount := strings.TrimSpace(f.Amount)
	if amount == "" {
		amount = "0"
	}
	return MD5Hex(date + "|" + amount + "|" + strings.TrimSpace(f.Memo))
}

// FallbackAccountNumber is the account number used for files without ACCTID.
func FallbackAccountNumber(fileName string) string {
	return "ofx-" + MD5Hex(fileName)
}

// MD5Hex returns the lower-case hex md5 digest of s.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
