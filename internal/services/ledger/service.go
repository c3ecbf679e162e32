// Package ledger moves money between user aggregate accounts and their
// sub-accounts and answers read queries over the committed ledger.
//
// Every mutating call runs in one storage unit. Each balance change is paired
// with exactly one history record, and the unit either commits all of them or
// none.
package ledger

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
	"github.com/fastprodman/ledger/internal/storage"
)

// Accepted amount range, in the smallest currency unit.
const (
	MinAmount int64 = 100
	MaxAmount int64 = 2_000_000_000
)

// Actor is the authenticated caller. Admins may read any owner's accounts.
type Actor struct {
	Name  string
	Admin bool
}

// Requester is the request metadata copied into history records.
type Requester struct {
	IP        string
	Location  string
	UserAgent string
}

// Receipt lists the updated accounts and the created records in the order
// the mutations were applied.
type Receipt struct {
	Accounts []accounts.Account
	Records  []history.Record
}

// UserAccountDetails is a user aggregate with its sub-accounts.
type UserAccountDetails struct {
	Account     accounts.Account
	SubAccounts []accounts.Account
}

type Service struct {
	store   storage.Store
	now     func() time.Time
	loc     *time.Location
	logger  *slog.Logger
	newCode func(owner string) string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone date filters are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCodeGenerator replaces the sub-account code generator.
func WithCodeGenerator(gen func(owner string) string) Option {
	return func(s *Service) { s.newCode = gen }
}

func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		now:     time.Now,
		loc:     time.UTC,
		logger:  slog.Default(),
		newCode: NewSubAccountCode,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewSubAccountCode returns owner followed by four upper-case hex characters
// of a random UUID.
func NewSubAccountCode(owner string) string {
	return owner + "_" + strings.ToUpper(uuid.NewString()[:4])
}

// Location is the time zone date filters are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}
