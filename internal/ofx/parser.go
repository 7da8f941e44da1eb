// Package ofx parses OFX bank and credit card statements, including the
// malformed SGML and XML variants Brazilian banks export.
package ofx

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/extrato-dev/extrato/internal/extid"
	"github.com/extrato-dev/extrato/internal/model"
)

// creditTypes are the TRNTYPE values booked as credit; everything else is a debit.
// OTHER counts as credit regardless of the amount sign.
var creditTypes = map[string]bool{
	"credit":    true,
	"dep":       true,
	"directdep": true,
	"div":       true,
	"int":       true,
	"other":     true,
}

// Parser turns OFX content into a model.Statement.
type Parser struct {
	loc      *time.Location
	currency string
	now      func() time.Time
	newUUID  func() string
}

// Option configures a Parser.
type Option func(*Parser)

// WithLocation sets the zone dates are converted to. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) { p.loc = loc }
}

// WithDefaultCurrency sets the currency used when CURDEF is missing.
func WithDefaultCurrency(code string) Option {
	return func(p *Parser) { p.currency = code }
}

// WithClock sets the clock used for missing or unreadable dates.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithUUID sets the uuid source for transactions without FITID.
func WithUUID(fn func() string) Option {
	return func(p *Parser) { p.newUUID = fn }
}

// NewParser returns a Parser with the given options applied.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		loc:      time.UTC,
		currency: model.DefaultCurrency,
		now:      time.Now,
		newUUID:  uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Format returns the parser name.
func (p *Parser) Format() string { return "ofx" }

// Parse reads an entire OFX file from r.
func (p *Parser) Parse(r io.Reader) (*model.Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading OFX: %w", err)
	}
	return p.ParseBytes(content)
}

type strategy struct {
	name string
	run  func() (*rawStatement, error)
}

// ParseBytes parses content, trying progressively more lenient strategies:
// strict XML on the repaired document, strict XML without entity repair,
// recovering XML on the repaired document, then tag pattern matching on the
// repaired and the raw document.
func (p *Parser) ParseBytes(content []byte) (*model.Statement, error) {
	text, err := decodeText(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	envelope, ok := locateEnvelope(text)
	if !ok {
		return nil, ErrMalformedDocument
	}

	repaired := closeTags(splitTags(escapeEntities(envelope)))
	plain := closeTags(splitTags(envelope))

	strategies := []strategy{
		{"xml", func() (*rawStatement, error) { return decodeStructured(repaired, true) }},
		{"xml-unescaped", func() (*rawStatement, error) { return decodeStructured(plain, true) }},
		{"xml-lenient", func() (*rawStatement, error) { return decodeStructured(repaired, false) }},
		{"patterns", func() (*rawStatement, error) { return extractPatterns(repaired) }},
		{"patterns-raw", func() (*rawStatement, error) { return extractPatterns(envelope) }},
	}
	for _, s := range strategies {
		raw, err := s.run()
		if errors.Is(err, errNoMatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return p.build(raw), nil
	}
	return nil, ErrMalformedDocument
}

func (p *Parser) build(raw *rawStatement) *model.Statement {
	acct := model.StatementAccount{
		Number:      strings.TrimSpace(raw.AcctID),
		Type:        accountType(raw.AcctType, raw.Card),
		BankID:      strings.TrimSpace(raw.BankID),
		Institution: strings.TrimSpace(raw.Institution),
		Currency:    strings.TrimSpace(raw.Currency),
	}
	if acct.Currency == "" {
		acct.Currency = p.currency
	}
	if acct.Number != "" {
		acct.DisplayName = "Conta " + acct.Number
	}

	ids := extid.NewAllocator(extid.WithUUID(p.newUUID), extid.WithClock(p.now))
	txns := make([]model.StatementTransaction, 0, len(raw.Txns))
	for _, t := range raw.Txns {
		rawType := strings.ToLower(strings.TrimSpace(t.TrnType))
		if rawType == "" {
			rawType = string(model.TransactionDebit)
		}
		desc := strings.TrimSpace(t.Memo)
		if desc == "" {
			desc = model.DefaultDescription
		}
		txns = append(txns, model.StatementTransaction{
			RawType:     rawType,
			Type:        transactionType(rawType),
			Amount:      parseAmount(t.TrnAmt),
			Description: desc,
			ExternalID: ids.Next(extid.Fields{
				FitID:      t.FitID,
				DatePosted: t.DtPosted,
				Amount:     t.TrnAmt,
				Memo:       t.Memo,
			}),
			OccurredAt: p.parseDate(t.DtPosted),
		})
	}
	return &model.Statement{Account: acct, Transactions: txns}
}

func transactionType(rawType string) model.TransactionType {
	if creditTypes[rawType] {
		return model.TransactionCredit
	}
	return model.TransactionDebit
}

func accountType(raw string, card bool) model.AccountType {
	if strings.TrimSpace(raw) == "" {
		if card {
			return model.AccountTypeCredit
		}
		return model.AccountTypeChecking
	}
	t, _ := model.ParseAccountType(raw)
	return t
}

// parseAmount reads TRNAMT, accepting a comma decimal separator when no dot
// is present. Unreadable amounts are zero.
func parseAmount(raw string) decimal.Decimal {
	v := strings.TrimSpace(raw)
	if v == "" {
		return decimal.Zero
	}
	if strings.Contains(v, ",") && !strings.Contains(v, ".") {
		v = strings.Replace(v, ",", ".", 1)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}
