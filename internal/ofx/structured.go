package ofx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// rawStatement is what every strategy extracts before field interpretation.
// An empty string means the tag was absent.
type rawStatement struct {
	Card        bool
	AcctID      string
	AcctType    string
	BankID      string
	Institution string
	Currency    string
	Txns        []rawTransaction
}

type rawTransaction struct {
	TrnType  string `xml:"TRNTYPE"`
	DtPosted string `xml:"DTPOSTED"`
	TrnAmt   string `xml:"TRNAMT"`
	FitID    string `xml:"FITID"`
	Memo     string `xml:"MEMO"`
}

type xmlDocument struct {
	XMLName xml.Name      `xml:"OFX"`
	Org     string        `xml:"SIGNONMSGSRSV1>SONRS>FI>ORG"`
	Bank    *xmlStatement `xml:"BANKMSGSRSV1>STMTTRNRS>STMTRS"`
	Card    *xmlStatement `xml:"CREDITCARDMSGSRSV1>CCSTMTTRNRS>CCSTMTRS"`
}

type xmlStatement struct {
	CurDef       string           `xml:"CURDEF"`
	BankAccount  *xmlAccount      `xml:"BANKACCTFROM"`
	CardAccount  *xmlAccount      `xml:"CCACCTFROM"`
	Transactions []rawTransaction `xml:"BANKTRANLIST>STMTTRN"`
}

type xmlAccount struct {
	AcctID   string `xml:"ACCTID"`
	AcctType string `xml:"ACCTTYPE"`
	BankID   string `xml:"BANKID"`
}

// decodeStructured reads content as XML. Strict decoding needs a well-formed
// document. Lenient decoding closes an element when a mismatched end tag
// arrives, so SGML leaves the repair could not close (an empty "<MEMO>")
// still yield their statement. Unreadable input yields errNoMatch, and so
// does a lenient decode that finds no statement block.
func decodeStructured(content string, strict bool) (*rawStatement, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = strict
	dec.Entity = xml.HTMLEntity

	var doc xmlDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errNoMatch, err)
	}

	stmt, card := doc.Bank, false
	if stmt == nil {
		stmt, card = doc.Card, true
	}
	if stmt == nil {
		if !strict {
			return nil, errNoMatch
		}
		return nil, ErrMissingStatement
	}

	raw := &rawStatement{
		Card:        card,
		Institution: doc.Org,
		Currency:    stmt.CurDef,
	}
	acct := stmt.BankAccount
	if acct == nil {
		acct = stmt.CardAccount
	}
	if acct != nil {
		raw.AcctID = acct.AcctID
		raw.AcctType = acct.AcctType
		raw.BankID = acct.BankID
	}
	raw.Txns = stmt.Transactions
	return raw, nil
}
