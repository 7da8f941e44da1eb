// Package export writes stored transactions as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/extrato-dev/extrato/internal/model"
)

// Header is the CSV header for a transaction export.
const Header = "date,description,amount,type,category,external_id,raw_type"

const (
	numFields  = 7
	dateFormat = time.DateTime
	colDate    = 0
	colDesc    = 1
	colAmount  = 2
	colType    = 3
	colCat     = 4
	colExtID   = 5
	colRawType = 6
)

// WriteTransactions writes txns with a header, dates shown in loc.
func WriteTransactions(w io.Writer, txns []model.BankTransaction, loc *time.Location) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t, loc)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a BankTransaction to a CSV row.
func MarshalTransaction(t model.BankTransaction, loc *time.Location) []string {
	row := make([]string, numFields)
	row[colDate] = t.OccurredAt.In(loc).Format(dateFormat)
	row[colDesc] = t.Description
	row[colAmount] = t.Amount.StringFixed(2)
	row[colType] = string(t.Type)
	row[colCat] = t.Category
	row[colExtID] = t.ExternalID
	row[colRawType] = t.RawType
	return row
}
