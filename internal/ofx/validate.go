package ofx

import (
	"fmt"

	"github.com/extrato-dev/extrato/internal/model"
)

// ValidationError describes one statement invariant violation.
type ValidationError struct {
	Index       int // transaction position in the file
	ExternalID  string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("transaction %d [%s]: %s", e.Index, e.ExternalID, e.Description)
}

// Validate checks the invariants a parsed statement must hold before it is
// reconciled: non-empty, unique external ids and a credit or debit type.
func Validate(st *model.Statement) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int, len(st.Transactions))

	for i, t := range st.Transactions {
		if t.ExternalID == "" {
			errs = append(errs, ValidationError{
				Index:       i,
				Description: "empty external id",
			})
		} else if first, dup := seen[t.ExternalID]; dup {
			errs = append(errs, ValidationError{
				Index:       i,
				ExternalID:  t.ExternalID,
				Description: fmt.Sprintf("external id already used by transaction %d", first),
			})
		} else {
			seen[t.ExternalID] = i
		}

		if !t.Type.Valid() {
			errs = append(errs, ValidationError{
				Index:       i,
				ExternalID:  t.ExternalID,
				Description: fmt.Sprintf("invalid transaction type %q", t.Type),
			})
		}
	}
	return errs
}
