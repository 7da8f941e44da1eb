package ofx

import "errors"

var (
	// ErrMalformedDocument means no parse strategy could make sense of the file.
	ErrMalformedDocument = errors.New("malformed OFX document")

	// ErrMissingStatement means the document parsed but holds neither a bank
	// nor a credit-card statement block.
	ErrMissingStatement = errors.New("OFX document has no bank or credit card statement")

	// errNoMatch tells the pipeline to try the next strategy.
	errNoMatch = errors.New("strategy did not match")
)
