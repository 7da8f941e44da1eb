package ofx

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// charsetHeader finds the SGML "CHARSET:" header or an XML encoding attribute.
var charsetHeader = regexp.MustCompile(`(?i)(?:CHARSET:\s*|encoding\s*=\s*["'])([A-Za-z0-9_.:-]+)`)

// Names banks put in CHARSET that the IANA index does not know.
var charsetAliases = map[string]encoding.Encoding{
	"1252":   charmap.Windows1252,
	"cp1252": charmap.Windows1252,
	"8859-1": charmap.ISO8859_1,
	"latin1": charmap.ISO8859_1,
}

// decodeText returns content as UTF-8. Content that already is valid UTF-8
// is returned unchanged whatever the header claims.
func decodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	enc := headerEncoding(content)
	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("decoding statement text: %w", err)
	}
	return string(out), nil
}

// headerEncoding picks the decoder named by the file header, defaulting to Windows-1252.
func headerEncoding(content []byte) encoding.Encoding {
	m := charsetHeader.FindSubmatch(content)
	if m == nil {
		return charmap.Windows1252
	}
	name := strings.ToLower(string(m[1]))
	if enc, ok := charsetAliases[name]; ok {
		return enc
	}
	// The bytes already failed UTF-8 validation, so a UTF-8 label is wrong.
	if name == "utf-8" || name == "utf8" {
		return charmap.Windows1252
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return charmap.Windows1252
	}
	return enc
}
