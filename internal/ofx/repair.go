package ofx

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
)

var (
	envelopeStart = regexp.MustCompile(`(?i)<OFX`)

	// entityRef matches the shape of a character or entity reference.
	entityRef = regexp.MustCompile(`^&(#[0-9]+|#x[0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)

	// openOnlyLine matches an SGML leaf element with no closing tag, e.g. "<TRNAMT>-10.00".
	openOnlyLine = regexp.MustCompile(`^<([A-Za-z0-9_.]+)>([^<]+)$`)
)

// maxEntityLen bounds how far past an ampersand we look for the terminating ';'.
const maxEntityLen = 32

// locateEnvelope drops everything before the first case-insensitive "<OFX".
func locateEnvelope(text string) (string, bool) {
	loc := envelopeStart.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:], true
}

var predefinedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// entityValue resolves the body of a reference ("eacute", "#233", "#xE9").
// Known names are the XML predefined entities plus xml.HTMLEntity, the set
// the structured decoder is given.
func entityValue(name string) (string, bool) {
	if v, ok := predefinedEntities[name]; ok {
		return v, true
	}
	if v, ok := xml.HTMLEntity[name]; ok {
		return v, true
	}
	if !strings.HasPrefix(name, "#") {
		return "", false
	}
	digits, base := name[1:], 10
	if strings.HasPrefix(digits, "x") {
		digits, base = digits[1:], 16
	}
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil || !isXMLChar(rune(n)) {
		return "", false
	}
	return string(rune(n)), true
}

// isXMLChar reports whether r may appear in an XML document.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// refAt returns the reference starting at s[0] and its value, if it is one
// entityValue knows.
func refAt(s string) (ref, value string, ok bool) {
	m := entityRef.FindStringSubmatch(s[:min(len(s), maxEntityLen)])
	if m == nil {
		return "", "", false
	}
	value, ok = entityValue(m[1])
	return m[0], value, ok
}

// escapeEntities rewrites every '&' that does not start a known reference
// as "&amp;".
func escapeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			b.WriteByte(s[i])
			continue
		}
		if _, _, ok := refAt(s[i:]); ok {
			b.WriteByte('&')
		} else {
			b.WriteString("&amp;")
		}
	}
	return b.String()
}

// decodeEntities replaces known references with their values and leaves
// everything else as is, matching what the structured decoder yields for
// escaped content.
func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '&' {
			if ref, value, ok := refAt(s[i:]); ok {
				b.WriteString(value)
				i += len(ref) - 1
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitTags puts adjacent tags on their own lines.
func splitTags(s string) string {
	return strings.ReplaceAll(s, "><", ">\n<")
}

// closeTags trims every line and closes SGML leaf elements:
// "<MEMO> Padaria " becomes "<MEMO>Padaria</MEMO>".
func closeTags(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if m := openOnlyLine.FindStringSubmatch(line); m != nil {
			line = "<" + m[1] + ">" + strings.TrimSpace(m[2]) + "</" + m[1] + ">"
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
