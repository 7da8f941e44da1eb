package ofx

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	timestampLayout = "20060102150405"
	dateLayout      = "20060102"
)

var (
	timestampPrefix = regexp.MustCompile(`^\d{14}`)
	datePrefix      = regexp.MustCompile(`^\d{8}`)
)

// parseDate reads DTPOSTED. Digit prefixes are UTC; any "[-3:BRT]" style
// suffix is ignored. Unreadable values fall back to now.
func (p *Parser) parseDate(raw string) time.Time {
	v := strings.TrimSpace(raw)
	if v == "" {
		return p.now().In(p.loc)
	}
	if m := timestampPrefix.FindString(v); m != "" {
		if t, err := time.ParseInLocation(timestampLayout, m, time.UTC); err == nil {
			return t.In(p.loc)
		}
	}
	if m := datePrefix.FindString(v); m != "" {
		if t, err := time.ParseInLocation(dateLayout, m, time.UTC); err == nil {
			return t.In(p.loc)
		}
	}
	if t, err := dateparse.ParseIn(v, p.loc); err == nil {
		return t.In(p.loc)
	}
	return p.now().In(p.loc)
}
