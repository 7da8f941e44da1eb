package ofx

import (
	"regexp"
	"strings"
)

var (
	stmtTrnBlock = regexp.MustCompile(`(?is)<STMTTRN>(.*?)</STMTTRN>`)
	stmtTrnOpen  = regexp.MustCompile(`(?i)<STMTTRN>`)
	cardMarker   = regexp.MustCompile(`(?i)<CCACCTFROM>|<CCSTMTRS>`)
	stmtMarker   = regexp.MustCompile(`(?i)<STMTRS>|<CCSTMTRS>`)
)

// tagPatterns holds one "<TAG>value" matcher per tag the fallback reads.
// The closing tag is optional so SGML leaf elements match too.
var tagPatterns = func() map[string]*regexp.Regexp {
	tags := []string{
		"ACCTID", "ACCTTYPE", "BANKID", "ORG", "CURDEF",
		"TRNTYPE", "DTPOSTED", "TRNAMT", "FITID", "MEMO",
	}
	m := make(map[string]*regexp.Regexp, len(tags))
	for _, t := range tags {
		m[t] = regexp.MustCompile(`(?i)<` + t + `>([^<]*)`)
	}
	return m
}()

// extractPatterns pulls statement fields out of content with targeted
// regular expressions. It needs nothing to be well-formed, only an ACCTID
// or a statement block marker; without an ACCTID the number stays empty.
func extractPatterns(content string) (*rawStatement, error) {
	acctID := tagValue(content, "ACCTID")
	if acctID == "" && !stmtMarker.MatchString(content) {
		return nil, errNoMatch
	}

	raw := &rawStatement{
		Card:        cardMarker.MatchString(content),
		AcctID:      acctID,
		AcctType:    tagValue(content, "ACCTTYPE"),
		BankID:      tagValue(content, "BANKID"),
		Institution: tagValue(content, "ORG"),
		Currency:    tagValue(content, "CURDEF"),
	}
	for _, block := range transactionBlocks(content) {
		raw.Txns = append(raw.Txns, rawTransaction{
			TrnType:  tagValue(block, "TRNTYPE"),
			DtPosted: tagValue(block, "DTPOSTED"),
			TrnAmt:   tagValue(block, "TRNAMT"),
			FitID:    tagValue(block, "FITID"),
			Memo:     tagValue(block, "MEMO"),
		})
	}
	return raw, nil
}

// transactionBlocks returns the body of each STMTTRN. Files that never close
// STMTTRN are split on the opening tag instead.
func transactionBlocks(content string) []string {
	var blocks []string
	for _, m := range stmtTrnBlock.FindAllStringSubmatch(content, -1) {
		blocks = append(blocks, m[1])
	}
	if len(blocks) > 0 {
		return blocks
	}
	parts := stmtTrnOpen.Split(content, -1)
	if len(parts) < 2 {
		return nil
	}
	return parts[1:]
}

func tagValue(content, tag string) string {
	m := tagPatterns[tag].FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return decodeEntities(strings.TrimSpace(m[1]))
}
