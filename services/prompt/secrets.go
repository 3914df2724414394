package prompt

import (
	"regexp"
	"sort"
)

// SecretType names a family of credential
type SecretType string

const (
	SecretTypeAWSKey       SecretType = "aws_key"
	SecretTypeGCPKey       SecretType = "gcp_key"
	SecretTypeAIKey        SecretType = "ai_api_key"
	SecretTypeGitHubToken  SecretType = "github_token"
	SecretTypeSlackToken   SecretType = "slack_token"
	SecretTypeStripeKey    SecretType = "stripe_key"
	SecretTypePrivateKey   SecretType = "private_key"
	SecretTypeJWT          SecretType = "jwt"
	SecretTypeDatabaseURL  SecretType = "database_url"
	SecretTypeAssignedPass SecretType = "password"
)

// SecretMatch is one credential found in submitted code
type SecretMatch struct {
	Type  SecretType
	Start int
	End   int
}

type secretPattern struct {
	kind SecretType
	re   *regexp.Regexp
	// group is the submatch holding the secret; 0 means the whole match
	group int
}

// Patterns are anchored on vendor prefixes so ordinary identifiers in code do not match.
var secretPatterns = []secretPattern{
	{kind: SecretTypePrivateKey, re: regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----[\s\S]*?-----END (?:RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----`)},
	{kind: SecretTypeAWSKey, re: regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)},
	{kind: SecretTypeGCPKey, re: regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{35}\b`)},
	{kind: SecretTypeAIKey, re: regexp.MustCompile(`\bsk-(?:or-v1-|ant-|proj-)?[A-Za-z0-9_\-]{20,}\b`)},
	{kind: SecretTypeGitHubToken, re: regexp.MustCompile(`\b(?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36}\b|\bgithub_pat_[A-Za-z0-9_]{22,}\b`)},
	{kind: SecretTypeSlackToken, re: regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9\-]{10,}\b`)},
	{kind: SecretTypeStripeKey, re: regexp.MustCompile(`\b(?:sk|rk)_(?:live|test)_[A-Za-z0-9]{24,}\b`)},
	{kind: SecretTypeJWT, re: regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]{10,}\.eyJ[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]{10,}\b`)},
	{kind: SecretTypeDatabaseURL, re: regexp.MustCompile(`\b(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqp)://[^\s:/@'"]+:([^\s@'"]+)@`), group: 1},
	{kind: SecretTypeAssignedPass, re: regexp.MustCompile(`(?i)\b(?:password|passwd|pwd|secret)\s*[:=]\s*["']([^"'\s]{8,})["']`), group: 1},
}

// FindSecrets returns the credentials in text, ordered by position, without overlaps
func FindSecrets(text string) []SecretMatch {
	var matches []SecretMatch
	for _, p := range secretPatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[2*p.group], loc[2*p.group+1]
			if start < 0 {
				continue
			}
			matches = append(matches, SecretMatch{Type: p.kind, Start: start, End: end})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].End > matches[j].End
	})

	// keep the earliest, longest match of any overlapping run
	out := matches[:1]
	for _, m := range matches[1:] {
		if m.Start < out[len(out)-1].End {
			continue
		}
		out = append(out, m)
	}
	return out
}

// SecretTypes returns the distinct kinds among matches, sorted
func SecretTypes(matches []SecretMatch) []string {
	seen := make(map[SecretType]struct{}, len(matches))
	types := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Type]; ok {
			continue
		}
		seen[m.Type] = struct{}{}
		types = append(types, string(m.Type))
	}
	sort.Strings(types)
	return types
}

// RedactSecrets replaces every credential in text with a typed placeholder
func RedactSecrets(text string) (string, []SecretMatch) {
	matches := FindSecrets(text)
	if len(matches) == 0 {
		return text, nil
	}

	buf := make([]byte, 0, len(text))
	prev := 0
	for _, m := range matches {
		buf = append(buf, text[prev:m.Start]...)
		buf = append(buf, "[REDACTED_"...)
		buf = append(buf, m.Type...)
		buf = append(buf, ']')
		prev = m.End
	}
	buf = append(buf, text[prev:]...)
	return string(buf), matches
}
