package features

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var urlSuspiciousKeywords = []string{
	"secure", "account", "update", "verify", "confirm", "login",
	"bank", "paypal", "amazon", "apple", "microsoft", "google",
	"facebook", "twitter", "instagram", "linkedin", "netflix",
	"suspicious", "phishing", "scam", "fraud", "fake",
}

var suspiciousTLDs = map[string]bool{
	".tk": true, ".ml": true, ".ga": true, ".cf": true,
	".click": true, ".download": true, ".review": true,
}

var urlShorteners = []string{"bit.ly", "tinyurl", "goo.gl", "t.co", "ow.ly", "short.link"}

const specialChars = "!@#$%^&*()+=[]{}|;:,.<>?"

var dottedQuad = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// URLExtractor computes lexical features of a raw URL string.
type URLExtractor struct{}

func NewURLExtractor() *URLExtractor {
	return &URLExtractor{}
}

// Extract never fails: components it cannot parse contribute zeros.
func (e *URLExtractor) Extract(raw string) *Set {
	s := NewSet()
	e.basic(raw, s)

	parts, ok := splitURL(raw)
	if !ok {
		for _, name := range []string{
			"domain_length", "num_subdomains", "has_ip", "has_https", "tld_length", "suspicious_tld",
			"path_length", "num_directories", "has_file_extension", "suspicious_path_keywords",
			"query_length", "num_params", "suspicious_query_keywords",
		} {
			s.Put(name, 0)
		}
	} else {
		e.domain(parts, s)
		e.path(parts.path, s)
		e.query(parts.query, s)
	}

	e.suspicious(raw, s)
	return s
}

func (e *URLExtractor) basic(raw string, s *Set) {
	var digits, special int
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits++
		}
		if strings.ContainsRune(specialChars, r) {
			special++
		}
	}
	s.Put("url_length", float64(utf8.RuneCountInString(raw)))
	s.Put("num_dots", float64(strings.Count(raw, ".")))
	s.Put("num_hyphens", float64(strings.Count(raw, "-")))
	s.Put("num_underscores", float64(strings.Count(raw, "_")))
	s.Put("num_slashes", float64(strings.Count(raw, "/")))
	s.Put("num_digits", float64(digits))
	s.Put("num_special_chars", float64(special))
}

func (e *URLExtractor) domain(p urlParts, s *Set) {
	host := strings.ToLower(p.netloc)
	tld := ""
	if strings.Contains(host, ".") {
		labels := strings.Split(host, ".")
		tld = labels[len(labels)-1]
	}

	s.Put("domain_length", float64(utf8.RuneCountInString(host)))
	s.Put("num_subdomains", float64(len(strings.Split(host, "."))-2))
	s.PutBool("has_ip", dottedQuad.MatchString(host))
	s.PutBool("has_https", p.scheme == "https")
	s.Put("tld_length", float64(utf8.RuneCountInString(tld)))
	s.PutBool("suspicious_tld", suspiciousTLDs["."+tld])
}

func (e *URLExtractor) path(path string, s *Set) {
	segments := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments++
		}
	}
	last := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		last = path[i+1:]
	}

	s.Put("path_length", float64(utf8.RuneCountInString(path)))
	s.Put("num_directories", float64(segments))
	s.PutBool("has_file_extension", strings.Contains(last, "."))
	s.Put("suspicious_path_keywords", float64(countKeywords(strings.ToLower(path), urlSuspiciousKeywords)))
}

func (e *URLExtractor) query(query string, s *Set) {
	params := 0
	if query != "" {
		params = len(strings.Split(query, "&"))
	}
	s.Put("query_length", float64(utf8.RuneCountInString(query)))
	s.Put("num_params", float64(params))
	s.Put("suspicious_query_keywords", float64(countKeywords(strings.ToLower(query), urlSuspiciousKeywords)))
}

func (e *URLExtractor) suspicious(raw string, s *Set) {
	lower := strings.ToLower(raw)
	shortened := false
	for _, sh := range urlShorteners {
		if strings.Contains(lower, sh) {
			shortened = true
			break
		}
	}

	var hasLower, hasUpper bool
	for _, r := range raw {
		hasLower = hasLower || unicode.IsLower(r)
		hasUpper = hasUpper || unicode.IsUpper(r)
	}

	s.Put("suspicious_keywords", float64(countKeywords(lower, urlSuspiciousKeywords)))
	s.PutBool("is_shortened", shortened)
	s.PutBool("has_repeated_chars", hasRun(raw, 3))
	s.PutBool("has_mixed_case", hasLower && hasUpper)
}

// countKeywords counts how many distinct keywords occur in s.
func countKeywords(s string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			n++
		}
	}
	return n
}

// hasRun reports whether any rune other than a newline repeats at least n
// times in a row.
func hasRun(s string, n int) bool {
	var prev rune = -1
	run := 0
	for _, r := range s {
		if r == prev && r != '\n' {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

type urlParts struct {
	scheme string
	netloc string
	path   string
	query  string
}

// paramSchemes carry ";params" on the last path segment.
var paramSchemes = map[string]bool{
	"": true, "ftp": true, "hdl": true, "prospero": true, "http": true, "imap": true,
	"https": true, "shttp": true, "rtsp": true, "rtsps": true, "rtspu": true,
	"sip": true, "sips": true, "mms": true, "sftp": true, "tel": true,
}

// splitURL breaks raw into scheme, network location, path and query
// without validating or re-escaping any component. A string without "//"
// has no network location; "example.com/a" is all path. Only an unbalanced
// bracket in the network location fails.
func splitURL(raw string) (urlParts, bool) {
	rest := strings.TrimLeftFunc(raw, func(r rune) bool { return r <= ' ' })
	rest = strings.NewReplacer("\t", "", "\r", "", "\n", "").Replace(rest)

	var p urlParts
	if i := strings.IndexByte(rest, ':'); i > 0 && isScheme(rest[:i]) {
		p.scheme = strings.ToLower(rest[:i])
		rest = rest[i+1:]
	}

	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		p.netloc, rest = rest[:end], rest[end:]
		if strings.Contains(p.netloc, "[") != strings.Contains(p.netloc, "]") {
			return urlParts{}, false
		}
	}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest, p.query = rest[:i], rest[i+1:]
	}
	if paramSchemes[p.scheme] {
		rest = stripParams(rest)
	}
	p.path = rest
	return p, true
}

func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// stripParams drops ";params" from the last path segment.
func stripParams(path string) string {
	from := 0
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		from = i
	}
	if i := strings.IndexByte(path[from:], ';'); i >= 0 {
		return path[:from+i]
	}
	return path
}

// Hostname returns the lowercased host of raw without port or a leading
// "www.", or "" when raw has none.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
