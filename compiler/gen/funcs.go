package gen

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	rules    = ruleset()
	acronyms = make(map[string]struct{})
	titler   = cases.Title(language.Und, cases.NoLower)
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for _, w := range []string{
		"ACL", "API", "ASCII", "CPU", "CSS", "DNS", "DTO", "EOF", "GUID",
		"HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM",
		"RHS", "RPC", "SLA", "SMTP", "SQL", "SSH", "TCP", "TLS", "TTL",
		"UDP", "UI", "UID", "UUID", "URI", "URL", "UTF8", "VM", "XML",
		"XMPP", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// AddAcronym registers a word as an acronym for name derivation.
// Registered acronyms keep their upper-case form in derived Go
// identifiers, e.g. "user_dto" becomes "UserDTO" rather than "UserDto".
func AddAcronym(w string) {
	w = strings.ToUpper(w)
	acronyms[w] = struct{}{}
	rules.AddAcronym(w)
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

// snake converts the given identifier to its snake_case form. Acronym
// runs collapse into a single word ("HTTPCode" to "http_code").
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// A word boundary sits before an upper-case letter that follows a
		// lower-case one, or before the last letter of an acronym run.
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// pascal converts the given column or table name to PascalCase.
func pascal(s string) string {
	return pascalWords(strings.FieldsFunc(s, isSeparator))
}

func pascalWords(words []string) string {
	var b strings.Builder
	for _, w := range words {
		if upper := strings.ToUpper(w); isAcronym(upper) {
			b.WriteString(upper)
			continue
		}
		b.WriteString(titler.String(w))
	}
	return b.String()
}

// camel converts the given column or table name to camelCase.
func camel(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 0 {
		return s
	}
	if len(words) == 1 {
		return strings.ToLower(words[0])
	}
	return strings.ToLower(words[0]) + pascalWords(words[1:])
}

// plural pluralizes the given identifier. Uncountable words get a
// "Slice" suffix so the derived name stays distinct from the singular.
func plural(s string) string {
	p := rules.Pluralize(s)
	if p == s {
		p += "Slice"
	}
	return p
}

// singular singularizes the given identifier.
func singular(s string) string {
	return rules.Singularize(s)
}

// isAcronym reports whether the upper-cased word is a registered acronym.
func isAcronym(upper string) bool {
	_, ok := acronyms[upper]
	return ok
}

// receiver derives a short receiver name from a type name, one letter
// per word ("UserQuery" to "uq"). Acronym runs count as one word.
func receiver(s string) string {
	// Strip slice, array and pointer prefixes.
	for {
		switch {
		case strings.HasPrefix(s, "[]"):
			s = s[2:]
		case strings.HasPrefix(s, "["):
			if i := strings.IndexByte(s, ']'); i >= 0 {
				s = s[i+1:]
				continue
			}
			return "_"
		case strings.HasPrefix(s, "*"):
			s = s[1:]
		default:
			goto done
		}
	}
done:
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		if !unicode.IsUpper(r) {
			continue
		}
		// Skip the tail of an acronym run: letters that are upper-case and
		// not the start of a new word.
		if i > 0 && unicode.IsUpper(rune(s[i-1])) && (i == len(s)-1 || unicode.IsUpper(rune(s[i+1]))) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	if b.Len() == 0 {
		b.WriteRune(unicode.ToLower(rune(s[0])))
	}
	r := b.String()
	if token.Lookup(r).IsKeyword() {
		r = "_" + r
	}
	return r
}

// quote wraps string values in Go quotes and leaves other values as is.
// Used by custom templates to render literals.
func quote(v any) any {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return v
}

// xrange returns a slice of the integers [0, n).
func xrange(n int) (a []int) {
	for i := 0; i < n; i++ {
		a = append(a, i)
	}
	return a
}

// add sums its arguments.
func add(xs ...int) (n int) {
	for _, x := range xs {
		n += x
	}
	return n
}

// indexOf returns the index of the value in the slice, or -1.
func indexOf(s []string, v string) int {
	for i := range s {
		if s[i] == v {
			return i
		}
	}
	return -1
}

// joinWords joins words with spaces, wrapping lines at maxSize.
func joinWords(words []string, maxSize int) string {
	var (
		b    strings.Builder
		size int
	)
	for i, w := range words {
		if i > 0 {
			if size+1+len(w) > maxSize {
				b.WriteString("\n ")
				size = 1
			} else {
				b.WriteByte(' ')
				size++
			}
		}
		b.WriteString(w)
		size += len(w)
	}
	return b.String()
}
