// Package textfix applies deterministic terminology fixes to generated
// answers before they reach the student.
package textfix

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	carryPhrase = regexp.MustCompile(`(?i)\b(suma|sumas|resta|restas)\s+con\s+(?:llamada|llamadas|llamado|llamados|llevada|llevadas)\b`)

	falseSubtract = regexp.MustCompile(`(?i)\b(?:reiniciar|reinicias|reiniciamos|reinician|` +
		`quitar|quitas|quitamos|quitan|` +
		`eliminar|eliminas|eliminamos|eliminan|` +
		`retirar|retiras|retiramos|retiran)\b`)

	horizontalRun   = regexp.MustCompile(`[ \t]{2,}`)
	trailingSpaceNL = regexp.MustCompile(`[ \t]+\n`)
)

// Clean rewrites "suma con llevadas" style phrases to "suma llevando",
// replaces verbs misused for subtraction with "restar" and tidies
// horizontal whitespace. The first letter's case of each rewritten span is
// kept. Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	if text == "" {
		return text
	}

	text = norm.NFC.String(text)

	text = replaceWords(carryPhrase, text, func(match string) string {
		op := carryPhrase.FindStringSubmatch(match)[1]
		return matchCase(strings.ToLower(op)+" llevando", op)
	})

	text = replaceWords(falseSubtract, text, func(verb string) string {
		return matchCase("restar", verb)
	})

	text = horizontalRun.ReplaceAllString(text, " ")
	text = trailingSpaceNL.ReplaceAllString(text, "\n")

	return text
}

// replaceWords is ReplaceAllStringFunc restricted to matches that are not
// glued to a letter or digit. RE2's \b only knows ASCII, so "quitarás"
// would otherwise yield a match on "quitar".
func replaceWords(re *regexp.Regexp, text string, repl func(string) string) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if !standalone(text, loc[0], loc[1]) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(repl(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func standalone(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// matchCase upper-cases the first letter of repl when original starts with
// an upper-case letter.
func matchCase(repl, original string) string {
	first, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(first) {
		return repl
	}
	r, size := utf8.DecodeRuneInString(repl)
	return string(unicode.ToUpper(r)) + repl[size:]
}
