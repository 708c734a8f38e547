// Package topic maps free-form topic phrases and question text onto the
// small closed set of canonical topics used for retrieval prompts and
// video matching.
package topic

import (
	"regexp"
	"strings"
)

// Topic is a canonical topic label.
type Topic string

const (
	None           Topic = ""
	Addition       Topic = "suma"
	Subtraction    Topic = "resta"
	AdditionCarry  Topic = "suma llevando"
	SubtractBorrow Topic = "resta llevando"
	Multiplication Topic = "multiplicacion"
	Division       Topic = "division"
	WordProblems   Topic = "problemas"
)

// All lists the closed set of non-empty canonical topics.
var All = []Topic{Addition, Subtraction, AdditionCarry, SubtractBorrow, Multiplication, Division, WordProblems}

func (t Topic) String() string { return string(t) }

// Known reports whether t belongs to the closed canonical set.
func (t Topic) Known() bool {
	for _, k := range All {
		if t == k {
			return true
		}
	}
	return false
}

// IsAddition reports whether t is in the addition family.
func (t Topic) IsAddition() bool {
	return t == Addition || t == AdditionCarry
}

// Rule maps a keyword pattern onto a topic. Every group in AllOf must have
// at least one keyword present (as a substring of the folded text), or
// Pattern must match.
type Rule struct {
	Topic   Topic
	AllOf   [][]string
	Pattern *regexp.Regexp
}

// Match reports whether the rule fires on already folded text.
func (r Rule) Match(folded string) bool {
	if r.Pattern != nil && r.Pattern.MatchString(folded) {
		return true
	}
	if len(r.AllOf) == 0 {
		return false
	}
	for _, group := range r.AllOf {
		if !containsAny(folded, group) {
			return false
		}
	}
	return true
}

var (
	carryWords    = []string{"llevando", "llevada", "llevadas", "llevar", "acarreo", "prestamo", "prestamos"}
	subtractWords = []string{"resta", "restar", "restas", "restando", "sustraccion"}

	// factor is a digit or a spelled-out small number.
	factor         = `(?:\d|\b(?:cero|uno|una|dos|tres|cuatro|cinco|seis|siete|ocho|nueve|diez|once|doce)\b)`
	productPattern = regexp.MustCompile(factor + `\s*(?:por|x|×)\s*` + factor)
)

// Rules is evaluated top to bottom; the first match wins. Carry variants
// come before the plain operations they contain.
var Rules = []Rule{
	{Topic: SubtractBorrow, AllOf: [][]string{subtractWords, carryWords}},
	{Topic: AdditionCarry, AllOf: [][]string{{"llevando", "llevada", "llevadas", "llevar", "acarreo"}}},
	{Topic: Addition, AllOf: [][]string{{"suma", "sumar", "sumas", "sumando", "adicion"}}},
	{Topic: Subtraction, AllOf: [][]string{subtractWords}},
	{
		Topic:   Multiplication,
		AllOf:   [][]string{{"multiplica", "producto"}},
		Pattern: productPattern,
	},
	{Topic: Division, AllOf: [][]string{{"divid", "division", "cociente", "reparte", "repartir"}}},
	{Topic: WordProblems, AllOf: [][]string{{"problema", "enunciado"}}},
}

// Infer scans question text for topic keywords. It returns false when no
// rule matches.
func Infer(text string) (Topic, bool) {
	folded := Fold(text)
	if folded == "" {
		return None, false
	}
	for _, r := range Rules {
		if r.Match(folded) {
			return r.Topic, true
		}
	}
	return None, false
}

var synonyms = map[string]Topic{
	"suma":                 Addition,
	"sumas":                Addition,
	"adicion":              Addition,
	"resta":                Subtraction,
	"restas":               Subtraction,
	"suma llevando":        AdditionCarry,
	"sumas llevando":       AdditionCarry,
	"suma con llevada":     AdditionCarry,
	"sumas con llevadas":   AdditionCarry,
	"resta llevando":       SubtractBorrow,
	"restas llevando":      SubtractBorrow,
	"resta con llevada":    SubtractBorrow,
	"resta con llevadas":   SubtractBorrow,
	"resta con prestamo":   SubtractBorrow,
	"restas con prestamos": SubtractBorrow,
	"multiplicacion":       Multiplication,
	"multiplicaciones":     Multiplication,
	"producto":             Multiplication,
	"division":             Division,
	"divisiones":           Division,
	"cociente":             Division,
	"problema":             WordProblems,
	"problemas":            WordProblems,
	"problemas verbales":   WordProblems,
}

// Canonicalize maps a known synonym onto its canonical topic. Unknown
// phrases come back folded but otherwise unchanged.
func Canonicalize(phrase string) Topic {
	key := collapse(phrase)
	if t, ok := synonyms[key]; ok {
		return t
	}
	return Topic(key)
}

// Normalize infers a topic from raw, falling back to Canonicalize.
func Normalize(raw string) Topic {
	if t, ok := Infer(raw); ok {
		return t
	}
	return Canonicalize(raw)
}

// Resolve picks the topic for a question: keywords in the question take
// priority over the caller's hint.
func Resolve(question, hint string) Topic {
	if t, ok := Infer(question); ok {
		return t
	}
	return Normalize(hint)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}
