// Package gatekeeper decides whether a caller-supplied SQL string is
// incapable of mutating engine state. The check is lexical: a correct
// tokenizer plus a whole-token keyword denylist, no grammar or catalog
// knowledge. Anything the lexer cannot classify is rejected.
package gatekeeper

import (
	"fmt"
	"strings"
)

type RejectReason string

const (
	ReasonEmptyStatement     RejectReason = "EmptyStatement"
	ReasonMultipleStatements RejectReason = "MultipleStatements"
	ReasonNoTokens           RejectReason = "NoTokens"
	ReasonNotReadOnlyEntry   RejectReason = "NotReadOnlyEntry"
	ReasonForbiddenKeyword   RejectReason = "ForbiddenKeyword"
	ReasonParseError         RejectReason = "ParseError"
)

// ValidationError is the rejection verdict. Every rejection path maps to a
// named reason; the gatekeeper never returns an unclassified error.
type ValidationError struct {
	Reason RejectReason
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Single keywords that can mutate state on their own. Matched against whole
// word tokens outside string and quoted-identifier literals.
var forbiddenKeywords = map[string]struct{}{
	"insert":   {},
	"update":   {},
	"delete":   {},
	"merge":    {},
	"create":   {},
	"alter":    {},
	"drop":     {},
	"truncate": {},
	"attach":   {},
	"detach":   {},
	"copy":     {},
	"pragma":   {},
	"call":     {},
	"execute":  {},
}

// Validate classifies raw as read-only or returns a *ValidationError. It is
// pure and safe for concurrent use; validating the same input twice yields
// the same verdict.
func Validate(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &ValidationError{Reason: ReasonEmptyStatement, Detail: "empty query"}
	}

	tokens, err := Tokenize(trimmed)
	if err != nil {
		return &ValidationError{Reason: ReasonParseError, Detail: err.Error()}
	}

	// Comments are stripped before any keyword scan: a keyword cannot hide
	// in a comment, and a commented-out keyword cannot trigger rejection.
	meaningful := tokens[:0:0]
	for _, token := range tokens {
		if token.Kind == TokenComment {
			continue
		}
		meaningful = append(meaningful, token)
	}

	if err := checkSingleStatement(meaningful); err != nil {
		return err
	}

	statement := meaningful[:0:0]
	for _, token := range meaningful {
		if token.Kind == TokenSemicolon {
			continue
		}
		statement = append(statement, token)
	}
	if len(statement) == 0 {
		return &ValidationError{Reason: ReasonNoTokens, Detail: "no SQL tokens found"}
	}

	entry := strings.ToLower(statement[0].Text)
	if statement[0].Kind != TokenWord || (entry != "select" && entry != "with") {
		return &ValidationError{
			Reason: ReasonNotReadOnlyEntry,
			Detail: fmt.Sprintf("query must start with SELECT or WITH, got: %s", strings.ToUpper(statement[0].Text)),
		}
	}

	for _, token := range statement {
		if token.Kind != TokenWord {
			continue
		}
		if _, forbidden := forbiddenKeywords[strings.ToLower(token.Text)]; forbidden {
			return &ValidationError{
				Reason: ReasonForbiddenKeyword,
				Detail: fmt.Sprintf("query contains forbidden keyword: %s", strings.ToUpper(token.Text)),
			}
		}
	}

	return nil
}

// checkSingleStatement rejects input holding more than one top-level
// statement: any token after a semicolon means a second statement follows.
func checkSingleStatement(tokens []Token) error {
	seenBoundary := false
	for _, token := range tokens {
		if token.Kind == TokenSemicolon {
			seenBoundary = true
			continue
		}
		if seenBoundary {
			return &ValidationError{Reason: ReasonMultipleStatements, Detail: "multiple SQL statements are not allowed"}
		}
	}
	return nil
}
