package model

import "errors"

// Template and chain construction errors.
// These are configuration errors: a crawl built from an invalid template
// never starts.
var (
	// ErrNoSeedURLs is returned when the root template of a chain declares no seed URLs.
	ErrNoSeedURLs = errors.New("root template has no seed URLs")

	// ErrNoExpressions is returned when a template declares no expressions.
	ErrNoExpressions = errors.New("template has no expressions")

	// ErrNextNotExpression is returned when the next field is not a key of the expressions.
	ErrNextNotExpression = errors.New("next field is not an expression key")

	// ErrEmptyChain is returned when a chain is built from zero templates.
	ErrEmptyChain = errors.New("chain has no templates")

	// ErrEmptyFieldName is returned when an expression or alias has an empty name.
	ErrEmptyFieldName = errors.New("field name must not be empty")

	// ErrDuplicateField is returned when the same name is declared twice
	// in expressions or field aliases.
	ErrDuplicateField = errors.New("duplicate field name")
)
