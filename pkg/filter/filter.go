// Package filter parses filterQuery expressions such as
//
//	region = 'DE' AND factorValue >= 0.1
//
// and applies them to gorm queries against a whitelist of columns.
package filter

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"gorm.io/gorm"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// MaxQueryLength bounds the accepted filterQuery size.
const MaxQueryLength = 1024

// Expression is a conjunction of conditions.
type Expression struct {
	Conditions []*Condition `parser:"@@ ( 'AND' @@ )*"`
}

// Condition compares one field with a literal.
type Condition struct {
	Field    string `parser:"@Ident"`
	Operator string `parser:"( @Operator | @'LIKE' )"`
	Value    *Value `parser:"@@"`
}

// Value is a string, number or boolean literal.
type Value struct {
	String *string  `parser:"  @String"`
	Number *float64 `parser:"| ( @Float | @Int )"`
	Bool   *Boolean `parser:"| @( 'true' | 'false' )"`
}

// Boolean captures true/false keywords.
type Boolean bool

func (b *Boolean) Capture(values []string) error {
	*b = Boolean(strings.EqualFold(values[0], "true"))
	return nil
}

var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(AND|LIKE)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Float", Pattern: `[-+]?\d*\.\d+`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Operator", Pattern: `!=|<=|>=|=|<|>`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[Expression](
	participle.Lexer(filterLexer),
	participle.Unquote("String"),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("Whitespace"),
)

// Kind is the type of a filterable column.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
)

// Field maps a public field name to a column.
type Field struct {
	Column string
	Kind   Kind
}

// Fields is the whitelist of filterable fields, keyed by public name.
type Fields map[string]Field

// Parse parses a filterQuery. An empty query yields a nil expression.
func Parse(query string) (*Expression, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if len(query) > MaxQueryLength {
		return nil, carbon.InvalidInputf("filterQuery exceeds maximum length of %d characters", MaxQueryLength)
	}
	expr, err := parser.ParseString("", query)
	if err != nil {
		return nil, carbon.InvalidInputf("invalid filterQuery: %v", err)
	}
	return expr, nil
}

// Validate checks every condition against fields: the field must exist, the
// literal must match its kind and LIKE is only allowed on strings.
func (e *Expression) Validate(fields Fields) error {
	if e == nil {
		return nil
	}
	for _, c := range e.Conditions {
		f, ok := fields[c.Field]
		if !ok {
			return carbon.InvalidInputf("unknown filter field %q", c.Field)
		}
		op := c.op()
		switch f.Kind {
		case KindString:
			if c.Value.String == nil {
				return carbon.InvalidInputf("field %q expects a quoted string", c.Field)
			}
		case KindNumber:
			if c.Value.Number == nil {
				return carbon.InvalidInputf("field %q expects a number", c.Field)
			}
		case KindBool:
			if c.Value.Bool == nil {
				return carbon.InvalidInputf("field %q expects true or false", c.Field)
			}
			if op != "=" && op != "!=" {
				return carbon.InvalidInputf("operator %s is not supported for field %q", op, c.Field)
			}
		}
		if op == "LIKE" && f.Kind != KindString {
			return carbon.InvalidInputf("LIKE is only supported for string fields, not %q", c.Field)
		}
	}
	return nil
}

// Scope returns a gorm scope applying the expression. Call Validate first;
// conditions naming unknown fields are skipped.
func (e *Expression) Scope(fields Fields) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if e == nil {
			return db
		}
		for _, c := range e.Conditions {
			f, ok := fields[c.Field]
			if !ok {
				continue
			}
			db = db.Where(fmt.Sprintf("%s %s ?", f.Column, c.op()), c.Value.literal())
		}
		return db
	}
}

func (c *Condition) op() string {
	return strings.ToUpper(c.Operator)
}

func (v *Value) literal() any {
	switch {
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		return *v.Number
	case v.Bool != nil:
		return bool(*v.Bool)
	}
	return nil
}
