package catalog

import "fmt"

// Code identifies a kind of validation failure.
type Code int

const (
	// TypeMismatch reports a value whose kind does not match the schema type.
	TypeMismatch Code = iota + 1
	// ConstraintViolation covers pattern, range, length and enum failures.
	ConstraintViolation
	// MissingRequired reports a required property absent from an object.
	MissingRequired
	// UnexpectedProperty reports a key rejected by additionalProperties: false.
	UnexpectedProperty
	// UnknownType reports a schema node whose type cannot be dispatched.
	UnknownType
	// DepthExceeded reports nesting beyond the configured maximum depth.
	DepthExceeded
	// MalformedSchema reports a schema that is not well-formed.
	MalformedSchema
)

var codeNames = map[Code]string{
	TypeMismatch:        "TYPE_MISMATCH",
	ConstraintViolation: "CONSTRAINT_VIOLATION",
	MissingRequired:     "MISSING_REQUIRED",
	UnexpectedProperty:  "UNEXPECTED_PROPERTY",
	UnknownType:         "UNKNOWN_TYPE",
	DepthExceeded:       "DEPTH_EXCEEDED",
	MalformedSchema:     "MALFORMED_SCHEMA",
}

// Codes returns every known code in declaration order.
func Codes() []Code {
	return []Code{
		TypeMismatch,
		ConstraintViolation,
		MissingRequired,
		UnexpectedProperty,
		UnknownType,
		DepthExceeded,
		MalformedSchema,
	}
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// ParseCode converts the textual form (e.g. "MISSING_REQUIRED") back to a Code.
func ParseCode(s string) (Code, error) {
	for code, name := range codeNames {
		if name == s {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown error code: %q", s)
}

func (c Code) MarshalText() ([]byte, error) {
	if _, ok := codeNames[c]; !ok {
		return nil, fmt.Errorf("cannot marshal unknown error code %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
