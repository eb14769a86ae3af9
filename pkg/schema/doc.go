// Package schema defines the schema tree that data is validated against.
//
// A Schema node has a Type (object, array, string, number, integer, boolean,
// null, enum, oneOf) and optional constraints. Trees can be built in code with
// the factory functions:
//
//	user := schema.Object(map[string]*schema.Schema{
//	    "email": schema.String(schema.Pattern(`^[^@]+@[^@]+$`)),
//	    "age":   schema.Integer(schema.Minimum(0)),
//	    "tags":  schema.Array(schema.String(), schema.MaxItems(10)),
//	}, schema.Required("email"), schema.Closed())
//
// or loaded from YAML/JSON documents:
//
//	s, err := schema.LoadFile("user.schema.yaml")
//
// Keys the package does not recognise are kept in Schema.Extra so that Check can
// report them instead of silently dropping them. A Schema must not be modified
// once it has been handed to a validator.
package schema
