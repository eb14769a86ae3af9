/*
Package schemata validates arbitrary data trees against recursive schemas and
reports every violation it finds.

Each violation carries a stable error code, the exact path of the offending
value, and a human-readable message resolved through a message catalog.
Validation never stops at the first problem: a document with k independent
violations yields k errors.

# Engines

Two engines implement the same contract:

  - native: walks the schema tree itself and memoizes the outcome of every
    (schema subtree, data subtree) pair in a content-keyed cache. Repeated
    shapes, such as identical array elements, are validated once and their
    errors are rebased onto each location.
  - jsonschema: compiles the schema to JSON Schema draft 2020-12 and runs it
    through santhosh-tekuri/jsonschema, mapping its output onto the same codes.

# Usage

	s := schema.Object(map[string]*schema.Schema{
		"name": schema.String(schema.MinLength(1)),
		"age":  schema.Integer(schema.Minimum(0)),
	}, schema.Required("name"))

	v, err := schemata.New()
	if err != nil {
		log.Fatal(err)
	}

	errs, err := v.ValidateData(ctx, data, s, nil)
	if err != nil {
		log.Fatal(err) // infrastructure failure, e.g. cache backend down
	}
	for _, e := range errs {
		fmt.Println(e.Code, e.Path, e.Message)
	}

# Configuration

Validators can also be built from a YAML or JSON file with NewFromConfig, which
selects the engine, depth limit, log level and cache backend (memory or Redis).
*/
package schemata
