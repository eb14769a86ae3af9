package schemata_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/schemata"
	"github.com/aretw0/schemata/pkg/domain"
	"github.com/aretw0/schemata/pkg/schema"
)

// ExampleValidator_ValidateData reports every violation of a document at once.
func ExampleValidator_ValidateData() {
	s := schema.Object(map[string]*schema.Schema{
		"name": schema.String(schema.MinLength(1)),
		"age":  schema.Integer(schema.Minimum(0)),
		"tags": schema.Array(schema.String()),
	}, schema.Required("name"), schema.Closed())

	data := map[string]any{
		"age":      -1,
		"tags":     []any{"ok", 7},
		"nickname": "al",
	}

	v, err := schemata.New()
	if err != nil {
		log.Fatal(err)
	}

	errs, err := v.ValidateData(context.Background(), data, s, nil)
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range errs {
		fmt.Printf("%s %s: %s\n", e.Code, e.Path, e.Message)
	}

	// Output:
	// CONSTRAINT_VIOLATION $.age: value -1 violates minimum constraint 0
	// MISSING_REQUIRED $.name: required property "name" is missing
	// UNEXPECTED_PROPERTY $.nickname: property "nickname" is not allowed
	// TYPE_MISMATCH $.tags[1]: expected string, got number
}

// ExampleValidator_Validate checks a single property in the context of its parent.
func ExampleValidator_Validate() {
	s := schema.Object(map[string]*schema.Schema{
		"email": schema.String(schema.Pattern(`^[^@]+@[^@]+$`)),
	})

	v, err := schemata.New(schemata.WithEngine(schemata.EngineJSONSchema))
	if err != nil {
		log.Fatal(err)
	}

	errs, err := v.Validate(context.Background(), s, domain.Key("email"), "nobody", domain.Path{domain.Key("user")})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(errs)

	// Output:
	// $.user.email: value nobody violates pattern constraint ^[^@]+@[^@]+$
}
