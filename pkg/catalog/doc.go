/*
Package catalog maps validation error codes to human-readable messages.

A Catalog resolves a Code plus an ordered list of arguments into a message. The
built-in Table is a static code-to-template mapping; templates use fmt verbs that
are filled positionally:

	msg := catalog.Default().Resolve(catalog.MissingRequired, "email")
	// "required property \"email\" is missing"

Codes without a template resolve to DefaultMessage instead of failing, so a
validator can always attach a readable message to an error.
*/
package catalog
