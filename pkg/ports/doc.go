/*
Package ports defines the driven ports (interfaces) of the validation engines.

These interfaces decouple the validation logic from cache backends and let
callers swap engines without touching their code.

# Key Interfaces

  - SchemaValidator: checks schemas for well-formedness and data against schemas.
  - ValidationCache: stores validation outcomes by content key (memory or Redis).

RunValidationCacheContract is a reusable test suite every ValidationCache
implementation must pass.
*/
package ports
