/*
Package domain contains the core models shared by every validator.

It is kept free of I/O so engines, caches and callers can exchange results
without depending on each other.

# Key Entities

  - Path / Segment: the location of a value inside a data tree, rendered as
    JSONPath ("$.items[0].name") or JSON Pointer.
  - ValidationError: one violation, carrying a code, a path and a resolved message.
  - Errors: the full violation set of a run; it implements error.
  - CacheKey / CacheEntry: the content key of a (schema, data) pair and the
    outcome stored under it, with paths relative to that pair.
*/
package domain
