/*
Package domain contains the core data model of the slot-filling dialogue engine.

It defines the declarative field template (Nodes), the immutable traversal Plan built from it,
the Memory of collected values and the conversation State that the engine replaces wholesale on
every turn. The package is pure: no I/O, no logging, no persistence.

# Key Entities

  - Node: a field definition, either a "main" field or one of its "sub" components.
  - Plan: the flattened traversal order (main, then its subs) plus an id lookup.
  - Value: a tagged union keyed by Kind (date, name, address or scalar text).
  - Memory: field id -> {value, confirmed}.
  - State: mode, cursor (main index + sub id), memory, transcript and retry counters.
*/
package domain
