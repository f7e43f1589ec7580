/*
Package ports defines the driven ports (interfaces) for the lively engine.

These interfaces decouple the core lifecycle logic from the host it is
embedded in, allowing the engine to work with any document/editor front end
and any expression evaluator.

# Key Interfaces

  - Document: the host document/editor contract (text access, cursor,
    containment semantics, display primitive).
  - Evaluator: turns an overlay's source text into its rendered string.
*/
package ports
