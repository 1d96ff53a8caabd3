/*
Package ports defines the driven ports (interfaces) for the slot-filling engine.

These interfaces decouple the conversation logic from external implementations, allowing
the engine to work with various storage backends, template sources and lock providers.

# Key Interfaces

  - TemplateLoader: Resolves conversation templates by id (e.g., from Loam or Memory).
  - StateStore: Persists and loads session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - Engine: The Init/Advance surface consumed by adapters (HTTP, MCP, runner).
*/
package ports
