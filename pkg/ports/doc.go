/*
Package ports defines the driven ports (interfaces) for the dialog engine.

These interfaces decouple the policy core from external implementations, allowing
the engine to work with various graph sources, session backends and result sinks.

# Key Interfaces

  - GraphStore: Read-only access to dialog graphs (e.g., Memory, SQLite, Loam, graph files).
  - SessionStore: Persists the per-user Cursor between turns.
  - DistributedLocker: Provides distributed locking for concurrent access to one user.
  - Publisher: Broadcasts turn results on named topics.
  - DialogEngine: The surface consumed by transports (HTTP, MCP, Lambda).
*/
package ports
