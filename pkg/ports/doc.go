/*
Package ports defines the driven ports (interfaces) for the Blueprint studio.

These interfaces decouple the editing core from external implementations, allowing
the studio to work with various draft backends, canonical page services, reference
catalogs and layout suggestion services.

# Key Interfaces

  - DraftStore: Local key/value persistence for offline drafts (memory, file, Redis).
  - CanvasService: Canonical fetch/save/publish of a Canvas (memory, SQLite, remote HTTP).
  - ReferenceData: Read-only catalog of stores, page types and section templates.
  - LayoutSuggester: External "AI" service proposing section descriptors.
  - Editor: The driving port used by the HTTP and MCP adapters.
*/
package ports
