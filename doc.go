/*
Package blueprint is the document engine behind a visual page builder.

It manages an editable page (a Canvas) made of ordered Sections, with linear
undo/redo, drag and keyboard reordering, offline draft recovery and merging of
externally generated layout proposals.

# Concept

The Studio is the single write path. Every operation computes a brand-new Canvas
value, commits it to history, autosaves it as a local draft and re-syncs the layer
order. Collaborators (canonical canvas store, reference catalog, layout suggester,
draft storage) are ports, so the same engine runs in memory, against SQLite and
Redis, or against a remote API.

# Key Features

  - Immutable Snapshots: history holds deep copies; undo restores the exact prior canvas.
  - Derived Ordering: a section's order always equals its index.
  - Draft Recovery: a local draft strictly newer than the canonical copy wins on load.
  - Stale-Response Guard: late results for a canvas that is no longer active are discarded.
  - Atomic Proposals: a batch of suggested sections is one history entry.

# Usage

	studio := blueprint.New(
		blueprint.WithDraftStore(redisStore),
		blueprint.WithCanvasService(sqliteService),
	)

	ctx := context.Background()
	if _, err := studio.Open(ctx, "demo-store", "home"); err != nil {
		log.Fatal(err)
	}

	studio.AddSection(ctx, domain.AddSectionRequest{Type: "Header"})
	studio.AddSection(ctx, domain.AddSectionRequest{Type: "HeroBanner"})
	studio.MoveUp(ctx, heroID)
	studio.Undo(ctx)

	if _, err := studio.Save(ctx); err != nil {
		log.Printf("save failed, draft kept locally: %v", err)
	}
*/
package blueprint
