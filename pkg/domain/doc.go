/*
Package domain contains the core document model of the Blueprint Studio engine.

It defines the page document (Canvas), its blocks (Section), the tagged values used by
free-form style/advanced bags, and the records exchanged with external collaborators
(reference data, layout proposals, drafts). This package is kept pure and free of I/O,
following Hexagonal Architecture principles: persistence and transport live in adapters.

# Key Entities

  - Section: one structural block of a page (header, hero banner, product grid...).
  - Canvas: the page-level aggregate of Sections plus metadata.
  - Value: a closed tagged union (string, bool, list, map) for untyped bags.
  - SectionDescriptor: a loosely-typed candidate section proposed by a layout service.
  - Notice: a dismissible, user-visible message raised by the engine.
  - ViewState: UI toggles (zoom, device, grid) that never enter history.
*/
package domain
