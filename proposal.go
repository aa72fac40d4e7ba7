package blueprint

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/proposal"
)

// ApplyAIProposal asks the layout suggester for sections and appends them as a
// single history entry. If the suggester fails or returns an unusable proposal,
// exactly one best-effort section derived from the first requested label is
// appended instead, and a warning notice is raised.
func (s *Studio) ApplyAIProposal(ctx context.Context, req domain.LayoutRequest) (*domain.Canvas, error) {
	s.mu.Lock()
	if s.history == nil {
		s.mu.Unlock()
		return nil, domain.ErrNoCanvas
	}
	gen := s.generation
	if req.PageType == "" {
		req.PageType = s.history.Peek().PageTypeID
	}
	s.mu.Unlock()

	descriptors, err := s.suggester.Suggest(ctx, req)
	if err != nil && !errors.Is(err, domain.ErrInvalidProposal) {
		err = fmt.Errorf("%w: %w", domain.ErrTransientFetch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil, domain.ErrStaleResponse
	}

	cur := s.history.Peek()
	now := s.clock().UTC()

	var next *domain.Canvas
	if err == nil {
		// An empty proposal counts as unusable and takes the fallback path below,
		// so an accepted proposal always adds at least one section.
		next, err = proposal.Merge(cur, req.PageType, descriptors, now)
	}
	if err != nil {
		s.logger.Warn("Layout proposal unavailable, inserting fallback section",
			"canvas_id", cur.ID,
			"err", err,
		)
		next = proposal.Fallback(cur, req.PageType, req.DesiredSections, now)
		s.notifyLocked(ctx, domain.NoticeWarning, domain.NoticeProposalFallback,
			"The layout assistant is unavailable; a placeholder section was added.")
	}

	return s.commitLocked(ctx, OpAIProposal, next), nil
}

// RefreshReference drops cached reference data so the next lookup reaches
// the backend again.
func (s *Studio) RefreshReference() {
	s.reference.Invalidate()
}

// AllowedSections lists the section types allowed on the active page type.
// Lookup failures yield an empty list and a notice.
func (s *Studio) AllowedSections(ctx context.Context) []string {
	s.mu.Lock()
	pageTypeID := s.pageTypeID
	s.mu.Unlock()

	out, err := s.reference.PageSections(ctx, pageTypeID)
	return referenceResult(ctx, s, out, err)
}

// AllowedContent lists the content kinds allowed inside a section type.
func (s *Studio) AllowedContent(ctx context.Context, sectionType string) []string {
	out, err := s.reference.SectionContent(ctx, sectionType)
	return referenceResult(ctx, s, out, err)
}

// Templates lists the known section templates.
func (s *Studio) Templates(ctx context.Context) []domain.SectionTemplate {
	out, err := s.reference.SectionTemplates(ctx)
	return referenceResult(ctx, s, out, err)
}

// referenceResult turns a failed lookup into an empty list plus a notice.
func referenceResult[T any](ctx context.Context, s *Studio, out []T, err error) []T {
	if err == nil {
		if out == nil {
			out = []T{}
		}
		return out
	}

	s.logger.Warn("Reference lookup failed", "err", err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasNoticeLocked(domain.NoticeReferenceFailed) {
		s.notifyLocked(ctx, domain.NoticeWarning, domain.NoticeReferenceFailed,
			"Reference data could not be loaded.")
	}
	return []T{}
}

// Stores lists the known stores.
func (s *Studio) Stores(ctx context.Context) []domain.Store {
	out, err := s.reference.Stores(ctx)
	return referenceResult(ctx, s, out, err)
}

// PageTypes lists the known page types.
func (s *Studio) PageTypes(ctx context.Context) []domain.PageType {
	out, err := s.reference.PageTypes(ctx)
	return referenceResult(ctx, s, out, err)
}
