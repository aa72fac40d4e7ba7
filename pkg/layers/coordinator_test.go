package layers_test

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canvasOf(types ...string) *domain.Canvas {
	c := domain.NewCanvas("c1", "s1", "home", time.Unix(0, 0).UTC())
	for i, typ := range types {
		c.Sections = append(c.Sections, domain.Section{
			ID:         typ,
			Type:       typ,
			Order:      i,
			Dimensions: domain.Dimensions{Width: domain.DefaultWidth, Height: domain.DefaultHeightFor(typ)},
			LayoutType: domain.LayoutRow,
			Alignment:  domain.AlignLeft,
		})
	}
	return c
}

func TestMoveUp_Scenario(t *testing.T) {
	canvas := canvasOf("Header", "HeroBanner", "Footer")
	coord := layers.New(canvas)

	next, moved, err := coord.MoveUp(canvas, "HeroBanner")
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"HeroBanner", "Header", "Footer"}, next.SectionIDs())
	assert.Equal(t, 0, next.Sections[0].Order)
	assert.Equal(t, 1, next.Sections[1].Order)
	assert.Equal(t, 2, next.Sections[2].Order)

	again, moved, err := coord.MoveUp(next, "HeroBanner")
	require.NoError(t, err)
	assert.False(t, moved, "already at the top boundary")
	assert.Same(t, next, again)

	// The input snapshot is never mutated.
	assert.Equal(t, []string{"Header", "HeroBanner", "Footer"}, canvas.SectionIDs())
}

func TestMoveDown_Boundary(t *testing.T) {
	canvas := canvasOf("A", "B")
	coord := layers.New(canvas)

	_, moved, err := coord.MoveDown(canvas, "B")
	require.NoError(t, err)
	assert.False(t, moved)

	_, _, err = coord.MoveDown(canvas, "missing")
	assert.ErrorIs(t, err, domain.ErrSectionNotFound)
}

func TestReorder(t *testing.T) {
	canvas := canvasOf("A", "B", "C", "D")
	coord := layers.New(canvas)

	next, err := coord.Reorder(canvas, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A", "D"}, next.SectionIDs())
	assert.Equal(t, next.SectionIDs(), coord.Order())
	assert.True(t, coord.Consistent(next))

	_, err = coord.Reorder(next, 0, 4)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	_, err = coord.Reorder(next, -1, 0)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestSync_PreservesRelativeOrderAndAppends(t *testing.T) {
	canvas := canvasOf("A", "B", "C")
	coord := layers.New(canvas)

	edited := canvas.Clone()
	edited.Sections = append(edited.Sections[:1], edited.Sections[2:]...)
	edited.Sections = append(edited.Sections, domain.Section{ID: "D", LayoutType: domain.LayoutRow, Alignment: domain.AlignLeft})

	coord.Sync(edited)
	assert.Equal(t, []string{"A", "C", "D"}, coord.Order())
}

func TestApply_RepairsDuplicateOrder(t *testing.T) {
	canvas := canvasOf("A", "B", "C")
	canvas.Sections[1].Order = 0
	canvas.Sections[2].Order = 0

	coord := layers.New(canvas)
	fixed := coord.Apply(canvas)

	assert.Equal(t, []string{"A", "B", "C"}, fixed.SectionIDs())
	for i, s := range fixed.Sections {
		assert.Equal(t, i, s.Order)
	}
}

// TestInvariants_RandomSequences drives random add/delete/reorder/move sequences and
// checks that order stays derived and the layer order stays a permutation.
func TestInvariants_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for run := 0; run < 20; run++ {
		canvas := canvasOf("Header")
		coord := layers.New(canvas)
		nextID := 0

		for step := 0; step < 200; step++ {
			n := len(canvas.Sections)
			switch op := rng.IntN(5); {
			case op == 0 || n == 0:
				nextID++
				added := canvas.Clone()
				added.Sections = append(added.Sections, domain.Section{
					ID:         fmt.Sprintf("s%d", nextID),
					Order:      n,
					LayoutType: domain.LayoutRow,
					Alignment:  domain.AlignLeft,
				})
				canvas = coord.Apply(added)
			case op == 1:
				i := rng.IntN(n)
				removed := canvas.Clone()
				removed.Sections = append(removed.Sections[:i], removed.Sections[i+1:]...)
				canvas = coord.Apply(removed)
			case op == 2:
				next, err := coord.Reorder(canvas, rng.IntN(n), rng.IntN(n))
				require.NoError(t, err)
				canvas = next
			case op == 3:
				next, _, err := coord.MoveUp(canvas, canvas.Sections[rng.IntN(n)].ID)
				require.NoError(t, err)
				canvas = next
			default:
				next, _, err := coord.MoveDown(canvas, canvas.Sections[rng.IntN(n)].ID)
				require.NoError(t, err)
				canvas = next
			}

			require.True(t, coord.Consistent(canvas), "run %d step %d: %v vs %v", run, step, coord.Order(), canvas.SectionIDs())
			assert.ElementsMatch(t, canvas.SectionIDs(), coord.Order())
		}
	}
}
