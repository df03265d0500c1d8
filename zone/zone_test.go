package zone

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgevision/go-sscma/tracker"
)

func square(x0, y0, size int) []image.Point {
	return []image.Point{
		{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size},
	}
}

func TestNewRejectsDegeneratePolygon(t *testing.T) {
	_, err := New("line", []image.Point{{0, 0}, {10, 10}}, 0)
	require.ErrorIs(t, err, ErrPolygon)
}

func TestContains(t *testing.T) {
	z, err := New("door", square(0, 0, 100), 0)
	require.NoError(t, err)

	assert.True(t, z.Contains(image.Pt(50, 50)))
	assert.True(t, z.Contains(image.Pt(1, 99)))
	assert.False(t, z.Contains(image.Pt(150, 50)))
	assert.False(t, z.Contains(image.Pt(-1, 50)))

	concave, err := New("l-shape", []image.Point{
		{0, 0}, {100, 0}, {100, 40}, {40, 40}, {40, 100}, {0, 100},
	}, 0)
	require.NoError(t, err)

	assert.True(t, concave.Contains(image.Pt(20, 80)))
	assert.False(t, concave.Contains(image.Pt(80, 80)))
}

func TestOuterBoundary(t *testing.T) {
	z, err := New("door", square(0, 0, 100), 10)
	require.NoError(t, err)
	require.NotEmpty(t, z.Outer())

	assert.False(t, z.Contains(image.Pt(105, 50)))
	assert.True(t, z.withinMargin(image.Pt(105, 50)))
	assert.True(t, z.withinMargin(image.Pt(50, -8)))
	assert.False(t, z.withinMargin(image.Pt(115, 50)))

	flat, err := New("flat", square(0, 0, 100), 0)
	require.NoError(t, err)
	assert.Equal(t, [][]image.Point{flat.Polygon}, flat.Outer())
}

func TestAnchor(t *testing.T) {
	track := tracker.NewSTrack(tracker.NewRect(10, 20, 30, 40), 1, 0.9, 1, 0)
	track.Activate(1, 1)

	assert.Equal(t, image.Pt(25, 60), Anchor(track))
}
