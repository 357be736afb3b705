package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionQueue_OrderAndClear(t *testing.T) {
	q := NewSubmissionQueue(2)
	for i := 0; i < 5; i++ {
		q.Push(Submission{Transform: mgl32.Translate3D(float32(i), 0, 0), Camera: CameraHandle{Pass: 1}})
	}
	require.Equal(t, 5, q.Len())
	for i, s := range q.Items() {
		assert.Equal(t, float32(i), s.Transform.At(0, 3))
	}
	assert.Equal(t, float32(3), q.At(3).Transform.At(0, 3))

	capBefore := cap(q.items)
	q.Clear()
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Items())
	assert.Equal(t, capBefore, cap(q.items), "Clear keeps the backing array")
	assert.Equal(t, Submission{}, q.items[:1][0], "cleared slots drop their handles")
}
