package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassData_RoundTrip(t *testing.T) {
	in := PassData{
		ViewProjection:  mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100),
		CameraPosition:  mgl32.Vec3{1, 2, 3},
		Time:            12.5,
		CameraDirection: mgl32.Vec3{0, 0, -1},
		ViewportWidth:   1280,
		Ambient:         mgl32.Vec3{0.1, 0.1, 0.1},
		ViewportHeight:  720,
		Effects: PostEffects{
			HDR:            true,
			Exposure:       1.5,
			Bloom:          true,
			BloomThreshold: 0.8,
			Blur:           true,
			BlurIterations: 5,
		},
	}

	buf := in.Encode()
	require.Len(t, buf, PassDataSize)
	assert.Zero(t, PassDataSize%16)

	out, err := DecodePassData(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPassData_NegativeBlurIterationsClamped(t *testing.T) {
	in := PassData{Effects: PostEffects{BlurIterations: -3}}
	out, err := DecodePassData(in.Encode())
	require.NoError(t, err)
	assert.Zero(t, out.Effects.BlurIterations)
}

func TestDecodePassData_BadSize(t *testing.T) {
	_, err := DecodePassData(nil)
	assert.ErrorIs(t, err, ErrBufferSize)
}
