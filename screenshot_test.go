package rowan

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"boss-fight.v2", "boss-fight.v2"},
		{"level 1/intro", "level_1_intro"},
		{"  padded  ", "padded"},
		{"é", "_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeLabel(tt.in), "label %q", tt.in)
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		128, 64, 0, 128, // half alpha
		255, 255, 255, 255, // opaque
		0, 0, 0, 0, // transparent
	}
	img := unpremultiply(pixels, 3, 1)

	assert.Equal(t, color.NRGBA{R: 255, G: 127, B: 0, A: 128}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(2, 0))
}

func TestWritePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, writePNG(path, src))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := png.Decode(f)
	require.NoError(t, err)
	r, g, b, a := got.At(1, 1).RGBA()
	assert.Equal(t, []uint32{10, 20, 30, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})

	require.Error(t, writePNG(filepath.Join(t.TempDir(), "missing", "shot.png"), src))
}

func TestEngineScreenshot_Queues(t *testing.T) {
	e := &Engine{}
	e.Screenshot("a")
	e.Screenshot("b")
	assert.Equal(t, []string{"a", "b"}, e.shotQueue)
}
