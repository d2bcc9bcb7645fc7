package rowan

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountBatches(t *testing.T) {
	textures := NewRegistry[*ebiten.Image]()
	texA := textures.Insert(nil)
	texB := textures.Insert(nil)

	inst := func(tex TextureHandle, blend BlendMode) RenderInstanceCommand {
		cmd, err := NewRenderInstanceCommand(tex, UVs{S: 1, T: 1}, mgl32.Ident4(), ColorWhite, blend)
		require.NoError(t, err)
		return cmd
	}

	tests := []struct {
		name string
		cmds []Command
		want int
	}{
		{"empty", nil, 0},
		{"single run", []Command{inst(texA, BlendNormal), inst(texA, BlendNormal)}, 1},
		{"texture change", []Command{inst(texA, BlendNormal), inst(texB, BlendNormal), inst(texA, BlendNormal)}, 3},
		{"blend change", []Command{inst(texA, BlendNormal), inst(texA, BlendAdd)}, 2},
		{"camera breaks run", []Command{inst(texA, BlendNormal), mustCamera(t, 0), inst(texA, BlendNormal)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewCommandList(len(tt.cmds))
			for _, c := range tt.cmds {
				require.NoError(t, l.Append(c))
			}
			assert.Equal(t, tt.want, countBatches(l))
		})
	}
}
