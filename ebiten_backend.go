package rowan

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenBackend executes command lists with ebiten. Consecutive
// RenderInstance commands sharing a texture and blend mode are coalesced
// into a single DrawTriangles32 call.
//
// Handles are resolved against the registries each time a command uses them,
// so a texture or target group removed after the list was built fails that
// command with ErrStaleHandle instead of drawing freed memory.
//
// A command that fails inside a frame aborts it: the pending batch is
// discarded and the next Begin starts clean.
//
// An EbitenBackend is used from the render goroutine only.
type EbitenBackend struct {
	textures *Registry[*ebiten.Image]
	targets  *Registry[*TargetGroup]

	screen *ebiten.Image

	inFrame   bool
	target    *ebiten.Image
	targetW   float32
	targetH   float32
	hasCamera bool
	viewProj  mgl32.Mat4

	batchVerts []ebiten.Vertex
	batchInds  []uint32
	batchKey   batchKey
	batchPage  *ebiten.Image

	drawCalls     int
	lastDrawCalls int
}

// NewEbitenBackend returns a backend resolving handles against textures and
// targets. Nil registries are replaced with empty ones.
func NewEbitenBackend(textures *Registry[*ebiten.Image], targets *Registry[*TargetGroup]) *EbitenBackend {
	if textures == nil {
		textures = NewRegistry[*ebiten.Image]()
	}
	if targets == nil {
		targets = NewRegistry[*TargetGroup]()
	}
	return &EbitenBackend{textures: textures, targets: targets}
}

// Textures returns the texture registry.
func (b *EbitenBackend) Textures() *Registry[*ebiten.Image] { return b.textures }

// TargetGroups returns the target group registry.
func (b *EbitenBackend) TargetGroups() *Registry[*TargetGroup] { return b.targets }

// SetScreen sets the image Begin renders to. Call it each frame from
// ebiten's Draw before executing the frame's list.
func (b *EbitenBackend) SetScreen(screen *ebiten.Image) { b.screen = screen }

// DrawCalls returns the number of draw calls issued by the last completed
// frame.
func (b *EbitenBackend) DrawCalls() int { return b.lastDrawCalls }

// Begin implements Backend.
func (b *EbitenBackend) Begin(cmd BeginCommand) error {
	if b.screen == nil {
		return fmt.Errorf("screen image: %w", ErrNilReference)
	}
	return b.begin(b.screen, cmd.ClearColor())
}

// BeginWithTargetGroup implements Backend.
func (b *EbitenBackend) BeginWithTargetGroup(cmd BeginWithTargetGroupCommand) error {
	g, err := b.targets.Get(cmd.TargetGroup())
	if err != nil {
		Logger().Warn("target group unavailable", "handle", cmd.TargetGroup(), "err", err)
		return b.abort(err)
	}
	img := g.Image()
	if img == nil {
		return b.abort(fmt.Errorf("target group %v lost and not restored: %w", cmd.TargetGroup(), ErrInvalidState))
	}
	return b.begin(img, cmd.ClearColor())
}

func (b *EbitenBackend) begin(target *ebiten.Image, clear Color) error {
	if b.inFrame {
		return b.abort(fmt.Errorf("begin inside an open frame: %w", ErrInvalidState))
	}
	b.inFrame = true
	b.target = target
	bounds := target.Bounds()
	b.targetW = float32(bounds.Dx())
	b.targetH = float32(bounds.Dy())
	b.hasCamera = false
	b.drawCalls = 0
	if clear == ColorTransparent {
		target.Clear()
	} else {
		target.Fill(clear.RGBA())
	}
	return nil
}

// ApplyCamera implements Backend.
func (b *EbitenBackend) ApplyCamera(cmd ApplyCameraCommand) error {
	if !b.inFrame {
		return fmt.Errorf("apply camera outside a frame: %w", ErrInvalidState)
	}
	b.flushBatch()
	b.viewProj = cmd.ViewProjection()
	b.hasCamera = true
	return nil
}

// RenderInstance implements Backend.
func (b *EbitenBackend) RenderInstance(cmd RenderInstanceCommand) error {
	if !b.inFrame {
		return fmt.Errorf("render instance outside a frame: %w", ErrInvalidState)
	}
	if !b.hasCamera {
		return b.abort(fmt.Errorf("render instance before apply camera: %w", ErrInvalidState))
	}
	page, err := b.textures.Get(cmd.Texture())
	if err != nil {
		Logger().Warn("texture unavailable, frame aborted", "handle", cmd.Texture(), "err", err)
		return b.abort(err)
	}
	key := batchKey{texture: cmd.Texture(), blend: cmd.BlendMode()}
	if len(b.batchVerts) > 0 && key != b.batchKey {
		b.flushBatch()
	}
	b.batchKey = key
	b.batchPage = page
	b.appendQuad(cmd, page)
	return nil
}

// RestoreRenderTargetGroup implements Backend.
func (b *EbitenBackend) RestoreRenderTargetGroup(cmd RestoreRenderTargetGroupCommand) error {
	g, err := b.targets.Get(cmd.TargetGroup())
	if err != nil {
		Logger().Warn("target group unavailable", "handle", cmd.TargetGroup(), "err", err)
		return b.abort(err)
	}
	if g.restore() {
		Logger().Info("target group restored", "handle", cmd.TargetGroup(), "width", g.Width(), "height", g.Height())
	}
	return nil
}

// End implements Backend.
func (b *EbitenBackend) End(EndCommand) error {
	if !b.inFrame {
		return fmt.Errorf("end without begin: %w", ErrInvalidState)
	}
	b.flushBatch()
	b.inFrame = false
	b.target = nil
	b.hasCamera = false
	b.lastDrawCalls = b.drawCalls
	return nil
}

// abort drops the open frame, if any, without drawing the pending batch and
// returns err.
func (b *EbitenBackend) abort(err error) error {
	b.batchVerts = b.batchVerts[:0]
	b.batchInds = b.batchInds[:0]
	b.batchPage = nil
	b.inFrame = false
	b.target = nil
	b.hasCamera = false
	return err
}

// appendQuad appends 4 vertices and 6 indices for one instance.
func (b *EbitenBackend) appendQuad(cmd RenderInstanceCommand, page *ebiten.Image) {
	verts := quadVertices(b.viewProj.Mul4(cmd.World()), cmd.UVs(), cmd.Color(), page.Bounds().Dx(), page.Bounds().Dy(), b.targetW, b.targetH)
	base := uint32(len(b.batchVerts))
	b.batchVerts = append(b.batchVerts, verts[:]...)

	// Two triangles: BL-BR-TL, BR-TR-TL
	b.batchInds = append(b.batchInds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// quadVertices projects the unit quad through mvp into target pixels (origin
// top-left) and maps its corners to texel coordinates on a pageW×pageH page.
// Unit-quad v runs upward while texture V runs downward.
func quadVertices(mvp mgl32.Mat4, uv UVs, tint Color, pageW, pageH int, targetW, targetH float32) [4]ebiten.Vertex {
	cr, cg, cb, ca := tint.premultiplied()
	pw := float32(pageW)
	ph := float32(pageH)

	var out [4]ebiten.Vertex
	for i, corner := range unitQuadCorners {
		clip := mvp.Mul4x1(corner)
		w := clip[3]
		if w == 0 {
			w = 1
		}
		ndcX := clip[0] / w
		ndcY := clip[1] / w
		out[i] = ebiten.Vertex{
			DstX:   (ndcX + 1) / 2 * targetW,
			DstY:   (1 - ndcY) / 2 * targetH,
			SrcX:   (uv.U + corner[0]*uv.S) * pw,
			SrcY:   (uv.V + (1-corner[1])*uv.T) * ph,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}
	return out
}

// flushBatch submits accumulated vertices as a single DrawTriangles32 call.
func (b *EbitenBackend) flushBatch() {
	if len(b.batchVerts) == 0 {
		return
	}
	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = b.batchKey.blend.EbitenBlend()
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha

	b.target.DrawTriangles32(b.batchVerts, b.batchInds, b.batchPage, &triOp)
	b.drawCalls++

	b.batchVerts = b.batchVerts[:0]
	b.batchInds = b.batchInds[:0]
	b.batchPage = nil
}
