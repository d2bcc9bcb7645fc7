package rowan

import (
	"fmt"
	"hash/crc32"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// RawFrame is one packed frame record exactly as the offline packer writes
// it. All values are in texels.
type RawFrame struct {
	TexCoordU      int16 // left edge of the cropped image within the atlas page
	TexCoordV      int16 // top edge of the cropped image within the atlas page
	CroppedWidth   int16 // width of the cropped image
	CroppedHeight  int16 // height of the cropped image
	OffsetX        int16 // horizontal crop offset from the original image's left edge
	OffsetY        int16 // vertical crop offset from the original image's top edge
	OriginalWidth  int16 // untrimmed width as authored
	OriginalHeight int16 // untrimmed height as authored
}

// Descriptor is the packer's description of one atlas page. Frames and Keys
// are parallel: Keys[i] is the HashID of the name that produced Frames[i].
type Descriptor struct {
	Frames []RawFrame
	Keys   []uint32
	Width  uint32 // atlas page width in pixels
	Height uint32 // atlas page height in pixels
}

// UVs is a normalized texture rectangle. U,V is the top-left corner and S,T
// the extent, all in [0, 1] of the atlas page.
type UVs struct {
	U, V, S, T float32
}

// Frame is the normalized metadata of one atlas frame.
type Frame struct {
	UVs          UVs
	CroppedSize  mgl32.Vec2
	OriginalSize mgl32.Vec2
	Offset       mgl32.Vec2
}

// TextureAtlas maps frame ids to their placement within a single atlas page.
//
// An atlas is populated exactly once by Build and is immutable afterwards, so
// any number of goroutines may read it concurrently without locking.
type TextureAtlas struct {
	frames map[uint32]Frame
	width  uint32
	height uint32
	built  bool
}

// NewTextureAtlas returns an empty atlas ready for Build.
func NewTextureAtlas() *TextureAtlas {
	return &TextureAtlas{}
}

// HashID returns the key the offline packer stores for a frame name: the
// CRC-32 (IEEE) checksum of the name's UTF-8 bytes.
func HashID(id string) uint32 {
	return crc32.ChecksumIEEE([]byte(id))
}

// Build populates the atlas from desc. The descriptor must have equal-length
// Frames and Keys, non-zero dimensions and unique keys; otherwise Build
// returns an error wrapping ErrMalformedDescriptor and the atlas is left
// empty. Calling Build on an atlas that was already built returns an error
// wrapping ErrInvalidState.
func (a *TextureAtlas) Build(desc *Descriptor) error {
	if a.built {
		return fmt.Errorf("rowan: atlas build: already built: %w", ErrInvalidState)
	}
	if desc == nil {
		return fmt.Errorf("rowan: atlas build: nil descriptor: %w", ErrNilReference)
	}
	if len(desc.Frames) != len(desc.Keys) {
		return fmt.Errorf("rowan: atlas build: %d frames but %d keys: %w",
			len(desc.Frames), len(desc.Keys), ErrMalformedDescriptor)
	}
	if desc.Width == 0 || desc.Height == 0 {
		return fmt.Errorf("rowan: atlas build: page size %dx%d: %w",
			desc.Width, desc.Height, ErrMalformedDescriptor)
	}

	// Validate before touching a.frames so a failure never leaves a partially
	// populated atlas behind.
	frames := make(map[uint32]Frame, len(desc.Keys))
	w := float32(desc.Width)
	h := float32(desc.Height)
	for i, raw := range desc.Frames {
		key := desc.Keys[i]
		if _, dup := frames[key]; dup {
			return fmt.Errorf("rowan: atlas build: duplicate key %#08x at index %d: %w",
				key, i, ErrMalformedDescriptor)
		}
		frames[key] = Frame{
			UVs: UVs{
				U: float32(raw.TexCoordU) / w,
				V: float32(raw.TexCoordV) / h,
				S: float32(raw.CroppedWidth) / w,
				T: float32(raw.CroppedHeight) / h,
			},
			CroppedSize:  mgl32.Vec2{float32(raw.CroppedWidth), float32(raw.CroppedHeight)},
			OriginalSize: mgl32.Vec2{float32(raw.OriginalWidth), float32(raw.OriginalHeight)},
			Offset:       mgl32.Vec2{float32(raw.OffsetX), float32(raw.OffsetY)},
		}
	}

	a.frames = frames
	a.width = desc.Width
	a.height = desc.Height
	a.built = true
	Logger().Info("atlas built", "frames", len(frames), "width", a.width, "height", a.height)
	return nil
}

// Width returns the atlas page width in pixels as supplied to Build.
func (a *TextureAtlas) Width() uint32 { return a.width }

// Height returns the atlas page height in pixels as supplied to Build.
func (a *TextureAtlas) Height() uint32 { return a.height }

// Len returns the number of frames in the atlas.
func (a *TextureAtlas) Len() int { return len(a.frames) }

// Keys returns every frame key in ascending order.
func (a *TextureAtlas) Keys() []uint32 {
	keys := make([]uint32, 0, len(a.frames))
	for k := range a.frames {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// HasFrame reports whether a frame with the given name exists.
func (a *TextureAtlas) HasFrame(id string) bool {
	return a.HasFrameByHash(HashID(id))
}

// HasFrameByHash reports whether a frame with the given key exists.
func (a *TextureAtlas) HasFrameByHash(key uint32) bool {
	_, ok := a.frames[key]
	return ok
}

// Frame returns the frame with the given name. A missing frame yields an
// error wrapping ErrNotFound; use HasFrame first when absence is expected.
func (a *TextureAtlas) Frame(id string) (Frame, error) {
	f, ok := a.frames[HashID(id)]
	if !ok {
		return Frame{}, fmt.Errorf("rowan: atlas frame %q: %w", id, ErrNotFound)
	}
	return f, nil
}

// FrameByHash returns the frame with the given key.
func (a *TextureAtlas) FrameByHash(key uint32) (Frame, error) {
	f, ok := a.frames[key]
	if !ok {
		return Frame{}, fmt.Errorf("rowan: atlas frame %#08x: %w", key, ErrNotFound)
	}
	return f, nil
}

// FrameUVs returns the normalized UV rectangle of the named frame.
func (a *TextureAtlas) FrameUVs(id string) (UVs, error) {
	f, err := a.Frame(id)
	return f.UVs, err
}

// FrameUVsByHash returns the normalized UV rectangle of the keyed frame.
func (a *TextureAtlas) FrameUVsByHash(key uint32) (UVs, error) {
	f, err := a.FrameByHash(key)
	return f.UVs, err
}

// CroppedFrameSize returns the cropped size of the named frame in texels.
func (a *TextureAtlas) CroppedFrameSize(id string) (mgl32.Vec2, error) {
	f, err := a.Frame(id)
	return f.CroppedSize, err
}

// CroppedFrameSizeByHash returns the cropped size of the keyed frame in texels.
func (a *TextureAtlas) CroppedFrameSizeByHash(key uint32) (mgl32.Vec2, error) {
	f, err := a.FrameByHash(key)
	return f.CroppedSize, err
}

// OriginalFrameSize returns the untrimmed size of the named frame.
func (a *TextureAtlas) OriginalFrameSize(id string) (mgl32.Vec2, error) {
	f, err := a.Frame(id)
	return f.OriginalSize, err
}

// OriginalFrameSizeByHash returns the untrimmed size of the keyed frame.
func (a *TextureAtlas) OriginalFrameSizeByHash(key uint32) (mgl32.Vec2, error) {
	f, err := a.FrameByHash(key)
	return f.OriginalSize, err
}

// FrameOffset returns the crop offset of the named frame.
func (a *TextureAtlas) FrameOffset(id string) (mgl32.Vec2, error) {
	f, err := a.Frame(id)
	return f.Offset, err
}

// FrameOffsetByHash returns the crop offset of the keyed frame.
func (a *TextureAtlas) FrameOffsetByHash(key uint32) (mgl32.Vec2, error) {
	f, err := a.FrameByHash(key)
	return f.Offset, err
}
