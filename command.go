package rowan

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CommandType identifies the kind of a render command. The set is closed:
// every kind is listed here and Backend has one method per kind.
type CommandType uint8

const (
	CommandBegin                    CommandType = iota // start a frame on the screen
	CommandBeginWithTargetGroup                        // start a frame on an offscreen target
	CommandApplyCamera                                 // set the view-projection for later instances
	CommandRenderInstance                              // draw one textured quad
	CommandRestoreRenderTargetGroup                    // reallocate a target group after context loss
	CommandEnd                                         // finish the frame

	commandTypeCount
)

var commandTypeNames = [...]string{
	CommandBegin:                    "Begin",
	CommandBeginWithTargetGroup:     "BeginWithTargetGroup",
	CommandApplyCamera:              "ApplyCamera",
	CommandRenderInstance:           "RenderInstance",
	CommandRestoreRenderTargetGroup: "RestoreRenderTargetGroup",
	CommandEnd:                      "End",
}

// String returns the name of the command kind.
func (t CommandType) String() string {
	if int(t) < len(commandTypeNames) {
		return commandTypeNames[t]
	}
	return fmt.Sprintf("CommandType(%d)", uint8(t))
}

// Command is one immutable render operation. Only the types in this package
// implement it. Construct commands with their New functions; a zero-value
// command that skipped construction is rejected by CommandList.Append.
type Command interface {
	// Type returns the command's kind.
	Type() CommandType

	// validate reports a broken construction invariant.
	validate() error
}

// BeginCommand starts a frame that renders to the screen.
type BeginCommand struct {
	clearColor Color
}

// NewBeginCommand returns a Begin command that clears the screen to clear.
func NewBeginCommand(clear Color) BeginCommand {
	return BeginCommand{clearColor: clear}
}

// Type implements Command.
func (BeginCommand) Type() CommandType { return CommandBegin }

// ClearColor returns the color the target is cleared to.
func (c BeginCommand) ClearColor() Color { return c.clearColor }

func (BeginCommand) validate() error { return nil }

// BeginWithTargetGroupCommand starts a frame that renders to an offscreen
// target group.
type BeginWithTargetGroupCommand struct {
	group      TargetGroupHandle
	clearColor Color
}

// NewBeginWithTargetGroupCommand returns a command that begins rendering to
// group. The zero handle is rejected with ErrNilReference.
func NewBeginWithTargetGroupCommand(group TargetGroupHandle, clear Color) (BeginWithTargetGroupCommand, error) {
	c := BeginWithTargetGroupCommand{group: group, clearColor: clear}
	if err := c.validate(); err != nil {
		return BeginWithTargetGroupCommand{}, err
	}
	return c, nil
}

// Type implements Command.
func (BeginWithTargetGroupCommand) Type() CommandType { return CommandBeginWithTargetGroup }

// TargetGroup returns the target rendered to.
func (c BeginWithTargetGroupCommand) TargetGroup() TargetGroupHandle { return c.group }

// ClearColor returns the color the target is cleared to.
func (c BeginWithTargetGroupCommand) ClearColor() Color { return c.clearColor }

func (c BeginWithTargetGroupCommand) validate() error {
	if c.group.IsZero() {
		return fmt.Errorf("rowan: %v command: target group: %w", c.Type(), ErrNilReference)
	}
	return nil
}

// ApplyCameraCommand sets the camera used by subsequent RenderInstance
// commands.
type ApplyCameraCommand struct {
	position       mgl32.Vec3
	viewProjection mgl32.Mat4
	set            bool
}

// NewApplyCameraCommand returns a command applying the given camera position
// and view-projection matrix. Matrices containing NaN or Inf are rejected.
func NewApplyCameraCommand(position mgl32.Vec3, viewProjection mgl32.Mat4) (ApplyCameraCommand, error) {
	c := ApplyCameraCommand{position: position, viewProjection: viewProjection, set: true}
	if err := c.validate(); err != nil {
		return ApplyCameraCommand{}, err
	}
	return c, nil
}

// NewApplyCameraCommandFrom snapshots cam's position and view-projection.
func NewApplyCameraCommandFrom(cam *Camera) (ApplyCameraCommand, error) {
	if cam == nil {
		return ApplyCameraCommand{}, fmt.Errorf("rowan: %v command: camera: %w", CommandApplyCamera, ErrNilReference)
	}
	return NewApplyCameraCommand(cam.Position(), cam.ViewProjection())
}

// Type implements Command.
func (ApplyCameraCommand) Type() CommandType { return CommandApplyCamera }

// Position returns the camera position in world space.
func (c ApplyCameraCommand) Position() mgl32.Vec3 { return c.position }

// ViewProjection returns the combined projection·view matrix.
func (c ApplyCameraCommand) ViewProjection() mgl32.Mat4 { return c.viewProjection }

func (c ApplyCameraCommand) validate() error {
	if !c.set {
		return fmt.Errorf("rowan: %v command: view-projection: %w", c.Type(), ErrNilReference)
	}
	if !finiteMat4(c.viewProjection) || !finiteVec3(c.position) {
		return fmt.Errorf("rowan: %v command: non-finite camera data: %w", c.Type(), ErrInvalidCommand)
	}
	return nil
}

// RenderInstanceCommand draws one textured quad. The quad is the unit square
// [0,1]×[0,1] mapped to world space by World; UVs selects the texture region.
type RenderInstanceCommand struct {
	texture TextureHandle
	uvs     UVs
	world   mgl32.Mat4
	color   Color
	blend   BlendMode
}

// NewRenderInstanceCommand returns a command drawing the uvs region of
// texture over the unit quad transformed by world. The zero texture handle
// is rejected with ErrNilReference.
func NewRenderInstanceCommand(texture TextureHandle, uvs UVs, world mgl32.Mat4, tint Color, blend BlendMode) (RenderInstanceCommand, error) {
	c := RenderInstanceCommand{texture: texture, uvs: uvs, world: world, color: tint, blend: blend}
	if err := c.validate(); err != nil {
		return RenderInstanceCommand{}, err
	}
	return c, nil
}

// Type implements Command.
func (RenderInstanceCommand) Type() CommandType { return CommandRenderInstance }

// Texture returns the texture sampled.
func (c RenderInstanceCommand) Texture() TextureHandle { return c.texture }

// UVs returns the sampled texture region.
func (c RenderInstanceCommand) UVs() UVs { return c.uvs }

// World returns the unit-quad-to-world matrix.
func (c RenderInstanceCommand) World() mgl32.Mat4 { return c.world }

// Color returns the tint.
func (c RenderInstanceCommand) Color() Color { return c.color }

// BlendMode returns the compositing mode.
func (c RenderInstanceCommand) BlendMode() BlendMode { return c.blend }

func (c RenderInstanceCommand) validate() error {
	if c.texture.IsZero() {
		return fmt.Errorf("rowan: %v command: texture: %w", c.Type(), ErrNilReference)
	}
	if !finiteMat4(c.world) {
		return fmt.Errorf("rowan: %v command: non-finite world matrix: %w", c.Type(), ErrInvalidCommand)
	}
	if c.uvs.S < 0 || c.uvs.T < 0 {
		return fmt.Errorf("rowan: %v command: negative UV extent %vx%v: %w", c.Type(), c.uvs.S, c.uvs.T, ErrInvalidCommand)
	}
	return nil
}

// RestoreRenderTargetGroupCommand asks the backend to bring a lost target
// group back before anything draws to it.
type RestoreRenderTargetGroupCommand struct {
	group TargetGroupHandle
}

// NewRestoreRenderTargetGroupCommand returns a restore command for group.
// The zero handle is rejected with ErrNilReference.
func NewRestoreRenderTargetGroupCommand(group TargetGroupHandle) (RestoreRenderTargetGroupCommand, error) {
	c := RestoreRenderTargetGroupCommand{group: group}
	if err := c.validate(); err != nil {
		return RestoreRenderTargetGroupCommand{}, err
	}
	return c, nil
}

// Type implements Command.
func (RestoreRenderTargetGroupCommand) Type() CommandType { return CommandRestoreRenderTargetGroup }

// TargetGroup returns the target group to restore.
func (c RestoreRenderTargetGroupCommand) TargetGroup() TargetGroupHandle { return c.group }

func (c RestoreRenderTargetGroupCommand) validate() error {
	if c.group.IsZero() {
		return fmt.Errorf("rowan: %v command: target group: %w", c.Type(), ErrNilReference)
	}
	return nil
}

// EndCommand finishes the frame started by the last Begin command.
type EndCommand struct{}

// NewEndCommand returns an End command.
func NewEndCommand() EndCommand { return EndCommand{} }

// Type implements Command.
func (EndCommand) Type() CommandType { return CommandEnd }

func (EndCommand) validate() error { return nil }

func finiteMat4(m mgl32.Mat4) bool {
	for _, v := range m {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finiteVec3(v mgl32.Vec3) bool {
	for _, f := range v {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return false
		}
	}
	return true
}
