// Package rowan is the rendering core of a 2D/3D game engine built on
// [Ebitengine].
//
// Rowan separates building a frame from drawing it. Game logic resolves
// sprites against a [TextureAtlas], projects them through a [Camera], and
// records the result as an immutable [CommandList]. Once sealed, the list
// can be handed to the render side and executed by a [Backend] such as
// [EbitenBackend].
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	cfg, _ := rowan.LoadRunConfigFile("game.toml")
//	rowan.Run(cfg, &myGame{})
//
// where myGame implements [Game]: Init registers textures and creates a
// camera, Update builds one frame per tick:
//
//	func (g *myGame) Update(e *rowan.Engine) (*rowan.CommandList, error) {
//		g.cam.Update(1.0 / 60)
//		g.cam.UpdateFrustum()
//		return e.Builder().Build(rowan.FrameRequest{
//			Camera:  g.cam,
//			Cull:    true,
//			Sprites: g.sprites,
//		})
//	}
//
// # Texture atlases
//
// A [TextureAtlas] is built once from a [Descriptor], decoded from the
// binary format with [DecodeDescriptor] or imported from TexturePacker JSON
// with [ParseTexturePackerJSON]. Frames are looked up by name or by the
// [HashID] of the name.
//
// # Cameras
//
// A [Camera] produces left-handed orthographic or perspective projections.
// Under [ResizeScaleWithScreen] its viewport follows the [Screen]
// resolution proportionally. Pans are animated with [gween].
//
// # Commands
//
// Commands refer to textures and render targets through generation-checked
// [Handle] values held in a [Registry]. A handle whose resource was removed
// fails at execution with [ErrStaleHandle] rather than touching freed
// memory. A [Pipeline] passes sealed lists between goroutines.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package rowan
