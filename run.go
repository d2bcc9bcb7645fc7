package rowan

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// Game supplies frames to an Engine.
type Game interface {
	// Init runs once before the first tick. Register textures and target
	// groups and create cameras here.
	Init(e *Engine) error

	// Update advances one logic tick and returns the sealed command list to
	// draw, or nil to keep drawing the previous one. Returning ErrStop ends
	// the loop without error.
	Update(e *Engine) (*CommandList, error)
}

// Engine adapts a Game to ebiten.Game. Layout feeds the screen resolution,
// Update asks the game for a sealed frame and publishes it to a latest-frame
// slot, Draw executes whatever frame is newest.
type Engine struct {
	cfg     RunConfig
	game    Game
	screen  *Screen
	backend *EbitenBackend
	builder *FrameBuilder

	latest  atomic.Pointer[CommandList]
	drawErr atomic.Pointer[drawFailure]
	ticks   uint64

	shotMu    sync.Mutex
	shotQueue []string
}

type drawFailure struct{ err error }

// NewEngine validates cfg, creates the screen, backend and builder, and runs
// game.Init.
func NewEngine(cfg RunConfig, game Game) (*Engine, error) {
	if game == nil {
		return nil, fmt.Errorf("rowan: new engine: game: %w", ErrNilReference)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		game:    game,
		screen:  NewScreen(mgl32.Vec2{float32(cfg.Width), float32(cfg.Height)}),
		backend: NewEbitenBackend(nil, nil),
		builder: &FrameBuilder{Debug: cfg.Debug},
	}
	if err := game.Init(e); err != nil {
		return nil, fmt.Errorf("rowan: init game: %w", err)
	}
	return e, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() RunConfig { return e.cfg }

// Screen returns the screen state cameras should observe.
func (e *Engine) Screen() *Screen { return e.screen }

// Backend returns the backend, for registering textures and target groups.
func (e *Engine) Backend() *EbitenBackend { return e.backend }

// Builder returns the frame builder. It belongs to the logic tick; use it
// only from Game.Update.
func (e *Engine) Builder() *FrameBuilder { return e.builder }

// NewCamera creates a camera on the engine's screen using the configured
// resize policy, which options may override.
func (e *Engine) NewCamera(options ...CameraOption) (*Camera, error) {
	opts := append([]CameraOption{WithResizePolicy(e.cfg.ResizePolicy)}, options...)
	return NewCamera(e.screen, opts...)
}

// Ticks returns the number of completed logic ticks.
func (e *Engine) Ticks() uint64 { return e.ticks }

// Update implements ebiten.Game.
func (e *Engine) Update() error {
	if f := e.drawErr.Load(); f != nil {
		return f.err
	}
	list, err := e.game.Update(e)
	if errors.Is(err, ErrStop) {
		return ebiten.Termination
	}
	if err != nil {
		return err
	}
	if list != nil {
		if !list.Sealed() {
			return fmt.Errorf("rowan: game update returned unsealed command list: %w", ErrInvalidState)
		}
		e.latest.Store(list)
	}
	e.ticks++
	return nil
}

// Draw implements ebiten.Game. A failed frame is reported from the next
// Update, which stops the loop.
func (e *Engine) Draw(screen *ebiten.Image) {
	list := e.latest.Load()
	if list == nil {
		return
	}
	e.backend.SetScreen(screen)
	if err := list.Execute(e.backend); err != nil {
		Logger().Error("draw frame failed", "err", err)
		e.drawErr.CompareAndSwap(nil, &drawFailure{err: err})
		return
	}
	e.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The screen resolution follows the outside
// size, notifying resolution subscribers on change.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	e.screen.SetResolution(mgl32.Vec2{float32(outsideWidth), float32(outsideHeight)})
	return outsideWidth, outsideHeight
}

// Run opens a window configured by cfg and drives game until it returns
// ErrStop, fails, or the window is closed.
func Run(cfg RunConfig, game Game) error {
	e, err := NewEngine(cfg, game)
	if err != nil {
		return err
	}
	cfg = e.cfg
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetTPS(cfg.TPS)
	Logger().Info("starting", "title", cfg.Title, "width", cfg.Width, "height", cfg.Height, "tps", cfg.TPS)

	if err := ebiten.RunGame(e); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
