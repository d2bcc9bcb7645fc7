package rowan

import (
	"time"
)

// frameStats holds per-frame build metrics. Only populated when
// FrameBuilder.Debug is true.
type frameStats struct {
	buildTime time.Duration
	commands  CommandStats
	culled    int
	batches   int
}

// debugLog reports frame stats through the package logger at debug level.
func (fb *FrameBuilder) debugLog(stats frameStats) {
	if !fb.Debug {
		return
	}
	Logger().Debug("frame built",
		"build", stats.buildTime,
		"instances", stats.commands.Count(CommandRenderInstance),
		"restores", stats.commands.Count(CommandRestoreRenderTargetGroup),
		"culled", stats.culled,
		"batches", stats.batches,
	)
}

// batchKey groups render instances that a batching backend could submit in
// one draw call.
type batchKey struct {
	texture TextureHandle
	blend   BlendMode
}

// countBatches counts contiguous runs of RenderInstance commands sharing the
// same texture and blend mode. Non-instance commands break a run.
func countBatches(l *CommandList) int {
	count := 0
	var prev batchKey
	inRun := false
	for _, cmd := range l.All() {
		ri, ok := cmd.(RenderInstanceCommand)
		if !ok {
			inRun = false
			continue
		}
		cur := batchKey{texture: ri.Texture(), blend: ri.BlendMode()}
		if !inRun || cur != prev {
			count++
			prev = cur
			inRun = true
		}
	}
	return count
}
