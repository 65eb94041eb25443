package sprite

import "errors"

// Draw-setup contract errors. Every one of these is surfaced before any
// draw is recorded; the shading stages themselves have no runtime error
// taxonomy.
var (
	// ErrNilDevice is returned when a pipeline or renderer is created
	// without a HAL device.
	ErrNilDevice = errors.New("sprite: device is nil")

	// ErrNilQueue is returned when a pipeline or renderer is created
	// without a HAL queue.
	ErrNilQueue = errors.New("sprite: queue is nil")

	// ErrNoView is returned when a draw is issued before a View has been
	// bound for the frame.
	ErrNoView = errors.New("sprite: no view bound for frame")

	// ErrNoTexture is returned when a draw is issued without a texture
	// binding for group 1.
	ErrNoTexture = errors.New("sprite: no texture bound")

	// ErrNoTarget is returned by the software renderer when no
	// framebuffer is attached.
	ErrNoTarget = errors.New("sprite: no render target")

	// ErrMissingColorAttribute is returned when a draw uses a colored
	// variant but the vertex data carries no color attribute.
	ErrMissingColorAttribute = errors.New("sprite: colored variant requires a color vertex attribute")

	// ErrUnexpectedColorAttribute is returned when a draw supplies color
	// data to a variant compiled without the color attribute.
	ErrUnexpectedColorAttribute = errors.New("sprite: variant compiled without color attribute")

	// ErrMissingTonemapper is returned when a draw uses a tonemap variant
	// but no tonemapping curve is bound.
	ErrMissingTonemapper = errors.New("sprite: tonemap variant requires a tonemapper")

	// ErrEmptyBatch is returned when a draw is issued with no sprites.
	ErrEmptyBatch = errors.New("sprite: batch is empty")

	// ErrBatchFull is returned by Batch.Add once a batch holds
	// MaxQuadCapacity sprites. uint16 quad indices wrap past that.
	ErrBatchFull = errors.New("sprite: batch full")

	// ErrShaderEmpty is returned when an embedded shader source is missing.
	ErrShaderEmpty = errors.New("sprite: shader source is empty")

	// ErrUnbalancedShaderDef is returned by the shader preprocessor when
	// an #ifdef has no matching #endif (or the reverse).
	ErrUnbalancedShaderDef = errors.New("sprite: unbalanced #ifdef/#endif in shader source")

	// ErrFrameNotStarted is returned when Draw or Flush is called outside
	// a BeginFrame/Flush pair.
	ErrFrameNotStarted = errors.New("sprite: frame not started")
)
