package metadata

/**
 * @brief How a buffer or texture may be bound to the pipeline.
 * Fixed when the object is created.
 */
type BindFlags uint32

const (
	BindNone BindFlags = 0
	/** @brief Buffer can be bound as a uniform buffer. */
	BindUniformBuffer BindFlags = 0x1
	/** @brief Object can be read by shaders through a view. */
	BindShaderResource BindFlags = 0x2
	/** @brief Object can be written by shaders through a view. */
	BindUnorderedAccess BindFlags = 0x4
	/** @brief Texture can be a color attachment. */
	BindRenderTarget BindFlags = 0x8
	/** @brief Texture can be a depth-stencil attachment. */
	BindDepthStencil BindFlags = 0x10
)

/** @brief The access a buffer view grants. */
type BufferViewType int

const (
	BufferViewShaderResource BufferViewType = iota
	BufferViewUnorderedAccess
)

/** @brief The access a texture view grants. */
type TextureViewType int

const (
	TextureViewShaderResource TextureViewType = iota
	TextureViewUnorderedAccess
)
