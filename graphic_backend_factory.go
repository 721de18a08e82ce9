// graphic_backend_factory.go - Default GraphicBackend construction

package main

// NewDefaultGraphicBackend constructs the worker's built-in backend: a real
// Vulkan-backed implementation, or its headless software stand-in under the
// "headless" build tag. Either satisfies GraphicBackend.
func NewDefaultGraphicBackend(width, height int) GraphicBackend {
	return NewVulkanBackend(width, height)
}
