//go:build headless

package main

func init() {
	compiledFeatures = append(compiledFeatures, "graphic:headless")
}

// VulkanBackend wraps SoftwareBackend in headless builds. Uses the same
// type name so the rest of the codebase compiles unchanged regardless of
// the build tag.
type VulkanBackend struct {
	software *SoftwareBackend
}

func NewVulkanBackend(width, height int) *VulkanBackend {
	return &VulkanBackend{software: NewSoftwareBackend(width, height)}
}

func (vb *VulkanBackend) UpdateFramebufferWhole(words []uint32) {
	vb.software.UpdateFramebufferWhole(words)
}

func (vb *VulkanBackend) Render(out []byte) {
	vb.software.Render(out)
}

func (vb *VulkanBackend) Destroy() {
	vb.software.Destroy()
}
