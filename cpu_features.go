package striate

import (
	"golang.org/x/sys/cpu"
)

// detectFeatures lists the vector extensions of the host CPU that are
// reported in Device.Features.
func detectFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}

	add(cpu.X86.HasSSE41 || cpu.X86.HasSSE42, "sse4")
	add(cpu.X86.HasAVX, "avx")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasFMA, "fma")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.X86.HasAVX512BW, "avx512bw")

	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasFP, "fp")
	add(cpu.ARM64.HasASIMDHP, "asimdhp")
	add(cpu.ARM64.HasSVE, "sve")
	return features
}

// HasFeature reports whether the device advertises the named extension.
func (d *Device) HasFeature(name string) bool {
	for _, f := range d.Features {
		if f == name {
			return true
		}
	}
	return false
}
