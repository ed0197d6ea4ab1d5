package probe

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/opsroot/healthmon/model"
)

// GPUProbe reads utilization and VRAM via NVML. Hosts without an NVIDIA
// driver simply report zeros; initialization is attempted once.
type GPUProbe struct {
	tried     bool
	available bool
	device    nvml.Device
}

func NewGPUProbe() *GPUProbe { return &GPUProbe{} }

func (p *GPUProbe) Collect(b *model.SampleBuilder) {
	if !p.tried {
		p.tried = true
		if ret := nvml.Init(); ret == nvml.SUCCESS {
			if dev, ret := nvml.DeviceGetHandleByIndex(0); ret == nvml.SUCCESS {
				p.device = dev
				p.available = true
			}
		}
	}
	if !p.available {
		return
	}

	if util, ret := p.device.GetUtilizationRates(); ret == nvml.SUCCESS {
		b.GPUUtilPercent = float64(util.Gpu)
	}
	if mi, ret := p.device.GetMemoryInfo(); ret == nvml.SUCCESS && mi.Total > 0 {
		b.GPUMemoryUsedPercent = float64(mi.Used) / float64(mi.Total) * 100
	}
}

// Close shuts NVML down. Safe to call when init never succeeded.
func (p *GPUProbe) Close() {
	if p.available {
		_ = nvml.Shutdown()
	}
}
