package detector

import (
	"fmt"
	"time"

	"github.com/opsroot/healthmon/model"
	"github.com/opsroot/healthmon/probe"
)

const (
	dnsSlowMs        = 300
	dnsCritMs        = 1000
	netEventCooldown = 2 * time.Minute
)

// NetworkDetector covers name-resolution latency, the best cheap proxy for
// "the network feels broken" from a user's seat.
type NetworkDetector struct {
	probe *probe.NetworkProbe

	slowDNS *condition
}

func NewNetworkDetector() *NetworkDetector {
	return &NetworkDetector{
		probe:   probe.NewNetworkProbe(),
		slowDNS: newCondition(2, netEventCooldown),
	}
}

func (d *NetworkDetector) Name() string { return "network" }

func (d *NetworkDetector) Collect(b *model.SampleBuilder) { d.probe.Collect(b) }

func (d *NetworkDetector) Analyze(s *model.Sample, history []model.TrimmedSample) model.HealthAssessment {
	now := s.Timestamp
	score := 100.0
	var events []model.MonitorEvent
	var hint string

	// 0 means the lookup failed or never ran: no data, not slow.
	if s.DNSLatencyMs > dnsSlowMs {
		score -= 25
		hint = "name resolution slow"
		sev := model.SeverityWarning
		if s.DNSLatencyMs > dnsCritMs {
			score -= 15
			sev = model.SeverityCritical
		}
		if d.slowDNS.Observe(true, now) {
			events = append(events, model.NewEvent("net.dns",
				fmt.Sprintf("DNS resolution taking %.0fms", s.DNSLatencyMs), sev,
				"Every connection waits on DNS first; check resolver config and upstream latency"))
		}
	} else {
		d.slowDNS.Observe(false, now)
	}

	return model.HealthAssessment{
		Score: model.HealthScore{
			Domain:     d.Name(),
			Score:      clampScore(score),
			Confidence: trendConfidence(len(history)),
			Hint:       hint,
		},
		Events: events,
	}
}
