package probe

import (
	"context"
	"net"
	"time"

	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/opsroot/healthmon/model"
)

var defaultResolver = &net.Resolver{}

const dnsProbeTimeout = 2 * time.Second

// NetworkProbe measures name-resolution latency against a fixed set of
// well-known hosts and aggregate interface throughput.
type NetworkProbe struct {
	hosts    []string
	next     int
	resolver *contextResolver

	prevBytes uint64
	prevAt    time.Time
}

// contextResolver is the small seam that lets tests supply a fake resolver.
type contextResolver struct {
	lookup func(ctx context.Context, host string) error
}

func NewNetworkProbe() *NetworkProbe {
	return &NetworkProbe{
		hosts: []string{"www.google.com", "www.cloudflare.com", "www.bing.com"},
	}
}

func (p *NetworkProbe) Collect(b *model.SampleBuilder) {
	b.DNSLatencyMs = p.measureDNS()

	counters, err := gnet.IOCounters(false)
	if err != nil || len(counters) == 0 {
		return
	}
	now := time.Now()
	total := counters[0].BytesRecv + counters[0].BytesSent
	if !p.prevAt.IsZero() && total >= p.prevBytes {
		elapsed := now.Sub(p.prevAt).Seconds()
		if elapsed > 0 {
			b.NetBytesPerSec = float64(total-p.prevBytes) / elapsed
		}
	}
	p.prevBytes = total
	p.prevAt = now
}

// measureDNS resolves one host per tick, rotating through the list, and
// returns wall-clock latency in milliseconds. 0 means the lookup failed or
// the network is unavailable, which downstream treats as "no data".
func (p *NetworkProbe) measureDNS() float64 {
	if len(p.hosts) == 0 {
		return 0
	}
	host := p.hosts[p.next%len(p.hosts)]
	p.next++

	ctx, cancel := context.WithTimeout(context.Background(), dnsProbeTimeout)
	defer cancel()

	start := time.Now()
	var err error
	if p.resolver != nil {
		err = p.resolver.lookup(ctx, host)
	} else {
		_, err = defaultResolver.LookupHost(ctx, host)
	}
	if err != nil {
		return 0
	}
	return float64(time.Since(start).Microseconds()) / 1000
}
