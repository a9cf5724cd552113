package traffic

import (
	"github.com/dd0wney/icnsim-workload/pkg/topology"
	"github.com/dd0wney/icnsim-workload/pkg/validation"
)

// Host is a traffic endpoint with its kind resolved once.
type Host struct {
	Name string
	Kind topology.Kind
}

// ResolveHosts derives the kind of every host name. Names that cannot be
// written to a queue file are rejected.
func ResolveHosts(names []string) ([]Host, error) {
	hosts := make([]Host, 0, len(names))
	for _, name := range names {
		if err := validation.ValidateHostName(name); err != nil {
			return nil, NewError("resolve").Host(name).Cause(err).Err()
		}
		kind, err := topology.KindFromName(name)
		if err != nil {
			return nil, NewError("resolve").Host(name).Cause(err).Err()
		}
		hosts = append(hosts, Host{Name: name, Kind: kind})
	}
	return hosts, nil
}

// eligibleReceivers returns the hosts other than origin that accept class,
// in host order.
func eligibleReceivers(class TrafficClass, origin string, hosts []Host) []Host {
	out := make([]Host, 0, len(hosts))
	for _, h := range hosts {
		if h.Name != origin && class.Accepts(h.Kind) {
			out = append(out, h)
		}
	}
	return out
}
