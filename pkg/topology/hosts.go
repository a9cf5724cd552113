package topology

import "fmt"

// HostList builds host names per kind in the order humans, drones, sensors,
// vehicles, each numbered from zero: h0, h1, ..., d0, ..., s0, ..., v0, ...
func HostList(humans, drones, sensors, vehicles int) []string {
	hosts := make([]string, 0, humans+drones+sensors+vehicles)
	for _, group := range []struct {
		kind  Kind
		count int
	}{
		{KindHuman, humans},
		{KindDrone, drones},
		{KindSensor, sensors},
		{KindVehicle, vehicles},
	} {
		for i := 0; i < group.count; i++ {
			hosts = append(hosts, fmt.Sprintf("%c%d", group.kind.Prefix(), i))
		}
	}
	return hosts
}
