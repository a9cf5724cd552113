package traffic

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
)

// TrafficClass describes one kind of periodic data exchange.
type TrafficClass struct {
	ID           int           `validate:"gte=1"`
	TTL          time.Duration `validate:"gt=0"`
	Period       time.Duration `validate:"gt=0"`
	PayloadBytes int           `validate:"gt=0"`
	// ReceiverKinds lists the host kinds allowed to consume this class.
	ReceiverKinds []topology.Kind `validate:"required,min=1,dive,gte=1,lte=4"`
	// ReceiverRatio bounds the share of eligible receivers picked per step.
	// Zero or less means exactly one receiver.
	ReceiverRatio float64 `validate:"gte=0,lte=1"`
	// JitterRatio spreads each send around one period.
	JitterRatio float64 `validate:"gte=0,lte=1"`
}

// Accepts reports whether a host of the given kind may receive this class.
func (c TrafficClass) Accepts(kind topology.Kind) bool {
	return slices.Contains(c.ReceiverKinds, kind)
}

// OffsetBounds returns the inclusive send offset range in milliseconds.
func (c TrafficClass) OffsetBounds() (lo, hi int64) {
	period := float64(c.Period.Milliseconds())
	lo = int64(period - period*c.JitterRatio)
	hi = int64(period + period*c.JitterRatio)
	return lo, hi
}

func (c TrafficClass) String() string {
	kinds := make([]string, len(c.ReceiverKinds))
	for i, k := range c.ReceiverKinds {
		kinds[i] = k.String()
	}
	return fmt.Sprintf("id=%d ttl=%s period=%s payload=%d ratio=%f jitter=%f receivers=[%s]",
		c.ID, c.TTL, c.Period, c.PayloadBytes, c.ReceiverRatio, c.JitterRatio, strings.Join(kinds, " "))
}
