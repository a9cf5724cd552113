package traffic

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/dd0wney/icnsim-workload/pkg/logging"
	"github.com/dd0wney/icnsim-workload/pkg/validation"
)

// NewGenerator creates a queue generator whose random source is seeded
// with seed.
func NewGenerator(catalog *Catalog, seed int64, opts ...Option) (*Generator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is nil", ErrInvalidCatalog)
	}
	g := &Generator{
		catalog: catalog,
		rng:     rand.New(rand.NewSource(seed)),
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Catalog returns the catalog the generator draws classes from.
func (g *Generator) Catalog() *Catalog {
	return g.catalog
}

// Generate runs periodic generation for every class each host originates
// and merges the results. Unknown host kinds abort. A class without
// eligible receivers aborts unless the generator skips unreachable classes.
func (g *Generator) Generate(hostNames []string, mission time.Duration) (Queue, error) {
	start := time.Now()
	hosts, err := ResolveHosts(hostNames)
	if err != nil {
		g.recordQueue("periodic", "error", time.Since(start))
		return nil, err
	}

	g.logger.Info("generating data queue",
		logging.Count(len(hosts)),
		logging.Duration("mission", mission),
	)

	queues := make([]Queue, 0, len(hosts)*g.catalog.Len())
	for _, origin := range hosts {
		for _, class := range g.catalog.ClassesFor(origin.Kind) {
			q, err := g.Periodic(class, origin, hosts, mission)
			if err != nil {
				if g.skipUnreachable && errors.Is(err, ErrNoReceivers) {
					g.logger.Warn("skipping class without receivers",
						logging.Host(origin.Name),
						logging.ClassID(class.ID),
					)
					if g.metrics != nil {
						g.metrics.RecordSkippedClass(class.ID)
					}
					continue
				}
				g.recordQueue("periodic", "error", time.Since(start))
				g.logger.Error("data queue generation failed", logging.Error(err))
				return nil, err
			}
			g.logger.Debug("class generated",
				logging.Host(origin.Name),
				logging.Kind(origin.Kind.String()),
				logging.ClassID(class.ID),
				logging.Count(len(q)),
			)
			queues = append(queues, q)
		}
	}

	merged := Merge(queues...)
	g.recordEntries(merged)
	g.recordQueue("periodic", "success", time.Since(start))
	g.logger.Info("data queue generated",
		logging.Count(len(merged)),
		logging.Latency(time.Since(start)),
	)
	return merged, nil
}

// Periodic generates the entries origin sends for class during mission.
// Steps start at elapsed 0 and advance by one period while a full period
// still fits in the mission. Every selected receiver gets its own jittered
// send time around one period after the step. The sequence ID advances
// once per step.
func (g *Generator) Periodic(class TrafficClass, origin Host, hosts []Host, mission time.Duration) (Queue, error) {
	eligible := eligibleReceivers(class, origin.Name, hosts)
	if len(eligible) == 0 {
		return nil, NoReceiversError(origin.Name, class.ID)
	}

	q := make(Queue, 0)
	seq := 0
	for elapsed := time.Duration(0); elapsed+class.Period <= mission; elapsed += class.Period {
		receivers, err := g.pickReceivers(class, eligible)
		if err != nil {
			return nil, NewError("periodic").Host(origin.Name).Class(class.ID).Cause(err).Err()
		}
		for _, r := range receivers {
			q = append(q, Entry{
				TimestampMs: elapsed.Milliseconds() + g.sendOffset(class),
				Package: DataPackage{
					ClassID:      class.ID,
					SequenceID:   seq,
					PayloadBytes: class.PayloadBytes,
					Origin:       origin.Name,
					Destination:  r.Name,
				},
			})
		}
		seq++
	}
	return q, nil
}

// pickReceivers selects the receivers of one step. With a positive ratio
// at most floor(ratio*n) receivers are drawn, and all of them when that
// bound covers every eligible host.
func (g *Generator) pickReceivers(class TrafficClass, eligible []Host) ([]Host, error) {
	n := len(eligible)
	if class.ReceiverRatio <= 0 {
		return []Host{eligible[g.rng.Intn(n)]}, nil
	}

	maxReceivers := max(int(math.Floor(class.ReceiverRatio*float64(n))), 1)
	if maxReceivers >= n {
		return eligible, nil
	}

	count := 1 + g.rng.Intn(maxReceivers)
	if count > n {
		return nil, fmt.Errorf("%w: want %d of %d", ErrInsufficientReceivers, count, n)
	}
	picked := make([]Host, 0, count)
	for _, i := range g.rng.Perm(n)[:count] {
		picked = append(picked, eligible[i])
	}
	return picked, nil
}

func (g *Generator) sendOffset(class TrafficClass) int64 {
	lo, hi := class.OffsetBounds()
	if hi <= lo {
		return lo
	}
	return lo + g.rng.Int63n(hi-lo+1)
}

// Spread sends one package per slot from origin, walking the host list
// round-robin. Slot s targets hosts[(s-1) mod n] at s*Interval; the
// origin's own slot stays empty. Packages use the first catalog class and
// sequence ID 1.
func (g *Generator) Spread(hostNames []string, origin string, opts SpreadOptions) (Queue, error) {
	start := time.Now()
	if err := validation.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid spread options: %w", err)
	}
	if len(hostNames) == 0 {
		return Queue{}, nil
	}
	if g.catalog.Len() == 0 {
		return nil, NewError("spread").Host(origin).Cause(ErrUnknownClass).Err()
	}
	class := g.catalog.classes[0]

	q := make(Queue, 0, opts.Slots)
	for slot := 1; slot <= opts.Slots; slot++ {
		dest := hostNames[(slot-1)%len(hostNames)]
		if dest == origin {
			continue
		}
		q = append(q, Entry{
			TimestampMs: int64(slot) * opts.Interval.Milliseconds(),
			Package: DataPackage{
				ClassID:      class.ID,
				SequenceID:   spreadSequenceID,
				PayloadBytes: class.PayloadBytes,
				Origin:       origin,
				Destination:  dest,
			},
		})
	}

	g.recordEntries(q)
	g.recordQueue("spread", "success", time.Since(start))
	g.logger.Info("spread queue generated",
		logging.Host(origin),
		logging.Int("slots", opts.Slots),
		logging.Count(len(q)),
	)
	return q, nil
}

// GenerateSpread runs Spread with the first host as origin.
func (g *Generator) GenerateSpread(hostNames []string, opts SpreadOptions) (Queue, error) {
	if len(hostNames) == 0 {
		return Queue{}, nil
	}
	return g.Spread(hostNames, hostNames[0], opts)
}

func (g *Generator) recordQueue(mode, status string, d time.Duration) {
	if g.metrics != nil {
		g.metrics.RecordQueue(mode, status, d)
	}
}

func (g *Generator) recordEntries(q Queue) {
	if g.metrics == nil {
		return
	}
	for classID, n := range q.CountByClass() {
		g.metrics.RecordQueueEntries(classID, n)
	}
}
