package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dd0wney/icnsim-workload/pkg/topology"
	"github.com/dd0wney/icnsim-workload/pkg/validation"
)

// Topology file section headers
const (
	SectionNodes        = "[nodes]"
	SectionStations     = "[stations]"
	SectionAccessPoints = "[accessPoints]"
	SectionLinks        = "[links]"
)

const (
	runIDComment = "# run_id="
	seedComment  = "# seed="
)

// WriteTopology writes t in the sectioned topology file format. Plain
// topologies list nodes by polar coordinates; wifi topologies list
// stations and access points by position.
func WriteTopology(w io.Writer, t *topology.Topology) error {
	bw := bufio.NewWriter(w)

	if t.RunID != "" {
		fmt.Fprintf(bw, "%s%s\n", runIDComment, t.RunID)
	}
	if t.Seed != 0 {
		fmt.Fprintf(bw, "%s%d\n", seedComment, t.Seed)
	}

	if t.HasAccessPoints() {
		fmt.Fprintln(bw, SectionStations)
		for _, n := range t.Nodes {
			writePositionLine(bw, n.Name, topology.DefaultRange, n.Position())
		}
		fmt.Fprintln(bw, SectionAccessPoints)
		for _, ap := range t.AccessPoints {
			writePositionLine(bw, ap.Name, ap.Range, ap.Position())
		}
	} else {
		fmt.Fprintln(bw, SectionNodes)
		for _, n := range t.Nodes {
			radius, angle := n.Position().Polar()
			fmt.Fprintf(bw, "%s: _ radius=%f angle=%f\n", n.Name, radius, angle)
		}
	}

	fmt.Fprintln(bw, SectionLinks)
	for _, l := range t.Links {
		fmt.Fprintf(bw, "%s:%s delay=%dms bw=%d", l.Origin, l.Destination, l.Delay.Milliseconds(), l.Bandwidth)
		if l.LossPercent >= 1 {
			fmt.Fprintf(bw, " loss=%d", l.LossPercent)
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func writePositionLine(w io.Writer, name string, radioRange int, p topology.Position) {
	fmt.Fprintf(w, "%s: range=%d position=%d,%d,0\n", name, radioRange, p.X, p.Y)
}

// ReadTopology parses a topology file. Lines starting with '#' are
// comments, except for the run id and seed headers. The result is
// validated.
func ReadTopology(r io.Reader) (*topology.Topology, error) {
	var (
		nodes   []*topology.Node
		aps     []*topology.AccessPoint
		links   []topology.Link
		runID   string
		seed    int64
		section string
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			switch {
			case strings.HasPrefix(line, runIDComment):
				runID = strings.TrimSpace(strings.TrimPrefix(line, runIDComment))
			case strings.HasPrefix(line, seedComment):
				v, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, seedComment)), 10, 64)
				if err != nil {
					return nil, lineError(lineNo, line, err)
				}
				seed = v
			}
			continue
		}
		if strings.HasPrefix(line, "[") {
			switch line {
			case SectionNodes, SectionStations, SectionAccessPoints, SectionLinks:
				section = line
			default:
				return nil, NewError("read").Topology().Line(lineNo).Context(line).Cause(ErrUnknownSection).Err()
			}
			continue
		}

		switch section {
		case SectionNodes:
			n, err := parsePolarNode(line)
			if err != nil {
				return nil, lineError(lineNo, line, err)
			}
			nodes = append(nodes, n)
		case SectionStations:
			name, _, pos, err := parsePositionLine(line)
			if err != nil {
				return nil, lineError(lineNo, line, err)
			}
			n, err := topology.NewPlacedNode(name, pos.X, pos.Y)
			if err != nil {
				return nil, lineError(lineNo, line, err)
			}
			nodes = append(nodes, n)
		case SectionAccessPoints:
			name, radioRange, pos, err := parsePositionLine(line)
			if err != nil {
				return nil, lineError(lineNo, line, err)
			}
			ap := topology.NewAccessPoint(name, radioRange)
			if err := ap.Place(pos.X, pos.Y); err != nil {
				return nil, lineError(lineNo, line, err)
			}
			aps = append(aps, ap)
		case SectionLinks:
			l, err := parseLinkLine(line)
			if err != nil {
				return nil, lineError(lineNo, line, err)
			}
			links = append(links, l)
		default:
			return nil, TopologyLineError(lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, NewError("read").Topology().Cause(err).Err()
	}

	t := topology.New(nodes, aps, links)
	t.RunID = runID
	t.Seed = seed
	if err := t.Validate(); err != nil {
		return nil, NewError("validate").Topology().Cause(err).Err()
	}
	return t, nil
}

// ReadHostNames returns the names listed in the nodes or stations section,
// in file order.
func ReadHostNames(r io.Reader) ([]string, error) {
	var names []string
	hostSection := false

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			hostSection = line == SectionNodes || line == SectionStations
			continue
		}
		if !hostSection {
			continue
		}
		name, _, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, TopologyLineError(lineNo, line)
		}
		name = strings.TrimSpace(name)
		if err := validation.ValidateHostName(name); err != nil {
			return nil, lineError(lineNo, line, err)
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, NewError("read").Topology().Cause(err).Err()
	}
	return names, nil
}

func lineError(lineNo int, line string, cause error) error {
	return NewError("read").Topology().Line(lineNo).Context(line).
		Cause(fmt.Errorf("%w: %w", ErrMalformedLine, cause)).Err()
}

// splitEntry splits "name: k=v k=v" into the name and its attributes.
// Tokens without '=' (the "_" placeholder) are ignored.
func splitEntry(line string) (string, map[string]string, error) {
	name, rest, ok := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, errors.New("missing name")
	}
	if err := validation.ValidateHostName(name); err != nil {
		return "", nil, err
	}
	return name, parseAttributes(rest), nil
}

func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, field := range strings.Fields(s) {
		if key, value, ok := strings.Cut(field, "="); ok {
			attrs[key] = value
		}
	}
	return attrs
}

func parsePolarNode(line string) (*topology.Node, error) {
	name, attrs, err := splitEntry(line)
	if err != nil {
		return nil, err
	}
	radius, err := strconv.ParseFloat(attrs["radius"], 64)
	if err != nil {
		return nil, fmt.Errorf("radius: %w", err)
	}
	angle, err := strconv.ParseFloat(attrs["angle"], 64)
	if err != nil {
		return nil, fmt.Errorf("angle: %w", err)
	}
	pos := topology.PositionFromPolar(radius, angle)
	return topology.NewPlacedNode(name, pos.X, pos.Y)
}

func parsePositionLine(line string) (string, int, topology.Position, error) {
	name, attrs, err := splitEntry(line)
	if err != nil {
		return "", 0, topology.Position{}, err
	}

	radioRange := topology.DefaultRange
	if v, ok := attrs["range"]; ok {
		if radioRange, err = strconv.Atoi(v); err != nil {
			return "", 0, topology.Position{}, fmt.Errorf("range: %w", err)
		}
	}

	coords := strings.Split(attrs["position"], ",")
	if len(coords) < 2 {
		return "", 0, topology.Position{}, fmt.Errorf("position %q", attrs["position"])
	}
	x, err := strconv.Atoi(coords[0])
	if err != nil {
		return "", 0, topology.Position{}, fmt.Errorf("position x: %w", err)
	}
	y, err := strconv.Atoi(coords[1])
	if err != nil {
		return "", 0, topology.Position{}, fmt.Errorf("position y: %w", err)
	}
	return name, radioRange, topology.Position{X: x, Y: y}, nil
}

// parseLinkLine parses "a:b delay=10ms bw=10 loss=1". Missing attributes
// are zero. A delay without unit is in milliseconds.
func parseLinkLine(line string) (topology.Link, error) {
	endpoints, rest, _ := strings.Cut(line, " ")
	origin, destination, ok := strings.Cut(endpoints, ":")
	if !ok || origin == "" || destination == "" {
		return topology.Link{}, fmt.Errorf("endpoints %q", endpoints)
	}

	attrs := parseAttributes(rest)
	var la topology.LinkAttributes
	if v, ok := attrs["delay"]; ok {
		d, err := parseDelay(v)
		if err != nil {
			return topology.Link{}, err
		}
		la.Delay = d
	}
	if v, ok := attrs["bw"]; ok {
		bw, err := strconv.Atoi(v)
		if err != nil {
			return topology.Link{}, fmt.Errorf("bw: %w", err)
		}
		la.Bandwidth = bw
	}
	if v, ok := attrs["loss"]; ok {
		loss, err := strconv.Atoi(v)
		if err != nil {
			return topology.Link{}, fmt.Errorf("loss: %w", err)
		}
		la.LossPercent = loss
	}
	return topology.NewLink(origin, destination, la)
}

func parseDelay(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("delay: %w", err)
	}
	return d, nil
}
