package traffic

import (
	"cmp"
	"fmt"
	"path/filepath"

	"golang.org/x/exp/slices"
)

// AppName prefixes the data component of every interest name.
const AppName = "C2Data"

// DataPackage is one unit of data sent from Origin to Destination.
type DataPackage struct {
	ClassID      int
	SequenceID   int
	PayloadBytes int
	Origin       string
	Destination  string
}

// Interest returns the name consumers express to fetch the package.
func (p DataPackage) Interest() string {
	return fmt.Sprintf("/%s/%s-%d-Type%d", p.Origin, AppName, p.SequenceID, p.ClassID)
}

func (p DataPackage) String() string {
	return fmt.Sprintf("<DataPackage Type%d ID%d (%s -> %s)>", p.ClassID, p.SequenceID, p.Origin, p.Destination)
}

// Entry schedules a package at a millisecond offset from the run start.
type Entry struct {
	TimestampMs int64
	Package     DataPackage
}

// Queue is a list of entries. Generated queues are sorted by timestamp.
type Queue []Entry

// IsSorted reports whether timestamps never decrease.
func (q Queue) IsSorted() bool {
	return slices.IsSortedFunc(q, compareEntries)
}

// Len returns the number of entries.
func (q Queue) Len() int {
	return len(q)
}

// PayloadSizes returns the distinct payload sizes in ascending order.
func (q Queue) PayloadSizes() []int {
	seen := make(map[int]struct{})
	sizes := make([]int, 0)
	for _, e := range q {
		if _, ok := seen[e.Package.PayloadBytes]; ok {
			continue
		}
		seen[e.Package.PayloadBytes] = struct{}{}
		sizes = append(sizes, e.Package.PayloadBytes)
	}
	slices.Sort(sizes)
	return sizes
}

// CountByClass returns the number of entries per class ID.
func (q Queue) CountByClass() map[int]int {
	counts := make(map[int]int)
	for _, e := range q {
		counts[e.Package.ClassID]++
	}
	return counts
}

// Merge concatenates the queues and sorts the result by timestamp. The sort
// is stable, so equal timestamps keep their input order.
func Merge(queues ...Queue) Queue {
	total := 0
	for _, q := range queues {
		total += len(q)
	}
	merged := make(Queue, 0, total)
	for _, q := range queues {
		merged = append(merged, q...)
	}
	slices.SortStableFunc(merged, compareEntries)
	return merged
}

func compareEntries(a, b Entry) int {
	return cmp.Compare(a.TimestampMs, b.TimestampMs)
}

// PayloadFileName returns the path of the payload file for size bytes,
// named after its size in KiB.
func PayloadFileName(size int, dir string) string {
	return filepath.Join(dir, fmt.Sprintf("file_%dK", size/1024))
}
