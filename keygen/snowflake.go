// Package keygen issues unique identifiers for entities whose id column
// is assigned at insert time: time-ordered 64-bit snowflake ids and
// random UUIDs.
package keygen

import (
	"fmt"
	"hash/fnv"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// epochMillis is 2021-01-01T00:00:00Z. Ids order by issue time
	// relative to this epoch.
	epochMillis int64 = 1609459200000

	machineBits = 10
	seqBits     = 12

	maxMachine = int64(1)<<machineBits - 1
	maxSeq     = int64(1)<<seqBits - 1
)

// Generator issues 64-bit ids laid out as
// timestamp(41) | machine(10) | sequence(12). Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	machine int64
	last    int64 // logical millisecond of the last issued id
	seq     int64
	now     func() int64
}

// New returns a generator for the given machine id.
func New(machine int64) (*Generator, error) {
	if machine < 0 || machine > maxMachine {
		return nil, fmt.Errorf("mappa: machine id %d out of range [0, %d]", machine, maxMachine)
	}
	return &Generator{machine: machine, now: nowMillis}, nil
}

// NewFromMAC returns a generator whose machine id is hashed from the
// first non-loopback hardware address, falling back to hostname and pid
// when none is available.
func NewFromMAC() *Generator {
	return &Generator{machine: machineID(), now: nowMillis}
}

// Machine returns the generator's machine id.
func (g *Generator) Machine() int64 { return g.machine }

// Next issues the next id. Within one millisecond the 12-bit sequence
// increments; on overflow the generator waits for the next tick. A
// regressed wall clock keeps issuing on the logical clock so ids stay
// strictly increasing.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if now < g.last {
		now = g.last
	}
	if now == g.last {
		g.seq = (g.seq + 1) & maxSeq
		if g.seq == 0 {
			now = g.nextTick()
		}
	} else {
		g.seq = 0
	}
	g.last = now
	return ((now - epochMillis) << (machineBits + seqBits)) | (g.machine << seqBits) | g.seq
}

// nextTick advances past the last issued millisecond, spinning on the
// wall clock when it is level with the logical clock and jumping one
// logical tick when it has regressed.
func (g *Generator) nextTick() int64 {
	for {
		w := g.now()
		if w > g.last {
			return w
		}
		if w < g.last {
			return g.last + 1
		}
	}
}

func nowMillis() int64 { return time.Now().UnixMilli() }

func machineID() int64 {
	h := fnv.New32a()
	if ifaces, err := net.Interfaces(); err == nil {
		for _, it := range ifaces {
			if it.Flags&net.FlagLoopback != 0 || len(it.HardwareAddr) == 0 {
				continue
			}
			h.Write(it.HardwareAddr)
			return int64(h.Sum32()) & maxMachine
		}
	}
	host, _ := os.Hostname()
	fmt.Fprintf(h, "%s/%d", host, os.Getpid())
	return int64(h.Sum32()) & maxMachine
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

// NextID issues an id from the process-wide generator, initialized from
// the hardware address on first use.
func NextID() int64 {
	defaultOnce.Do(func() { defaultGen = NewFromMAC() })
	return defaultGen.Next()
}

// NextUUID returns a random UUID for entities keyed by uuid.
func NextUUID() uuid.UUID { return uuid.New() }
