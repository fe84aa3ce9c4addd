// Package mockdata fabricates plausible display records for dashboards and
// lists when no backend is available. Every generator draws from one seedable
// source so fixtures are reproducible: the same seed yields the same records.
package mockdata

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// Generator produces display records from a seeded source.
// A Generator is not safe for concurrent use; create one per request.
type Generator struct {
	src  *rand.ChaCha8
	rng  *rand.Rand
	seed uint64
}

// NewGenerator returns a generator seeded with seed. A zero seed draws a random one.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = RandomSeed()
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], seed^0x9e3779b97f4a7c15)
	src := rand.NewChaCha8(key)
	return &Generator{src: src, rng: rand.New(src), seed: seed}
}

// RandomSeed returns a non-zero seed from the operating system.
func RandomSeed() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic("mockdata: read random seed: " + err.Error())
	}
	if s := binary.LittleEndian.Uint64(buf[:]); s != 0 {
		return s
	}
	return 1
}

// Seed returns the seed this generator was built from.
func (g *Generator) Seed() uint64 {
	return g.seed
}

func (g *Generator) id() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8 reads never fail.
		panic("mockdata: uuid from seeded reader: " + err.Error())
	}
	return id.String()
}

// between returns an int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

// betweenF returns a float in [lo, hi).
func (g *Generator) betweenF(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func pick[T any](g *Generator, items []T) T {
	return items[g.rng.IntN(len(items))]
}

// weighted picks items[i] with probability weights[i]/sum(weights).
func weighted[T any](g *Generator, items []T, weights []int) T {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := g.rng.IntN(total)
	for i, w := range weights {
		if n < w {
			return items[i]
		}
		n -= w
	}
	return items[len(items)-1]
}

func (g *Generator) name() string {
	return pick(g, firstNames) + " " + pick(g, lastNames)
}

func emailFor(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
}

func (g *Generator) phone() string {
	return fmt.Sprintf("(555) %03d-%04d", g.between(100, 999), g.between(0, 9999))
}

var firstNames = []string{
	"Emma", "Liam", "Olivia", "Noah", "Ava", "Elijah", "Sophia", "James",
	"Isabella", "Lucas", "Mia", "Mateo", "Amelia", "Ethan", "Harper", "Aiden",
	"Priya", "Kenji", "Fatima", "Diego", "Chloe", "Omar", "Grace", "Wei",
}

var lastNames = []string{
	"Johnson", "Smith", "Garcia", "Brown", "Lee", "Martinez", "Davis", "Nguyen",
	"Wilson", "Anderson", "Patel", "Kim", "Thompson", "Lopez", "Clark", "Walker",
}
