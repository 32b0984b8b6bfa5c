package rules

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// HitThreshold is the lowest die face counting as a hit.
const HitThreshold = 5

// Roller rolls d6 pools.
type Roller interface {
	Roll(n int) []int
}

// SeededRoller is a deterministic d6 roller.
type SeededRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller returns a roller seeded with seed.
func NewRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewSource(seed))}
}

// Roll rolls n six-sided dice. Non-positive n rolls nothing.
func (r *SeededRoller) Roll(n int) []int {
	if n <= 0 {
		return []int{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, n)
	for i := range out {
		out[i] = r.rng.Intn(6) + 1
	}
	return out
}

// FixedRoller replays predetermined faces in order, wrapping around.
// An empty FixedRoller rolls ones.
type FixedRoller struct {
	mu    sync.Mutex
	Faces []int
	next  int
}

// Roll returns the next n faces.
func (r *FixedRoller) Roll(n int) []int {
	if n <= 0 {
		return []int{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, n)
	for i := range out {
		if len(r.Faces) == 0 {
			out[i] = 1
			continue
		}
		out[i] = r.Faces[r.next%len(r.Faces)]
		r.next++
	}
	return out
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// DiceResult is the evaluation of a rolled pool.
type DiceResult struct {
	Hits           int  `json:"hits"`
	Ones           int  `json:"ones"`
	Glitch         bool `json:"glitch"`
	CriticalGlitch bool `json:"critical_glitch"`
}

// CountHits counts hits in a roll, capped at limit when limit is positive.
func CountHits(faces []int, limit int) int {
	hits := 0
	for _, f := range faces {
		if f >= HitThreshold {
			hits++
		}
	}
	if limit > 0 {
		hits = min(hits, limit)
	}
	return hits
}

// CountOnes counts ones in a roll.
func CountOnes(faces []int) int {
	ones := 0
	for _, f := range faces {
		if f == 1 {
			ones++
		}
	}
	return ones
}

// IsGlitch reports whether more than half of the pool came up ones.
func IsGlitch(ones, pool int) bool {
	return pool > 0 && ones > pool/2
}

// IsCriticalGlitch reports a glitch without a single hit.
func IsCriticalGlitch(ones, pool, hits int) bool {
	return IsGlitch(ones, pool) && hits == 0
}

// Evaluate counts hits, ones and glitches of a rolled pool.
func Evaluate(faces []int, limit int) DiceResult {
	pool := len(faces)
	hits := CountHits(faces, limit)
	ones := CountOnes(faces)
	return DiceResult{
		Hits:           hits,
		Ones:           ones,
		Glitch:         IsGlitch(ones, pool),
		CriticalGlitch: IsCriticalGlitch(ones, pool, hits),
	}
}

// NetHits returns hits beyond the threshold, floored at 0.
func NetHits(hits, threshold int) int {
	return max(hits-threshold, 0)
}
