// Package id generates ULID run identifiers. Run ids key every journal row a
// backtest writes, so they are time-sortable and safe to generate from
// concurrent runners.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader
)

func init() {
	// Seed a PRNG from crypto/rand. ulid.Monotonic keeps ids generated in
	// the same millisecond strictly increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewRun returns a fresh ULID string for use as a backtest run id.
func NewRun() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		panic(err)
	}
	return id.String()
}
