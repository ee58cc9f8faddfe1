package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shoyu-network/shoyu-daemon/internal/core/ports"
)

type localClock struct {
	genesis  time.Time
	interval time.Duration
}

// NewLocalClock returns a clock producing a new block every interval since
// its creation. The first block is 0.
func NewLocalClock(interval time.Duration) (ports.BlockClock, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("block interval must be positive")
	}
	return &localClock{time.Now(), interval}, nil
}

func (c *localClock) BlockNumber(_ context.Context) (uint64, error) {
	return uint64(time.Since(c.genesis) / c.interval), nil
}

func (c *localClock) Now() int64 {
	return time.Now().Unix()
}

// ManualClock is a clock whose blocks are mined on demand. It's meant for
// local networks and tests.
type ManualClock struct {
	block uint64
	now   func() time.Time

	lock *sync.RWMutex
}

// NewManualClock returns a clock at the given block.
func NewManualClock(block uint64) *ManualClock {
	return &ManualClock{block, time.Now, &sync.RWMutex{}}
}

func (c *ManualClock) BlockNumber(_ context.Context) (uint64, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.block, nil
}

func (c *ManualClock) Now() int64 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.now().Unix()
}

// Mine advances the clock by the given number of blocks and returns the new
// height.
func (c *ManualClock) Mine(blocks uint64) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.block += blocks
	return c.block
}

// SetBlock moves the clock to the given height.
func (c *ManualClock) SetBlock(block uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.block = block
}

// SetTime fixes the wall clock time returned by Now.
func (c *ManualClock) SetTime(t time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.now = func() time.Time { return t }
}
