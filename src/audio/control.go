package audio

import (
	"math/bits"
	"sync/atomic"
)

// ----- Control Command ----- //

type commandKind uint8

const (
	cmdGateOn commandKind = iota
	cmdGateOff
	cmdSetFreq
	cmdSetAmp
)

type command struct {
	kind  commandKind
	index int
	value float64
}

// ----- Control ----- //

const defaultQueueSize = 256

// Control hands parameter changes from one control goroutine to the audio goroutine
// without locks. It is a single-producer/single-consumer ring: only one goroutine may
// call the exported methods at a time, and only the owning Voice drains it.
type Control struct {
	buf     []command
	mask    uint64
	head    atomic.Uint64 // next slot to read
	tail    atomic.Uint64 // next slot to write
	bank    *atomic.Int32
	dropped atomic.Uint64
}

func newControl(size int, bank *atomic.Int32) *Control {
	if size <= 0 {
		size = defaultQueueSize
	}
	// round up to a power of two
	n := 1 << bits.Len(uint(size-1))
	return &Control{
		buf:  make([]command, n),
		mask: uint64(n - 1),
		bank: bank,
	}
}

// Cap ...
func (c *Control) Cap() int {
	return len(c.buf)
}

// Pending returns the number of queued commands not yet applied.
func (c *Control) Pending() int {
	return int(c.tail.Load() - c.head.Load())
}

// Dropped returns how many commands were discarded on the audio side because
// their oscillator was removed after they were queued.
func (c *Control) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *Control) push(cmd command) error {
	tail := c.tail.Load()
	if tail-c.head.Load() >= uint64(len(c.buf)) {
		return ErrQueueFull
	}
	c.buf[tail&c.mask] = cmd
	c.tail.Store(tail + 1)
	return nil
}

func (c *Control) pop() (command, bool) {
	head := c.head.Load()
	if head == c.tail.Load() {
		return command{}, false
	}
	cmd := c.buf[head&c.mask]
	c.head.Store(head + 1)
	return cmd, true
}

func (c *Control) checkIndex(i int) error {
	n := int(c.bank.Load())
	if i < 0 || i >= n {
		return &IndexError{Index: i, Len: n}
	}
	return nil
}

// GateOn ...
func (c *Control) GateOn() error {
	return c.push(command{kind: cmdGateOn})
}

// GateOff ...
func (c *Control) GateOff() error {
	return c.push(command{kind: cmdGateOff})
}

// SetFrequency queues a frequency change for oscillator i.
func (c *Control) SetFrequency(i int, freq float64) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	return c.push(command{kind: cmdSetFreq, index: i, value: freq})
}

// SetAmplitude queues an amplitude change for oscillator i.
func (c *Control) SetAmplitude(i int, amp float64) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	return c.push(command{kind: cmdSetAmp, index: i, value: amp})
}
