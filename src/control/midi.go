package control

import (
	"context"
	"log"
	"sync"

	"gitlab.com/gomidi/rtmididrv"
)

// midiForwarder hands driver callbacks to a channel. The driver may still call
// send after the listener is stopped, so closing is guarded.
type midiForwarder struct {
	mu     sync.Mutex
	closed bool
	ch     chan []byte
}

func newMidiForwarder(size int) *midiForwarder {
	return &midiForwarder{ch: make(chan []byte, size)}
}

// send copies data and never blocks. It reports whether the message was queued.
func (f *midiForwarder) send(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	msg := make([]byte, len(data))
	copy(msg, data)
	select {
	case f.ch <- msg:
		return true
	default:
		log.Println("WARN: MIDI message dropped")
		return false
	}
}

func (f *midiForwarder) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

// ListenToMidiIn forwards raw messages from the port-th MIDI input until ctx is done.
// The channel is closed when listening stops or no device could be opened.
func ListenToMidiIn(ctx context.Context, port int) <-chan []byte {
	f := newMidiForwarder(1024)
	go func() {
		defer f.close()
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		if port < 0 || port >= len(ins) {
			log.Printf("WARN: MIDI IN %d not found\n", port)
			return
		}
		in := ins[port]
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			f.send(data)
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return f.ch
}
