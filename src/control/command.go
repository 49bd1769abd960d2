package control

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"
	"strings"
)

// ParseCommand splits a line into URL-unescaped, space separated words.
func ParseCommand(line string) ([]string, error) {
	words := strings.Fields(line)
	for i, word := range words {
		escaped, err := url.QueryUnescape(word)
		if err != nil {
			return nil, err
		}
		words[i] = escaped
	}
	return words, nil
}

// ReadCommands sends every non-empty line of r to commandCh until EOF or ctx is done.
// Malformed lines are logged and skipped.
func ReadCommands(ctx context.Context, r io.Reader, commandCh chan<- []string) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		command, err := ParseCommand(scanner.Text())
		if err != nil {
			log.Printf("invalid command line: %v\n", err)
			continue
		}
		if len(command) == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case commandCh <- command:
		}
	}
	return scanner.Err()
}

// ----- Dispatcher ----- //

// Dispatcher is the single goroutine allowed to drive a Controller. It translates
// text commands and raw MIDI messages into keyboard and parameter calls.
type Dispatcher struct {
	target   Controller
	keyboard *Keyboard
}

// NewDispatcher ...
func NewDispatcher(target Controller, keyboard *Keyboard) *Dispatcher {
	return &Dispatcher{target: target, keyboard: keyboard}
}

// Run applies commands and MIDI messages until ctx is done. Either channel may be nil.
// Failed commands are logged; they never stop the loop.
func (d *Dispatcher) Run(ctx context.Context, commandCh <-chan []string, midiCh <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			if err := d.keyboard.Reset(); err != nil {
				log.Printf("failed to release notes: %v\n", err)
			}
			log.Println("Dispatcher.Run() ended.")
			return nil
		case command, ok := <-commandCh:
			if !ok {
				commandCh = nil
				continue
			}
			if err := d.Apply(command); err != nil {
				log.Printf("command %v failed: %v\n", command, err)
			}
		case data, ok := <-midiCh:
			if !ok {
				midiCh = nil
				continue
			}
			if err := d.ApplyMIDI(data); err != nil {
				log.Printf("MIDI message %v failed: %v\n", data, err)
			}
		}
	}
}

func parseInt(s string) (int, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// Apply runs one parsed command:
//
//	note_on <note> [velocity]   (velocity 0 releases the note, as MIDI does)
//	note_off <note>
//	gate on|off
//	set freq|amp <index> <value>
func (d *Dispatcher) Apply(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}
	args := command[1:]
	switch command[0] {
	case "note_on":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: note_on <note> [velocity]")
		}
		note, err := parseInt(args[0])
		if err != nil {
			return err
		}
		velocity := 127
		if len(args) == 2 {
			velocity, err = parseInt(args[1])
			if err != nil {
				return err
			}
		}
		if velocity == 0 {
			return d.keyboard.NoteOff(note)
		}
		return d.keyboard.NoteOn(note, velocity)
	case "note_off":
		if len(args) != 1 {
			return fmt.Errorf("usage: note_off <note>")
		}
		note, err := parseInt(args[0])
		if err != nil {
			return err
		}
		return d.keyboard.NoteOff(note)
	case "gate":
		if len(args) != 1 {
			return fmt.Errorf("usage: gate on|off")
		}
		switch args[0] {
		case "on":
			return d.target.GateOn()
		case "off":
			return d.target.GateOff()
		}
		return fmt.Errorf("invalid gate value %q", args[0])
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("invalid key-value pair %v", args)
		}
		index, err := parseInt(args[1])
		if err != nil {
			return err
		}
		value, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return err
		}
		switch args[0] {
		case "freq":
			return d.target.SetFrequency(index, value)
		case "amp":
			return d.target.SetAmplitude(index, value)
		}
		return fmt.Errorf("unknown parameter %q", args[0])
	}
	return fmt.Errorf("unknown command %v", command[0])
}

// ApplyMIDI handles note on/off channel messages and ignores everything else.
func (d *Dispatcher) ApplyMIDI(data []byte) error {
	if len(data) < 3 {
		return nil
	}
	status := data[0] >> 4
	note := int(data[1])
	velocity := int(data[2])
	switch {
	case status == 8 || status == 9 && velocity == 0:
		return d.keyboard.NoteOff(note)
	case status == 9:
		return d.keyboard.NoteOn(note, velocity)
	}
	return nil
}
