package audio

import (
	"context"
	"io"
	"log"
)

const bitDepthInBytes = 2

// ----- PCM Reader ----- //

// PCMReader turns a SampleSource into signed 16-bit little endian interleaved
// frames, copying the mono sample into every channel. It is meant to be drained
// by an output player with io.Copy and returns io.EOF once ctx is done.
type PCMReader struct {
	ctx      context.Context
	src      SampleSource
	channels int
}

var _ io.Reader = (*PCMReader)(nil)

// NewPCMReader ...
func NewPCMReader(ctx context.Context, src SampleSource, channels int) *PCMReader {
	if channels <= 0 {
		channels = 1
	}
	return &PCMReader{ctx: ctx, src: src, channels: channels}
}

// FrameSize returns the number of bytes per frame.
func (r *PCMReader) FrameSize() int {
	return bitDepthInBytes * r.channels
}

func (r *PCMReader) Read(buf []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	frameSize := r.FrameSize()
	frames := len(buf) / frameSize
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	for i := 0; i < frames; i++ {
		value, ok := r.src.Next()
		if !ok {
			if i == 0 {
				return 0, io.EOF
			}
			return i * frameSize, nil
		}
		writeFrame(buf[i*frameSize:(i+1)*frameSize], value, r.channels)
	}
	return frames * frameSize, nil
}

func writeFrame(frame []byte, value float64, channels int) {
	const max = 32767
	if value > 1 {
		value = 1
	} else if value < -1 {
		value = -1
	}
	b := int16(value * max)
	for ch := 0; ch < channels; ch++ {
		frame[2*ch] = byte(b)
		frame[2*ch+1] = byte(b >> 8)
	}
}
