package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	SOF0         = 0xAA
	SOF1         = 0x55
	CmdLineState = 0x20

	levelBytes = 8
	payloadLen = levelBytes + 1 // levels + seq
	frameLen   = 4 + payloadLen + 1
)

var (
	ErrFrameLength   = errors.New("frame: bad length")
	ErrFrameCommand  = errors.New("frame: unknown command")
	ErrFrameChecksum = errors.New("frame: checksum mismatch")
	ErrFrameSync     = errors.New("frame: missing start of frame")
)

// Frame is a snapshot of every input line on the board, streamed by the
// board whenever a level changes.
type Frame struct {
	Levels uint64 // bit p = logical level of pin p
	Seq    byte
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][levels0..7][Seq][CKS]
//
// levels are little-endian, CKS is the XOR of LEN, CMD and the payload.
func (f *Frame) Encode() []byte {
	out := make([]byte, 0, frameLen)
	out = append(out, SOF0, SOF1, payloadLen+1, CmdLineState)
	out = binary.LittleEndian.AppendUint64(out, f.Levels)
	out = append(out, f.Seq)
	return append(out, checksum(out[2:]))
}

// DecodeFrame parses exactly one frame.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) != frameLen {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameLength, len(b))
	}
	if b[0] != SOF0 || b[1] != SOF1 {
		return Frame{}, ErrFrameSync
	}
	if b[2] != payloadLen+1 {
		return Frame{}, fmt.Errorf("%w: LEN=%d", ErrFrameLength, b[2])
	}
	if b[3] != CmdLineState {
		return Frame{}, fmt.Errorf("%w: 0x%02x", ErrFrameCommand, b[3])
	}
	if cks := checksum(b[2 : frameLen-1]); cks != b[frameLen-1] {
		return Frame{}, fmt.Errorf("%w: got 0x%02x want 0x%02x", ErrFrameChecksum, b[frameLen-1], cks)
	}
	return Frame{
		Levels: binary.LittleEndian.Uint64(b[4 : 4+levelBytes]),
		Seq:    b[4+levelBytes],
	}, nil
}

func checksum(b []byte) byte {
	var cks byte
	for _, c := range b {
		cks ^= c
	}
	return cks
}

// FrameScanner cuts a byte stream into frames, skipping noise and resyncing
// on the next start of frame after a bad one.
type FrameScanner struct {
	buf []byte
	Bad int
}

var sof = []byte{SOF0, SOF1}

// Feed appends p and returns every complete frame now available.
func (s *FrameScanner) Feed(p []byte) []Frame {
	s.buf = append(s.buf, p...)
	var frames []Frame
	for {
		i := bytes.Index(s.buf, sof)
		if i < 0 {
			// Keep a trailing SOF0 that may pair with the next read.
			if n := len(s.buf); n > 0 && s.buf[n-1] == SOF0 {
				s.buf = append(s.buf[:0], SOF0)
			} else {
				s.buf = s.buf[:0]
			}
			return frames
		}
		s.buf = s.buf[i:]
		if len(s.buf) < frameLen {
			return frames
		}
		f, err := DecodeFrame(s.buf[:frameLen])
		if err != nil {
			s.Bad++
			logger.Debug("serial: dropping bad frame", "err", err)
			s.buf = s.buf[1:]
			continue
		}
		frames = append(frames, f)
		s.buf = s.buf[frameLen:]
	}
}
