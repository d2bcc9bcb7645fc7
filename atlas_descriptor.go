package rowan

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Binary descriptor layout (little-endian):
//
//	magic   [4]byte  "RWAT"
//	version uint16   1
//	width   uint32
//	height  uint32
//	count   uint32
//	frames  count × 8 × int16 (RawFrame field order)
//	keys    count × uint32
const (
	descriptorMagic   = "RWAT"
	descriptorVersion = 1

	// maxDescriptorFrames bounds the preallocation for a hostile count field.
	maxDescriptorFrames = 1 << 20
)

type descriptorHeader struct {
	Magic   [4]byte
	Version uint16
	Width   uint32
	Height  uint32
	Count   uint32
}

// DecodeDescriptor reads a binary atlas descriptor from r. Decoding is
// lossless: EncodeDescriptor of the result reproduces the input bytes.
func DecodeDescriptor(r io.Reader) (*Descriptor, error) {
	br := bufio.NewReader(r)

	var hdr descriptorHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("rowan: decode descriptor header: %v: %w", err, ErrMalformedDescriptor)
	}
	if string(hdr.Magic[:]) != descriptorMagic {
		return nil, fmt.Errorf("rowan: decode descriptor: bad magic %q: %w", hdr.Magic[:], ErrMalformedDescriptor)
	}
	if hdr.Version != descriptorVersion {
		return nil, fmt.Errorf("rowan: decode descriptor: unsupported version %d: %w", hdr.Version, ErrMalformedDescriptor)
	}
	if hdr.Count > maxDescriptorFrames {
		return nil, fmt.Errorf("rowan: decode descriptor: frame count %d exceeds %d: %w",
			hdr.Count, maxDescriptorFrames, ErrMalformedDescriptor)
	}

	desc := &Descriptor{
		Frames: make([]RawFrame, hdr.Count),
		Keys:   make([]uint32, hdr.Count),
		Width:  hdr.Width,
		Height: hdr.Height,
	}
	if err := binary.Read(br, binary.LittleEndian, desc.Frames); err != nil {
		return nil, fmt.Errorf("rowan: decode descriptor frames: %v: %w", err, ErrMalformedDescriptor)
	}
	if err := binary.Read(br, binary.LittleEndian, desc.Keys); err != nil {
		return nil, fmt.Errorf("rowan: decode descriptor keys: %v: %w", err, ErrMalformedDescriptor)
	}
	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("rowan: decode descriptor: trailing data: %w", ErrMalformedDescriptor)
	}
	return desc, nil
}

// EncodeDescriptor writes desc to w in the binary descriptor layout.
func EncodeDescriptor(w io.Writer, desc *Descriptor) error {
	if desc == nil {
		return fmt.Errorf("rowan: encode descriptor: %w", ErrNilReference)
	}
	if len(desc.Frames) != len(desc.Keys) {
		return fmt.Errorf("rowan: encode descriptor: %d frames but %d keys: %w",
			len(desc.Frames), len(desc.Keys), ErrMalformedDescriptor)
	}
	hdr := descriptorHeader{
		Version: descriptorVersion,
		Width:   desc.Width,
		Height:  desc.Height,
		Count:   uint32(len(desc.Frames)),
	}
	copy(hdr.Magic[:], descriptorMagic)

	bw := bufio.NewWriter(w)
	for _, v := range []any{hdr, desc.Frames, desc.Keys} {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("rowan: encode descriptor: %w", err)
		}
	}
	return bw.Flush()
}
