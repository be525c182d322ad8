// Package wire encodes the slot bank into the fixed UDP frame understood by
// the sysmodule and transmits it.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Alia5/padrelay/gamepad"
	"github.com/Alia5/padrelay/slots"
)

const (
	// Magic opens every frame.
	Magic uint16 = 0x3276

	// SlotSize is the encoded size of one Slot.
	SlotSize = 2 + 8 + 4*4

	// FrameSize is the encoded size of a Frame.
	FrameSize = 4 + slots.NumSlots*SlotSize
)

// Slot is one controller entry of a frame.
//
// Layout (little-endian, packed):
//
//	Type:    2 bytes (u16)
//	Buttons: 8 bytes (u64)
//	LeftX, LeftY, RightX, RightY: 4 bytes each (i32)
type Slot struct {
	Type           uint16
	Buttons        uint64
	LeftX, LeftY   int32
	RightX, RightY int32
}

// Frame is the wire payload: magic, slot count, then every slot.
type Frame struct {
	Slots [slots.NumSlots]Slot
}

func fromState(s gamepad.State) Slot {
	lx, ly := s.Left.Position()
	rx, ry := s.Right.Position()
	return Slot{
		Type:    uint16(s.Type),
		Buttons: uint64(s.Buttons),
		LeftX:   int32(lx),
		LeftY:   int32(ly),
		RightX:  int32(rx),
		RightY:  int32(ry),
	}
}

// Build turns a bank into a frame. In anarchy mode every connected slot is
// merged into slot 0 and the remaining slots are left empty.
func Build(anarchy bool, bank slots.Bank) Frame {
	var f Frame
	if !anarchy {
		for i, s := range bank {
			f.Slots[i] = fromState(s)
		}
		return f
	}
	f.Slots[0] = fromState(gamepad.Merge(bank[:]...))
	return f
}

// MarshalBinary encodes the frame to FrameSize bytes.
func (f *Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, FrameSize)
	binary.LittleEndian.PutUint16(b[0:2], Magic)
	binary.LittleEndian.PutUint16(b[2:4], slots.NumSlots)
	o := 4
	for _, s := range f.Slots {
		binary.LittleEndian.PutUint16(b[o:o+2], s.Type)
		binary.LittleEndian.PutUint64(b[o+2:o+10], s.Buttons)
		binary.LittleEndian.PutUint32(b[o+10:o+14], uint32(s.LeftX))
		binary.LittleEndian.PutUint32(b[o+14:o+18], uint32(s.LeftY))
		binary.LittleEndian.PutUint32(b[o+18:o+22], uint32(s.RightX))
		binary.LittleEndian.PutUint32(b[o+22:o+26], uint32(s.RightY))
		o += SlotSize
	}
	return b, nil
}

// UnmarshalBinary decodes a frame produced by MarshalBinary.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return io.ErrUnexpectedEOF
	}
	if m := binary.LittleEndian.Uint16(data[0:2]); m != Magic {
		return fmt.Errorf("bad magic 0x%04x", m)
	}
	if n := binary.LittleEndian.Uint16(data[2:4]); n != slots.NumSlots {
		return fmt.Errorf("unexpected slot count %d", n)
	}
	o := 4
	for i := range f.Slots {
		f.Slots[i] = Slot{
			Type:    binary.LittleEndian.Uint16(data[o : o+2]),
			Buttons: binary.LittleEndian.Uint64(data[o+2 : o+10]),
			LeftX:   int32(binary.LittleEndian.Uint32(data[o+10 : o+14])),
			LeftY:   int32(binary.LittleEndian.Uint32(data[o+14 : o+18])),
			RightX:  int32(binary.LittleEndian.Uint32(data[o+18 : o+22])),
			RightY:  int32(binary.LittleEndian.Uint32(data[o+22 : o+26])),
		}
		o += SlotSize
	}
	return nil
}
