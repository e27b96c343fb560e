package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// Encode renders a complete frame: 6-byte header followed by the payload.
func Encode(m Message) []byte {
	payload := m.EncodePayload()

	frame := make([]byte, HeaderSize, HeaderSize+len(payload))
	binary.LittleEndian.PutUint16(frame[0:2], uint16(m.Type()))
	binary.LittleEndian.PutUint32(frame[2:6], uint32(len(payload)))
	return append(frame, payload...)
}

// WritePacket writes one frame to w.
func WritePacket(w io.Writer, m Message) error {
	if _, err := w.Write(Encode(m)); err != nil {
		return fmt.Errorf("write %s: %w", m.Type(), err)
	}
	return nil
}

// ReadPacket reads one frame from r. Frames declaring a payload larger than
// MaxPayloadSize are rejected before any payload is allocated; a short read
// of either header or payload is an error.
func ReadPacket(r io.Reader) (MsgType, []byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, fmt.Errorf("read header: %w", err)
	}

	msgType := MsgType(binary.LittleEndian.Uint16(header[0:2]))
	size := binary.LittleEndian.Uint32(header[2:6])

	if size > MaxPayloadSize {
		return 0, nil, fmt.Errorf("%w: %d bytes declared", common.ErrFrameTooLarge, size)
	}

	if size == 0 {
		return msgType, nil, nil
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("read payload of %s: %w", msgType, err)
	}

	return msgType, payload, nil
}
