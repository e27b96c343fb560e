// Package protocol implements the wire format shared by client and server:
// a fixed little-endian frame header, length-prefixed primitive encoding,
// and one typed message per frame type.
package protocol

// MsgType identifies the payload schema of a frame. The ordinals are part of
// the wire contract and must match on both ends.
type MsgType uint16

const (
	TypeSRPInit         MsgType = 1  // C→S username, A
	TypeSRPChallenge    MsgType = 2  // S→C user_id, B, salt, room_salt
	TypeSRPResponse     MsgType = 3  // C→S user_id, M
	TypeSRPSuccess      MsgType = 4  // S→C H_AMK
	TypeSRPUserNotFound MsgType = 5  // S→C (empty)
	TypeSRPRegister     MsgType = 6  // C→S username, salt, verifier
	TypeSRPRegisterAck  MsgType = 7  // S→C (empty)
	TypeInit            MsgType = 8  // S→C history + active users
	TypeMessage         MsgType = 9  // C→S encrypted chat text
	TypeBroadcast       MsgType = 10 // S→C re-encrypted chat text
	TypeUserJoined      MsgType = 11 // S→C
	TypeUserLeft        MsgType = 12 // S→C
	TypeDisconnect      MsgType = 13 // C→S (empty)
	TypeError           MsgType = 14 // S→C error text
)

func (t MsgType) String() string {
	switch t {
	case TypeSRPInit:
		return "SRP_INIT"
	case TypeSRPChallenge:
		return "SRP_CHALLENGE"
	case TypeSRPResponse:
		return "SRP_RESPONSE"
	case TypeSRPSuccess:
		return "SRP_SUCCESS"
	case TypeSRPUserNotFound:
		return "SRP_USER_NOT_FOUND"
	case TypeSRPRegister:
		return "SRP_REGISTER"
	case TypeSRPRegisterAck:
		return "SRP_REGISTER_ACK"
	case TypeInit:
		return "INIT"
	case TypeMessage:
		return "MESSAGE"
	case TypeBroadcast:
		return "BROADCAST"
	case TypeUserJoined:
		return "USER_JOINED"
	case TypeUserLeft:
		return "USER_LEFT"
	case TypeDisconnect:
		return "DISCONNECT"
	case TypeError:
		return "ERROR"
	}
	return "UNKNOWN"
}

const (
	// HeaderSize is u16 type + u32 payload size, both little-endian.
	HeaderSize = 6

	// MaxPayloadSize bounds a single frame payload. Frames declaring more
	// are rejected before the payload is allocated.
	MaxPayloadSize = 1 << 20
)
