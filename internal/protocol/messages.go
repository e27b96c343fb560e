package protocol

// Message is one typed frame payload. Encode and Decode are exact inverses
// for every schema.
type Message interface {
	Type() MsgType
	EncodePayload() []byte
	DecodePayload(data []byte) error
}

// SRPInit opens a handshake: the client identity and its public ephemeral.
type SRPInit struct {
	Username string
	AB64     string
}

func (*SRPInit) Type() MsgType { return TypeSRPInit }

func (m *SRPInit) EncodePayload() []byte {
	var w Writer
	w.String(m.Username)
	w.String(m.AB64)
	return w.Bytes()
}

func (m *SRPInit) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.Username = r.String()
	m.AB64 = r.String()
	return r.Err()
}

// SRPChallenge carries the server ephemeral and salts back to the client.
type SRPChallenge struct {
	UserID      string
	BB64        string
	SaltB64     string
	RoomSaltB64 string
}

func (*SRPChallenge) Type() MsgType { return TypeSRPChallenge }

func (m *SRPChallenge) EncodePayload() []byte {
	var w Writer
	w.String(m.UserID)
	w.String(m.BB64)
	w.String(m.SaltB64)
	w.String(m.RoomSaltB64)
	return w.Bytes()
}

func (m *SRPChallenge) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.UserID = r.String()
	m.BB64 = r.String()
	m.SaltB64 = r.String()
	m.RoomSaltB64 = r.String()
	return r.Err()
}

// SRPResponse carries the client proof M.
type SRPResponse struct {
	UserID string
	MB64   string
}

func (*SRPResponse) Type() MsgType { return TypeSRPResponse }

func (m *SRPResponse) EncodePayload() []byte {
	var w Writer
	w.String(m.UserID)
	w.String(m.MB64)
	return w.Bytes()
}

func (m *SRPResponse) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.UserID = r.String()
	m.MB64 = r.String()
	return r.Err()
}

// SRPSuccess carries the server proof. Session keys are derived on both
// sides and never transmitted.
type SRPSuccess struct {
	HAMKB64 string
}

func (*SRPSuccess) Type() MsgType { return TypeSRPSuccess }

func (m *SRPSuccess) EncodePayload() []byte {
	var w Writer
	w.String(m.HAMKB64)
	return w.Bytes()
}

func (m *SRPSuccess) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.HAMKB64 = r.String()
	return r.Err()
}

// SRPUserNotFound tells the client the username is unknown so it can offer
// registration on the same connection. Not an error.
type SRPUserNotFound struct{}

func (*SRPUserNotFound) Type() MsgType { return TypeSRPUserNotFound }

func (*SRPUserNotFound) EncodePayload() []byte { return nil }

func (*SRPUserNotFound) DecodePayload([]byte) error { return nil }

// SRPRegister submits fresh credentials. The password never leaves the
// client; only the salt and verifier do.
type SRPRegister struct {
	Username    string
	SaltB64     string
	VerifierB64 string
}

func (*SRPRegister) Type() MsgType { return TypeSRPRegister }

func (m *SRPRegister) EncodePayload() []byte {
	var w Writer
	w.String(m.Username)
	w.String(m.SaltB64)
	w.String(m.VerifierB64)
	return w.Bytes()
}

func (m *SRPRegister) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.Username = r.String()
	m.SaltB64 = r.String()
	m.VerifierB64 = r.String()
	return r.Err()
}

// SRPRegisterAck confirms a registration.
type SRPRegisterAck struct{}

func (*SRPRegisterAck) Type() MsgType { return TypeSRPRegisterAck }

func (*SRPRegisterAck) EncodePayload() []byte { return nil }

func (*SRPRegisterAck) DecodePayload([]byte) error { return nil }

// ChatMessage is one history entry inside INIT. Historical text predates the
// viewer's session key and is carried in plaintext; see the package docs of
// internal/server for the rationale.
type ChatMessage struct {
	Username    string
	Text        string
	TimestampMS int64
}

func (m *ChatMessage) encode(w *Writer) {
	var inner Writer
	inner.String(m.Username)
	inner.String(m.Text)
	inner.Int64(m.TimestampMS)
	w.Block(inner.Bytes())
}

func (m *ChatMessage) decode(r *Reader) {
	inner := NewReader(r.Block())
	m.Username = inner.String()
	m.Text = inner.String()
	m.TimestampMS = inner.Int64()
	// trailing bytes from newer encoders are ignored
	if err := inner.Err(); err != nil {
		r.fail("history entry")
	}
}

// User is one active-user entry inside INIT.
type User struct {
	Username string
	UserID   string
}

func (u *User) encode(w *Writer) {
	var inner Writer
	inner.String(u.Username)
	inner.String(u.UserID)
	w.Block(inner.Bytes())
}

func (u *User) decode(r *Reader) {
	inner := NewReader(r.Block())
	u.Username = inner.String()
	u.UserID = inner.String()
	if err := inner.Err(); err != nil {
		r.fail("user entry")
	}
}

// Init seeds a freshly authenticated client with history and the active
// user list.
type Init struct {
	Messages []ChatMessage
	Users    []User
}

func (*Init) Type() MsgType { return TypeInit }

func (m *Init) EncodePayload() []byte {
	var w Writer
	w.Count(len(m.Messages))
	for i := range m.Messages {
		m.Messages[i].encode(&w)
	}
	w.Count(len(m.Users))
	for i := range m.Users {
		m.Users[i].encode(&w)
	}
	return w.Bytes()
}

func (m *Init) DecodePayload(data []byte) error {
	r := NewReader(data)

	n := r.Count()
	m.Messages = make([]ChatMessage, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		var cm ChatMessage
		cm.decode(r)
		m.Messages = append(m.Messages, cm)
	}

	n = r.Count()
	m.Users = make([]User, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		var u User
		u.decode(r)
		m.Users = append(m.Users, u)
	}

	if err := r.Err(); err != nil {
		m.Messages, m.Users = nil, nil
		return err
	}
	return nil
}

// Text is an inbound chat message: one AEAD envelope under the sender's
// session key.
type Text struct {
	CiphertextB64 string
}

func (*Text) Type() MsgType { return TypeMessage }

func (m *Text) EncodePayload() []byte {
	var w Writer
	w.String(m.CiphertextB64)
	return w.Bytes()
}

func (m *Text) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.CiphertextB64 = r.String()
	return r.Err()
}

// Broadcast is an outbound chat message, re-encrypted under the recipient's
// session key.
type Broadcast struct {
	Username      string
	CiphertextB64 string
	TimestampMS   int64
}

func (*Broadcast) Type() MsgType { return TypeBroadcast }

func (m *Broadcast) EncodePayload() []byte {
	var w Writer
	w.String(m.Username)
	w.String(m.CiphertextB64)
	w.Int64(m.TimestampMS)
	return w.Bytes()
}

func (m *Broadcast) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.Username = r.String()
	m.CiphertextB64 = r.String()
	m.TimestampMS = r.Int64()
	return r.Err()
}

// UserJoined announces a new participant to everyone else.
type UserJoined struct {
	Username string
	UserID   string
}

func (*UserJoined) Type() MsgType { return TypeUserJoined }

func (m *UserJoined) EncodePayload() []byte {
	var w Writer
	w.String(m.Username)
	w.String(m.UserID)
	return w.Bytes()
}

func (m *UserJoined) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.Username = r.String()
	m.UserID = r.String()
	return r.Err()
}

// UserLeft announces a departure.
type UserLeft struct {
	Username string
}

func (*UserLeft) Type() MsgType { return TypeUserLeft }

func (m *UserLeft) EncodePayload() []byte {
	var w Writer
	w.String(m.Username)
	return w.Bytes()
}

func (m *UserLeft) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.Username = r.String()
	return r.Err()
}

// Disconnect is the client's orderly goodbye.
type Disconnect struct{}

func (*Disconnect) Type() MsgType { return TypeDisconnect }

func (*Disconnect) EncodePayload() []byte { return nil }

func (*Disconnect) DecodePayload([]byte) error { return nil }

// Error carries an operator-readable failure description. Classification is
// by the sender's behavior (close or keep the connection), never by text.
type Error struct {
	Text string
}

func (*Error) Type() MsgType { return TypeError }

func (m *Error) EncodePayload() []byte {
	var w Writer
	w.String(m.Text)
	return w.Bytes()
}

func (m *Error) DecodePayload(data []byte) error {
	r := NewReader(data)
	m.Text = r.String()
	return r.Err()
}
