package domain

// SessionContext identifies the binding scope of one session: which two
// endpoints are talking and which code the responder side is running.
//
// Field order is canonical and role-fixed: the initiator's endpoint ID always
// comes first, regardless of which side builds the struct. Both sides must
// construct the identical value or key derivation diverges and every open
// fails closed with an authentication error.
//
// Absent values are represented as empty strings; the salt preimage keeps
// both separators either way, so ("a","","c") and ("a","c","") cannot
// collide.
type SessionContext struct {
	InitiatorID  string
	ResponderID  string
	CodeIdentity string
}

// SaltPreimage returns the fixed-order concatenation hashed into the
// derivation salt.
func (c SessionContext) SaltPreimage() []byte {
	out := make([]byte, 0, len(c.InitiatorID)+len(c.ResponderID)+len(c.CodeIdentity)+2)
	out = append(out, c.InitiatorID...)
	out = append(out, '|')
	out = append(out, c.ResponderID...)
	out = append(out, '|')
	out = append(out, c.CodeIdentity...)
	return out
}
