package domain

import "fmt"

// Op is the closed set of operation tags a message can carry. The tag is the
// AEAD additional data for every seal/open, so a ciphertext produced for one
// operation can never be replayed as another: the authentication tag stops
// verifying.
//
// The set is deliberately an enumeration rather than free-form strings, so
// dispatch over it can be exhaustive and an unknown tag is rejected before
// any cryptography runs.
type Op uint8

const (
	// OpExecute asks the enclave to run a request payload.
	OpExecute Op = iota + 1
	// OpExecuteResult carries the enclave's answer to OpExecute.
	OpExecuteResult
	// OpSignPayload asks the enclave to sign an opaque payload.
	OpSignPayload
	// OpSignResult carries the signature back.
	OpSignResult
	// OpPing and OpPong are liveness probes.
	OpPing
	OpPong
)

var opNames = map[Op]string{
	OpExecute:       "EXECUTE",
	OpExecuteResult: "EXECUTE_RESULT",
	OpSignPayload:   "SIGN_PAYLOAD",
	OpSignResult:    "SIGN_RESULT",
	OpPing:          "PING",
	OpPong:          "PONG",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Valid reports whether o is a member of the closed tag set.
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// AAD returns the bytes bound as AEAD additional data for this tag.
func (o Op) AAD() []byte { return []byte(o.String()) }
