package livetable

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshotter encodes a State into an opaque, signed string and back.
//
// Frameworks that keep component state on the client (hidden inputs, URLs)
// send the snapshot with each interaction and restore the table from it.
// The snapshot is visible to the client but tamper-proof.
type Snapshotter struct {
	key []byte
}

// NewSnapshotter returns a Snapshotter signing with key. Keys shorter than 32
// bytes are stretched with SHA-256.
func NewSnapshotter(key []byte) (*Snapshotter, error) {
	if len(key) == 0 {
		return nil, errors.New("snapshot key is required")
	}
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}
	return &Snapshotter{key: key}, nil
}

// Encode serializes state as base64(msgpack).signature.
func (s *Snapshotter) Encode(state State) (string, error) {
	packed, err := msgpack.Marshal(state)
	if err != nil {
		return "", err
	}
	b64 := base64.RawURLEncoding.EncodeToString(packed)
	sig := base64.RawURLEncoding.EncodeToString(s.sign(packed))
	return b64 + "." + sig, nil
}

// Decode verifies the signature of encoded and deserializes the state.
func (s *Snapshotter) Decode(encoded string) (State, error) {
	var state State

	parts := strings.SplitN(encoded, ".", 2)
	if len(parts) != 2 {
		return state, errors.New("invalid snapshot: missing signature")
	}

	packed, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return state, err
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return state, err
	}
	if !hmac.Equal(sig, s.sign(packed)) {
		return state, errors.New("invalid snapshot: signature verification failed")
	}

	if err := msgpack.Unmarshal(packed, &state); err != nil {
		return state, err
	}
	return state, nil
}

// sign returns the truncated HMAC-SHA256 of data.
func (s *Snapshotter) sign(data []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)
	return mac.Sum(nil)[:16]
}
