package geyser

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// SignatureLen is the size in bytes of a transaction signature.
const SignatureLen = 64

// Signature uniquely names one transaction. The zero value is the sentinel
// the host uses when it could not identify the transaction.
type Signature [SignatureLen]byte

// IsZero reports whether s is the all-zero sentinel.
func (s Signature) IsZero() bool { return s == Signature{} }

// String renders s in base58, the host's textual form.
func (s Signature) String() string { return base58.Encode(s[:]) }

func (s Signature) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Signature) UnmarshalText(text []byte) error {
	v, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSignature decodes a base58 signature.
func ParseSignature(str string) (Signature, error) {
	var s Signature
	if str == "" {
		return s, fmt.Errorf("geyser: empty signature")
	}
	b, err := base58.Decode(str)
	if err != nil {
		return s, fmt.Errorf("geyser: decode signature: %w", err)
	}
	return SignatureFromBytes(b)
}

// SignatureFromBytes copies b into a Signature. b must be SignatureLen long.
func SignatureFromBytes(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureLen {
		return s, fmt.Errorf("geyser: signature is %d bytes, want %d", len(b), SignatureLen)
	}
	copy(s[:], b)
	return s, nil
}
