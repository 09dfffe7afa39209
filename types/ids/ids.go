package ids

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AddressLength is the byte length of a participant identity.
const AddressLength = 20

// Address identifies an account (airline, passenger, oracle or operator).
type Address [AddressLength]byte

// ID is a 32-byte array used for derived keys such as flight keys.
type ID [32]byte

// Empty is the zero-value ID (all zeros)
var Empty ID

// ZeroAddress is the all-zero address. It is never a valid caller.
var ZeroAddress Address

var ErrInvalidAddress = errors.New("invalid address")

// ParseAddress parses a 0x-prefixed (or bare) 40 character hex string.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != AddressLength*2 {
		return a, fmt.Errorf("%w: %q has length %d", ErrInvalidAddress, s, len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromSeed builds a deterministic address from a small integer, used by
// the relay simulation and tests to mint identities.
func AddressFromSeed(seed uint64) Address {
	var a Address
	for i := 0; i < 8; i++ {
		a[AddressLength-1-i] = byte(seed >> (8 * i))
	}
	a[0] = 0xf5
	return a
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// FromString parses a hex string into an ID
func FromString(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String converts an ID back to a hex string
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := FromString(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
