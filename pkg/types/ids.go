// Package types holds the wire-agnostic domain model Chronicle persists and
// serves: identifiers, blocks, outputs, ledger views, milestones/slot
// commitments and protocol parameters. Types here carry no storage or
// network concerns; see pkg/codec for the packed <-> decoded conversion and
// pkg/storage for persistence.
package types

import (
	"encoding/hex"
	"fmt"
)

// MilestoneIndex identifies a Stardust-era milestone checkpoint.
type MilestoneIndex uint32

// SlotIndex identifies an IOTA 2.0-era slot commitment.
type SlotIndex uint32

// UnixTimestamp is a protocol timestamp, seconds since the Unix epoch.
type UnixTimestamp uint32

// BlockId is the BLAKE2b-256 digest of a block's packed bytes.
type BlockId [32]byte

// TransactionId is the BLAKE2b-256 digest of a transaction payload's
// packed bytes.
type TransactionId [32]byte

// MilestoneId is the BLAKE2b-256 digest of a milestone payload's packed
// bytes.
type MilestoneId [32]byte

// AccountId, AnchorId, NftId and DelegationId are 32-byte identifiers
// derived from the OutputId of the output that first created them. An
// implicit (all-zero) id is rewritten to its derived value on first
// persistence, per spec §9.
type AccountId [32]byte
type AnchorId [32]byte
type NftId [32]byte
type DelegationId [32]byte

// FoundryId is 38 bytes: the 32-byte AccountId of the controlling account,
// a 1-byte serial-number-bearing prefix and a 5-byte token scheme marker,
// per the Stardust output layout.
type FoundryId [38]byte

// TokenId identifies a native token class; it is derived from the
// FoundryId that controls its minting.
type TokenId [38]byte

func hexString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func parseFixedHex(s string, out []byte) error {
	s = trimHexPrefix(s)
	if len(s) != len(out)*2 {
		return fmt.Errorf("types: want %d hex bytes, got %d", len(out), len(s)/2)
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("types: invalid hex: %w", err)
	}
	copy(out, decoded)
	return nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func (id BlockId) String() string { return hexString(id[:]) }
func (id BlockId) IsZero() bool   { return id == BlockId{} }

func (id BlockId) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *BlockId) UnmarshalText(b []byte) error { return parseFixedHex(string(b), id[:]) }

func ParseBlockId(s string) (BlockId, error) {
	var id BlockId
	err := parseFixedHex(s, id[:])
	return id, err
}

func (id TransactionId) String() string { return hexString(id[:]) }

func (id TransactionId) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *TransactionId) UnmarshalText(b []byte) error {
	return parseFixedHex(string(b), id[:])
}

func ParseTransactionId(s string) (TransactionId, error) {
	var id TransactionId
	err := parseFixedHex(s, id[:])
	return id, err
}

func (id MilestoneId) String() string { return hexString(id[:]) }

func (id MilestoneId) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *MilestoneId) UnmarshalText(b []byte) error {
	return parseFixedHex(string(b), id[:])
}

func (id AccountId) String() string    { return hexString(id[:]) }
func (id AccountId) IsZero() bool      { return id == AccountId{} }
func (id AnchorId) String() string     { return hexString(id[:]) }
func (id AnchorId) IsZero() bool       { return id == AnchorId{} }
func (id NftId) String() string        { return hexString(id[:]) }
func (id NftId) IsZero() bool          { return id == NftId{} }
func (id DelegationId) String() string { return hexString(id[:]) }
func (id DelegationId) IsZero() bool   { return id == DelegationId{} }
func (id FoundryId) String() string    { return hexString(id[:]) }
func (id FoundryId) IsZero() bool      { return id == FoundryId{} }
func (id TokenId) String() string      { return hexString(id[:]) }

// OutputId is (producing TransactionId, output index within that
// transaction's outputs). Its wire form is the 32-byte transaction id
// followed by the big-endian uint16 index.
type OutputId struct {
	TransactionId TransactionId
	Index         uint16
}

// Bytes returns the 34-byte packed form of the output id.
func (o OutputId) Bytes() [34]byte {
	var b [34]byte
	copy(b[:32], o.TransactionId[:])
	b[32] = byte(o.Index >> 8)
	b[33] = byte(o.Index)
	return b
}

func (o OutputId) String() string {
	b := o.Bytes()
	return hexString(b[:])
}

func (o OutputId) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *OutputId) UnmarshalText(text []byte) error {
	parsed, err := ParseOutputId(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutputId parses the canonical "0x<64 hex><4 hex>" form.
func ParseOutputId(s string) (OutputId, error) {
	s = trimHexPrefix(s)
	if len(s) != 68 {
		return OutputId{}, fmt.Errorf("types: output id must be 34 bytes, got %d hex chars", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return OutputId{}, fmt.Errorf("types: invalid output id hex: %w", err)
	}
	var out OutputId
	copy(out.TransactionId[:], raw[:32])
	out.Index = uint16(raw[32])<<8 | uint16(raw[33])
	return out, nil
}

// Compare provides a total order over output ids, used by cursor
// comparisons (spec §4.5): first by transaction id bytes, then by index.
func (o OutputId) Compare(other OutputId) int {
	for i := range o.TransactionId {
		if o.TransactionId[i] != other.TransactionId[i] {
			if o.TransactionId[i] < other.TransactionId[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case o.Index < other.Index:
		return -1
	case o.Index > other.Index:
		return 1
	default:
		return 0
	}
}

// AddressKind tags the union in Address.
type AddressKind uint8

const (
	AddressEd25519 AddressKind = iota
	AddressAccount
	AddressNft
	AddressAnchor
	AddressImplicitAccountCreation
)

// Address is a tagged union over the address kinds the protocol defines.
// Only one of the id fields is meaningful, selected by Kind.
type Address struct {
	Kind    AddressKind
	Ed25519 [32]byte
	Account AccountId
	Nft     NftId
	Anchor  AnchorId
}

func (a Address) String() string {
	switch a.Kind {
	case AddressEd25519, AddressImplicitAccountCreation:
		return hexString(a.Ed25519[:])
	case AddressAccount:
		return a.Account.String()
	case AddressNft:
		return a.Nft.String()
	case AddressAnchor:
		return a.Anchor.String()
	default:
		return "0x"
	}
}

// Key returns a stable string usable as an index/map key for this address,
// distinguishing the kind so that an Ed25519 address and an otherwise
// identical-bytes account id never collide.
func (a Address) Key() string {
	return fmt.Sprintf("%d:%s", a.Kind, a.String())
}
