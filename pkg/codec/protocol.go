package codec

import (
	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// EncodeProtocolParameters packs a ProtocolParameters the way read_protocol_parameters
// hands it back (spec §6.1): version, network name, bech32 hrp, token
// supply, below-max-depth and the rent structure, in that order.
func EncodeProtocolParameters(p types.ProtocolParameters) []byte {
	w := newWriter()
	w.byte(p.ProtocolVersion)
	w.sized([]byte(p.NetworkName))
	w.sized([]byte(p.Bech32Hrp))
	w.bytes32(p.TokenSupply)
	w.byte(p.BelowMaxDepth)
	w.uint32(p.RentStructure.VByteCost)
	w.byte(p.RentStructure.VByteFactorData)
	w.byte(p.RentStructure.VByteFactorKey)
	return w.bytes()
}

// DecodeProtocolParameters is the inverse of EncodeProtocolParameters; the
// raw input is preserved on the result so it can be re-served unchanged.
func DecodeProtocolParameters(raw []byte) (types.ProtocolParameters, error) {
	r := newReader(raw)
	version, err := r.byte()
	if err != nil {
		return types.ProtocolParameters{}, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	network, err := r.sized()
	if err != nil {
		return types.ProtocolParameters{}, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	hrp, err := r.sized()
	if err != nil {
		return types.ProtocolParameters{}, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	supply, err := r.bytes32()
	if err != nil {
		return types.ProtocolParameters{}, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	belowMaxDepth, err := r.byte()
	if err != nil {
		return types.ProtocolParameters{}, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	vByteCost, err := r.uint32()
	if err != nil {
		return types.ProtocolParameters{}, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	vByteFactorData, err := r.byte()
	if err != nil {
		return types.ProtocolParameters{}, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	vByteFactorKey, err := r.byte()
	if err != nil {
		return types.ProtocolParameters{}, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	return types.ProtocolParameters{
		ProtocolVersion: version,
		NetworkName:     string(network),
		Bech32Hrp:       string(hrp),
		TokenSupply:     supply,
		BelowMaxDepth:   belowMaxDepth,
		RentStructure: types.RentStructure{
			VByteCost:       vByteCost,
			VByteFactorData: vByteFactorData,
			VByteFactorKey:  vByteFactorKey,
		},
		Raw: raw,
	}, nil
}
