package codec

import (
	"fmt"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

func encodeAddress(w *writer, a types.Address) {
	w.byte(byte(a.Kind))
	switch a.Kind {
	case types.AddressEd25519, types.AddressImplicitAccountCreation:
		w.bytes32(a.Ed25519)
	case types.AddressAccount:
		w.bytes32([32]byte(a.Account))
	case types.AddressNft:
		w.bytes32([32]byte(a.Nft))
	case types.AddressAnchor:
		w.bytes32([32]byte(a.Anchor))
	}
}

func decodeAddress(r *reader) (types.Address, error) {
	kind, err := r.byte()
	if err != nil {
		return types.Address{}, err
	}
	a := types.Address{Kind: types.AddressKind(kind)}
	switch a.Kind {
	case types.AddressEd25519, types.AddressImplicitAccountCreation:
		a.Ed25519, err = r.bytes32()
	case types.AddressAccount:
		var b [32]byte
		b, err = r.bytes32()
		a.Account = types.AccountId(b)
	case types.AddressNft:
		var b [32]byte
		b, err = r.bytes32()
		a.Nft = types.NftId(b)
	case types.AddressAnchor:
		var b [32]byte
		b, err = r.bytes32()
		a.Anchor = types.AnchorId(b)
	default:
		return types.Address{}, unknownKind("address", kind)
	}
	return a, err
}

func encodeUnlockCondition(w *writer, uc types.UnlockCondition) {
	w.byte(byte(uc.Kind))
	switch uc.Kind {
	case types.UnlockAddress, types.UnlockStateControllerAddress, types.UnlockGovernorAddress, types.UnlockImmutableAliasAddress:
		encodeAddress(w, uc.Address)
	case types.UnlockStorageDepositReturn:
		encodeAddress(w, uc.ReturnAddress)
		w.bytes32(uc.ReturnAmount)
	case types.UnlockTimelock:
		w.uint32(uint32(uc.UnixTime))
	case types.UnlockExpiration:
		encodeAddress(w, uc.Address)
		w.uint32(uint32(uc.UnixTime))
	}
}

func decodeUnlockCondition(r *reader) (types.UnlockCondition, error) {
	kind, err := r.byte()
	if err != nil {
		return types.UnlockCondition{}, err
	}
	uc := types.UnlockCondition{Kind: types.UnlockConditionKind(kind)}
	switch uc.Kind {
	case types.UnlockAddress, types.UnlockStateControllerAddress, types.UnlockGovernorAddress, types.UnlockImmutableAliasAddress:
		uc.Address, err = decodeAddress(r)
	case types.UnlockStorageDepositReturn:
		if uc.ReturnAddress, err = decodeAddress(r); err != nil {
			return uc, err
		}
		uc.ReturnAmount, err = r.bytes32()
	case types.UnlockTimelock:
		var v uint32
		v, err = r.uint32()
		uc.UnixTime = types.UnixTimestamp(v)
	case types.UnlockExpiration:
		if uc.Address, err = decodeAddress(r); err != nil {
			return uc, err
		}
		var v uint32
		v, err = r.uint32()
		uc.UnixTime = types.UnixTimestamp(v)
	default:
		return types.UnlockCondition{}, unknownKind("unlock_condition", kind)
	}
	return uc, err
}

func encodeFeature(w *writer, f types.Feature) {
	w.byte(byte(f.Kind))
	switch f.Kind {
	case types.FeatureSender, types.FeatureIssuer:
		encodeAddress(w, f.Address)
	case types.FeatureMetadata:
		w.sized(f.MetadataBytes)
	case types.FeatureTag:
		w.sized(f.Tag)
	case types.FeatureNativeToken:
		encodeNativeToken(w, f.NativeToken)
	case types.FeatureBlockIssuer:
		w.uint32(uint32(f.BlockIssuerExpiry))
		w.uint32(uint32(len(f.BlockIssuerKeys)))
		for _, k := range f.BlockIssuerKeys {
			w.sized(k)
		}
	case types.FeatureStaking:
		w.bytes32(f.StakedAmount)
		w.bytes32(f.FixedCost)
		w.uint32(f.StakingEpoch)
	}
}

func decodeFeature(r *reader) (types.Feature, error) {
	kind, err := r.byte()
	if err != nil {
		return types.Feature{}, err
	}
	f := types.Feature{Kind: types.FeatureKind(kind)}
	switch f.Kind {
	case types.FeatureSender, types.FeatureIssuer:
		f.Address, err = decodeAddress(r)
	case types.FeatureMetadata:
		f.MetadataBytes, err = r.sized()
	case types.FeatureTag:
		f.Tag, err = r.sized()
	case types.FeatureNativeToken:
		f.NativeToken, err = decodeNativeToken(r)
	case types.FeatureBlockIssuer:
		var exp uint32
		if exp, err = r.uint32(); err != nil {
			return f, err
		}
		f.BlockIssuerExpiry = types.UnixTimestamp(exp)
		var n uint32
		if n, err = r.uint32(); err != nil {
			return f, err
		}
		f.BlockIssuerKeys = make([][]byte, n)
		for i := range f.BlockIssuerKeys {
			if f.BlockIssuerKeys[i], err = r.sized(); err != nil {
				return f, err
			}
		}
	case types.FeatureStaking:
		if f.StakedAmount, err = r.bytes32(); err != nil {
			return f, err
		}
		if f.FixedCost, err = r.bytes32(); err != nil {
			return f, err
		}
		f.StakingEpoch, err = r.uint32()
	default:
		return types.Feature{}, unknownKind("feature", kind)
	}
	return f, err
}

func encodeNativeToken(w *writer, nt types.NativeToken) {
	b := [38]byte(nt.TokenId)
	w.buf.Write(b[:])
	w.bytes32(nt.Amount)
}

func decodeNativeToken(r *reader) (types.NativeToken, error) {
	var nt types.NativeToken
	var id [38]byte
	if _, err := readFull(r.buf, id[:]); err != nil {
		return nt, fmt.Errorf("codec: unexpected end of input: %w", err)
	}
	nt.TokenId = types.TokenId(id)
	amount, err := r.bytes32()
	nt.Amount = amount
	return nt, err
}

func encodeTokenScheme(w *writer, ts types.TokenScheme) {
	w.bytes32(ts.MintedTokens)
	w.bytes32(ts.MeltedTokens)
	w.bytes32(ts.MaximumSupply)
}

func decodeTokenScheme(r *reader) (types.TokenScheme, error) {
	var ts types.TokenScheme
	var err error
	if ts.MintedTokens, err = r.bytes32(); err != nil {
		return ts, err
	}
	if ts.MeltedTokens, err = r.bytes32(); err != nil {
		return ts, err
	}
	ts.MaximumSupply, err = r.bytes32()
	return ts, err
}

func encodeSlice[T any](w *writer, items []T, each func(*writer, T)) {
	w.uint32(uint32(len(items)))
	for _, it := range items {
		each(w, it)
	}
}

func decodeSlice[T any](r *reader, each func(*reader) (T, error)) ([]T, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	items := make([]T, n)
	for i := range items {
		items[i], err = each(r)
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

// EncodeOutput packs an Output into Chronicle's wire form.
func EncodeOutput(o types.Output) []byte {
	w := newWriter()
	w.byte(byte(o.Kind))
	w.bytes32(o.Amount)
	encodeSlice(w, o.NativeTokens, encodeNativeToken)
	encodeSlice(w, o.UnlockConditions, encodeUnlockCondition)
	encodeSlice(w, o.Features, encodeFeature)

	switch o.Kind {
	case types.OutputAccount:
		w.bytes32([32]byte(o.AccountId))
		w.uint32(o.StateIndex)
		w.sized(o.StateMetadata)
		encodeSlice(w, o.ImmutableFeatures, encodeFeature)
		w.uint32(o.FoundryCounter)
	case types.OutputAnchor:
		w.bytes32([32]byte(o.AnchorId))
		w.uint32(o.StateIndex)
		w.sized(o.StateMetadata)
		encodeSlice(w, o.ImmutableFeatures, encodeFeature)
	case types.OutputFoundry:
		b := [38]byte(o.FoundryId)
		w.buf.Write(b[:])
		w.uint32(o.SerialNumber)
		encodeTokenScheme(w, o.TokenScheme)
		encodeSlice(w, o.ImmutableFeatures, encodeFeature)
	case types.OutputNft:
		w.bytes32([32]byte(o.NftId))
		encodeSlice(w, o.ImmutableFeatures, encodeFeature)
	case types.OutputDelegation:
		w.bytes32([32]byte(o.DelegationId))
		w.bytes32(o.DelegatedAmount)
		encodeAddress(w, o.ValidatorAddress)
		w.uint32(o.StartEpoch)
		w.uint32(o.EndEpoch)
	}
	return w.bytes()
}

// DecodeOutput unpacks raw bytes produced by EncodeOutput. Unknown
// discriminants at any nesting level fail fast as a *chronoerr.DecodeError
// wrapping ErrUnknownKind, never silently dropped (spec §4.1).
func DecodeOutput(raw []byte) (types.Output, error) {
	r := newReader(raw)
	kind, err := r.byte()
	if err != nil {
		return types.Output{}, &chronoerr.DecodeError{Record: "output", Cause: err}
	}
	o := types.Output{Kind: types.OutputKind(kind)}
	switch o.Kind {
	case types.OutputBasic, types.OutputTreasury, types.OutputAccount, types.OutputAnchor,
		types.OutputFoundry, types.OutputNft, types.OutputDelegation:
	default:
		return types.Output{}, unknownKind("output", kind)
	}
	if o.Amount, err = r.bytes32(); err != nil {
		return o, &chronoerr.DecodeError{Record: "output", Cause: err}
	}
	if o.NativeTokens, err = decodeSlice(r, decodeNativeToken); err != nil {
		return o, &chronoerr.DecodeError{Record: "output", Cause: err}
	}
	if o.UnlockConditions, err = decodeSlice(r, decodeUnlockCondition); err != nil {
		return o, &chronoerr.DecodeError{Record: "output", Cause: err}
	}
	if o.Features, err = decodeSlice(r, decodeFeature); err != nil {
		return o, &chronoerr.DecodeError{Record: "output", Cause: err}
	}

	wrap := func(err error) (types.Output, error) {
		if err == nil {
			return o, nil
		}
		return o, &chronoerr.DecodeError{Record: "output", Cause: err}
	}

	switch o.Kind {
	case types.OutputBasic, types.OutputTreasury:
		return wrap(nil)
	case types.OutputAccount:
		var b [32]byte
		if b, err = r.bytes32(); err != nil {
			return wrap(err)
		}
		o.AccountId = types.AccountId(b)
		if o.StateIndex, err = r.uint32(); err != nil {
			return wrap(err)
		}
		if o.StateMetadata, err = r.sized(); err != nil {
			return wrap(err)
		}
		o.ImmutableFeatures, err = decodeSlice(r, decodeFeature)
		if err != nil {
			return wrap(err)
		}
		o.FoundryCounter, err = r.uint32()
		return wrap(err)
	case types.OutputAnchor:
		var b [32]byte
		if b, err = r.bytes32(); err != nil {
			return wrap(err)
		}
		o.AnchorId = types.AnchorId(b)
		if o.StateIndex, err = r.uint32(); err != nil {
			return wrap(err)
		}
		if o.StateMetadata, err = r.sized(); err != nil {
			return wrap(err)
		}
		o.ImmutableFeatures, err = decodeSlice(r, decodeFeature)
		return wrap(err)
	case types.OutputFoundry:
		var b [38]byte
		if _, err = readFull(r.buf, b[:]); err != nil {
			return wrap(err)
		}
		o.FoundryId = types.FoundryId(b)
		if o.SerialNumber, err = r.uint32(); err != nil {
			return wrap(err)
		}
		if o.TokenScheme, err = decodeTokenScheme(r); err != nil {
			return wrap(err)
		}
		o.ImmutableFeatures, err = decodeSlice(r, decodeFeature)
		return wrap(err)
	case types.OutputNft:
		var b [32]byte
		if b, err = r.bytes32(); err != nil {
			return wrap(err)
		}
		o.NftId = types.NftId(b)
		o.ImmutableFeatures, err = decodeSlice(r, decodeFeature)
		return wrap(err)
	case types.OutputDelegation:
		var b [32]byte
		if b, err = r.bytes32(); err != nil {
			return wrap(err)
		}
		o.DelegationId = types.DelegationId(b)
		if o.DelegatedAmount, err = r.bytes32(); err != nil {
			return wrap(err)
		}
		if o.ValidatorAddress, err = decodeAddress(r); err != nil {
			return wrap(err)
		}
		if o.StartEpoch, err = r.uint32(); err != nil {
			return wrap(err)
		}
		o.EndEpoch, err = r.uint32()
		return wrap(err)
	default:
		return types.Output{}, unknownKind("output", kind)
	}
}
