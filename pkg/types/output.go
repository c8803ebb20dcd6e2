package types

// OutputKind tags the union in Output and selects which typed indexer
// query can run against it.
type OutputKind uint8

const (
	OutputBasic OutputKind = iota
	OutputAccount
	OutputFoundry
	OutputNft
	OutputAnchor
	OutputDelegation
	OutputTreasury
)

// UnlockConditionKind tags the union in UnlockCondition.
type UnlockConditionKind uint8

const (
	UnlockAddress UnlockConditionKind = iota
	UnlockStorageDepositReturn
	UnlockTimelock
	UnlockExpiration
	UnlockStateControllerAddress
	UnlockGovernorAddress
	UnlockImmutableAliasAddress
)

// UnlockCondition is a tagged union over the conditions that gate who may
// consume an output and when.
type UnlockCondition struct {
	Kind UnlockConditionKind

	Address Address // Address, StateControllerAddress, GovernorAddress, ImmutableAliasAddress

	ReturnAddress Address // StorageDepositReturn
	ReturnAmount  [32]byte

	UnixTime UnixTimestamp // Timelock, Expiration (expiration also uses Address above)
}

// FeatureKind tags the union in Feature.
type FeatureKind uint8

const (
	FeatureSender FeatureKind = iota
	FeatureIssuer
	FeatureMetadata
	FeatureTag
	FeatureNativeToken
	FeatureBlockIssuer
	FeatureStaking
)

// Feature is a tagged union over an output's optional feature set.
type Feature struct {
	Kind FeatureKind

	Address Address // Sender, Issuer

	MetadataBytes []byte // Metadata
	Tag           []byte // Tag

	NativeToken NativeToken // NativeToken

	BlockIssuerExpiry UnixTimestamp // BlockIssuer
	BlockIssuerKeys   [][]byte

	StakedAmount  [32]byte // Staking
	FixedCost     [32]byte
	StakingEpoch  uint32
}

// NativeToken is a minted token class amount attached to an output.
type NativeToken struct {
	TokenId TokenId
	Amount  [32]byte // big-endian, up to 2^256
}

// Output is a tagged union over the Stardust output kinds. Every kind
// carries an amount, optional native tokens, unlock conditions and
// features; per-kind struct fields hold what's specific to that kind.
type Output struct {
	Kind OutputKind

	Amount           [32]byte
	NativeTokens     []NativeToken
	UnlockConditions []UnlockCondition
	Features         []Feature

	// Account/Anchor
	AccountId         AccountId
	AnchorId          AnchorId
	StateIndex        uint32
	StateMetadata     []byte
	ImmutableFeatures []Feature
	FoundryCounter    uint32

	// Foundry
	FoundryId      FoundryId
	SerialNumber   uint32
	TokenScheme    TokenScheme

	// NFT
	NftId NftId

	// Delegation
	DelegationId     DelegationId
	DelegatedAmount  [32]byte
	ValidatorAddress Address
	StartEpoch       uint32
	EndEpoch         uint32
}

// TokenScheme describes a foundry's minting rules: simple min/max/melted
// supply tracking is the only scheme the Stardust protocol defines.
type TokenScheme struct {
	MintedTokens  [32]byte
	MeltedTokens  [32]byte
	MaximumSupply [32]byte
}

// IndexedId returns the typed id this output should be indexed under on
// the unspent-outputs partial index, and whether one applies at all
// (Basic and Treasury outputs carry none).
func (o Output) IndexedId() (string, bool) {
	switch o.Kind {
	case OutputAccount:
		return o.AccountId.String(), !o.AccountId.IsZero()
	case OutputAnchor:
		return o.AnchorId.String(), !o.AnchorId.IsZero()
	case OutputFoundry:
		return o.FoundryId.String(), !o.FoundryId.IsZero()
	case OutputNft:
		return o.NftId.String(), !o.NftId.IsZero()
	case OutputDelegation:
		return o.DelegationId.String(), !o.DelegationId.IsZero()
	default:
		return "", false
	}
}

// IsImplicit reports whether this output's self-referential id is still
// the all-zero placeholder, meaning it must be rewritten to its derived
// id (hash of the producing OutputId) on first persistence, per the
// implicit-id design note.
func (o Output) IsImplicit() bool {
	switch o.Kind {
	case OutputAccount:
		return o.AccountId.IsZero()
	case OutputAnchor:
		return o.AnchorId.IsZero()
	case OutputNft:
		return o.NftId.IsZero()
	case OutputDelegation:
		return o.DelegationId.IsZero()
	default:
		return false
	}
}

// UnlockAddress returns the target of this output's Address unlock
// condition. It returns false when the output has none (for example an
// Account or Anchor output gated by state-controller/governor conditions,
// or a Foundry); no chain-state address is resolved.
func (o Output) UnlockAddress() (Address, bool) {
	for _, uc := range o.UnlockConditions {
		if uc.Kind == UnlockAddress {
			return uc.Address, true
		}
	}
	return Address{}, false
}
