package types

// OutputsFilter is the filter vocabulary shared across all per-kind
// indexer queries (spec §4.5). Every returned output id must satisfy all
// non-nil predicates AND be unspent at the ledger index the response
// reports. Per-kind query builders (pkg/indexer) translate this into the
// store's query language; kind-specific fields (account address, foundry
// serial number, ...) live in the per-kind wrappers below.
type OutputsFilter struct {
	HasNativeTokens *bool
	NativeToken     *TokenId

	Address                *Address
	StateController        *Address
	Governor               *Address
	Issuer                 *Address
	Sender                 *Address
	AccountAddress         *Address
	ImmutableAliasAddress  *Address
	UnlockableByAddress    *Address

	CreatedBefore *UnixTimestamp
	CreatedAfter  *UnixTimestamp

	MinNativeTokenCount *uint32
	MaxNativeTokenCount *uint32

	Cursor   *IndexedOutputsCursor
	PageSize uint32
	Order    SortOrder
}

// BasicOutputsFilter adds the Basic-output-specific predicates to the
// shared vocabulary.
type BasicOutputsFilter struct {
	OutputsFilter
	Tag *[]byte
}

// AccountOutputsFilter restricts results to Account outputs, optionally to
// one specific AccountId.
type AccountOutputsFilter struct {
	OutputsFilter
	AccountId *AccountId
}

// FoundryOutputsFilter restricts results to Foundry outputs.
type FoundryOutputsFilter struct {
	OutputsFilter
	FoundryId *FoundryId
}

// NftOutputsFilter restricts results to NFT outputs.
type NftOutputsFilter struct {
	OutputsFilter
	NftId *NftId
}

// AnchorOutputsFilter restricts results to Anchor outputs.
type AnchorOutputsFilter struct {
	OutputsFilter
	AnchorId *AnchorId
}

// DelegationOutputsFilter restricts results to Delegation outputs.
type DelegationOutputsFilter struct {
	OutputsFilter
	DelegationId     *DelegationId
	ValidatorAddress *Address
}

// Kind reports which typed indexer endpoint a filter targets; pkg/indexer
// dispatches on this instead of runtime reflection, per the "dynamic
// output-type dispatch" design note in spec §9.
func (BasicOutputsFilter) Kind() OutputKind      { return OutputBasic }
func (AccountOutputsFilter) Kind() OutputKind    { return OutputAccount }
func (FoundryOutputsFilter) Kind() OutputKind    { return OutputFoundry }
func (NftOutputsFilter) Kind() OutputKind        { return OutputNft }
func (AnchorOutputsFilter) Kind() OutputKind     { return OutputAnchor }
func (DelegationOutputsFilter) Kind() OutputKind { return OutputDelegation }
