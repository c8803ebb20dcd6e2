// Package indexer implements the typed per-kind output queries, balance
// ranking and token distribution that sit on top of pkg/storage's raw
// QueryOutputs (spec §4.5). pkg/storage deliberately only pushes the
// predicates it can express as a Mongo filter down to the database; this
// package applies the rest (native-token counts, role-specific address
// predicates, unlockable-by-address, kind-specific ids) against the
// decoded Output, the way the teacher's service layer composes thin
// storage calls into richer read paths rather than growing the storage
// layer's query language to match every caller.
package indexer

import (
	"context"
	"math/big"
	"time"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// Engine serves the typed indexer endpoints over a Store.
type Engine struct {
	store storage.Store
}

func New(store storage.Store) *Engine {
	return &Engine{store: store}
}

// OutputsResult is one page of a typed output query: the surviving ids,
// the next cursor (nil when exhausted) and the ledger index the page is
// consistent as of.
type OutputsResult struct {
	Items       []types.OutputId
	NextCursor  *string
	LedgerIndex types.MilestoneIndex
}

func (e *Engine) query(ctx context.Context, kind types.OutputKind, base types.OutputsFilter, keep func(types.Output) bool) (OutputsResult, error) {
	page, ledgerIndex, err := e.store.QueryOutputs(ctx, kind, base)
	if err != nil {
		return OutputsResult{}, err
	}
	if keep == nil {
		return OutputsResult{Items: page.Items, NextCursor: page.NextCursor, LedgerIndex: ledgerIndex}, nil
	}

	items := make([]types.OutputId, 0, len(page.Items))
	for _, id := range page.Items {
		lo, err := e.store.GetOutput(ctx, id)
		if err != nil {
			return OutputsResult{}, err
		}
		if lo == nil {
			continue
		}
		if keep(lo.Output) {
			items = append(items, id)
		}
	}
	return OutputsResult{Items: items, NextCursor: page.NextCursor, LedgerIndex: ledgerIndex}, nil
}

// sharedPredicates builds the keep-func for the filter fields common to
// every output kind: native-token presence/membership/count, and the
// address-role fields a Mongo-level equality filter on "address" can't
// distinguish (state controller vs governor vs issuer, etc., all live in
// UnlockConditions/Features rather than a single flat column).
func sharedPredicates(f types.OutputsFilter) func(types.Output) bool {
	now := types.UnixTimestamp(time.Now().Unix())
	return func(o types.Output) bool {
		if f.HasNativeTokens != nil && (len(o.NativeTokens) > 0) != *f.HasNativeTokens {
			return false
		}
		if f.NativeToken != nil {
			found := false
			for _, nt := range o.NativeTokens {
				if nt.TokenId == *f.NativeToken {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		if f.MinNativeTokenCount != nil && uint32(len(o.NativeTokens)) < *f.MinNativeTokenCount {
			return false
		}
		if f.MaxNativeTokenCount != nil && uint32(len(o.NativeTokens)) > *f.MaxNativeTokenCount {
			return false
		}
		if f.StateController != nil && !hasUnlockAddress(o, types.UnlockStateControllerAddress, *f.StateController) {
			return false
		}
		if f.Governor != nil && !hasUnlockAddress(o, types.UnlockGovernorAddress, *f.Governor) {
			return false
		}
		if f.ImmutableAliasAddress != nil && !hasUnlockAddress(o, types.UnlockImmutableAliasAddress, *f.ImmutableAliasAddress) {
			return false
		}
		if f.Issuer != nil && !hasFeatureAddress(o, types.FeatureIssuer, *f.Issuer) {
			return false
		}
		if f.Sender != nil && !hasFeatureAddress(o, types.FeatureSender, *f.Sender) {
			return false
		}
		if f.AccountAddress != nil {
			addr := types.Address{Kind: types.AddressAccount, Account: o.AccountId}
			if addr != *f.AccountAddress {
				return false
			}
		}
		if f.UnlockableByAddress != nil && !unlockableBy(o, *f.UnlockableByAddress, now) {
			return false
		}
		return true
	}
}

func hasUnlockAddress(o types.Output, kind types.UnlockConditionKind, addr types.Address) bool {
	for _, uc := range o.UnlockConditions {
		if uc.Kind == kind && uc.Address == addr {
			return true
		}
	}
	return false
}

func hasFeatureAddress(o types.Output, kind types.FeatureKind, addr types.Address) bool {
	for _, feat := range o.Features {
		if feat.Kind == kind && feat.Address == addr {
			return true
		}
	}
	for _, feat := range o.ImmutableFeatures {
		if feat.Kind == kind && feat.Address == addr {
			return true
		}
	}
	return false
}

// unlockableBy reports whether addr can unlock o as of asOf, honoring
// timelock and expiration conditions (spec §4.5).
func unlockableBy(o types.Output, addr types.Address, asOf types.UnixTimestamp) bool {
	var owner, returnAddr *types.Address
	var expiry *types.UnixTimestamp
	var timelock *types.UnixTimestamp
	for _, uc := range o.UnlockConditions {
		switch uc.Kind {
		case types.UnlockAddress:
			a := uc.Address
			owner = &a
		case types.UnlockExpiration:
			a := uc.Address
			t := uc.UnixTime
			returnAddr = &a
			expiry = &t
		case types.UnlockTimelock:
			t := uc.UnixTime
			timelock = &t
		}
	}
	if timelock != nil && asOf < *timelock {
		return false
	}
	if expiry != nil {
		if asOf >= *expiry {
			return returnAddr != nil && *returnAddr == addr
		}
		return owner != nil && *owner == addr
	}
	return owner != nil && *owner == addr
}

func (e *Engine) QueryBasicOutputs(ctx context.Context, f types.BasicOutputsFilter) (OutputsResult, error) {
	shared := sharedPredicates(f.OutputsFilter)
	return e.query(ctx, types.OutputBasic, f.OutputsFilter, func(o types.Output) bool {
		if !shared(o) {
			return false
		}
		if f.Tag != nil && !hasTag(o, *f.Tag) {
			return false
		}
		return true
	})
}

func hasTag(o types.Output, tag []byte) bool {
	for _, feat := range o.Features {
		if feat.Kind == types.FeatureTag && string(feat.Tag) == string(tag) {
			return true
		}
	}
	return false
}

func (e *Engine) QueryAccountOutputs(ctx context.Context, f types.AccountOutputsFilter) (OutputsResult, error) {
	shared := sharedPredicates(f.OutputsFilter)
	return e.query(ctx, types.OutputAccount, f.OutputsFilter, func(o types.Output) bool {
		if !shared(o) {
			return false
		}
		if f.AccountId != nil && o.AccountId != *f.AccountId {
			return false
		}
		return true
	})
}

func (e *Engine) QueryFoundryOutputs(ctx context.Context, f types.FoundryOutputsFilter) (OutputsResult, error) {
	shared := sharedPredicates(f.OutputsFilter)
	return e.query(ctx, types.OutputFoundry, f.OutputsFilter, func(o types.Output) bool {
		if !shared(o) {
			return false
		}
		if f.FoundryId != nil && o.FoundryId != *f.FoundryId {
			return false
		}
		return true
	})
}

func (e *Engine) QueryNftOutputs(ctx context.Context, f types.NftOutputsFilter) (OutputsResult, error) {
	shared := sharedPredicates(f.OutputsFilter)
	return e.query(ctx, types.OutputNft, f.OutputsFilter, func(o types.Output) bool {
		if !shared(o) {
			return false
		}
		if f.NftId != nil && o.NftId != *f.NftId {
			return false
		}
		return true
	})
}

func (e *Engine) QueryAnchorOutputs(ctx context.Context, f types.AnchorOutputsFilter) (OutputsResult, error) {
	shared := sharedPredicates(f.OutputsFilter)
	return e.query(ctx, types.OutputAnchor, f.OutputsFilter, func(o types.Output) bool {
		return shared(o)
	})
}

func (e *Engine) QueryDelegationOutputs(ctx context.Context, f types.DelegationOutputsFilter) (OutputsResult, error) {
	shared := sharedPredicates(f.OutputsFilter)
	return e.query(ctx, types.OutputDelegation, f.OutputsFilter, func(o types.Output) bool {
		if !shared(o) {
			return false
		}
		if f.DelegationId != nil && o.DelegationId != *f.DelegationId {
			return false
		}
		if f.ValidatorAddress != nil && o.ValidatorAddress != *f.ValidatorAddress {
			return false
		}
		return true
	})
}

// RichestAddresses ranks balance rows descending (spec §4.5).
func (e *Engine) RichestAddresses(ctx context.Context, limit uint32) ([]storage.AddressBalance, error) {
	return e.store.RichestAddresses(ctx, limit)
}

// DistributionBucket is the count of addresses whose balance falls in
// [10^Exponent, 10^(Exponent+1)).
type DistributionBucket struct {
	Exponent int
	Count    uint64
}

// TokenDistribution buckets every known balance by floor(log10(balance))
// (spec §4.5). A zero balance has no row to bucket (RemoveBalance deletes
// it), so the zero bucket never appears.
func (e *Engine) TokenDistribution(ctx context.Context) ([]DistributionBucket, error) {
	balances, err := e.store.AllBalances(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[int]uint64{}
	for _, b := range balances {
		counts[log10Bucket(b.Amount)]++
	}
	buckets := make([]DistributionBucket, 0, len(counts))
	for exp, count := range counts {
		buckets = append(buckets, DistributionBucket{Exponent: exp, Count: count})
	}
	return buckets, nil
}

// log10Bucket returns floor(log10(v)) for v > 0, computed as (decimal
// digit count - 1) rather than via float64 to stay exact for amounts up
// to the full 256-bit range (spec §4.5 balances can exceed float64's
// integer-precise range well before they exceed a practical token supply).
func log10Bucket(amount [32]byte) int {
	v := new(big.Int).SetBytes(amount[:])
	if v.Sign() <= 0 {
		return 0
	}
	return len(v.String()) - 1
}
