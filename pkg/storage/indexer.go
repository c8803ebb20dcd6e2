package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// buildOutputsFilter translates the shared filter vocabulary (spec §4.5)
// into a bson.M the unspent-outputs collection understands. Only the
// predicates that have a direct field on ledgerOutputDoc are handled here;
// richer predicates (unlockable_by_address, min/max native token count)
// are applied by pkg/indexer against the decoded Output after the query,
// since they depend on fields this codec doesn't flatten into the
// document (spec §9, "avoid runtime reflection" guided the choice to keep
// the per-kind dispatch in pkg/indexer rather than growing this filter
// into a full aggregation pipeline).
func buildOutputsFilter(kind types.OutputKind, f types.OutputsFilter) bson.M {
	filter := bson.M{"kind": uint8(kind)}
	if f.Address != nil {
		filter["address"] = f.Address.Key()
	}
	if f.CreatedAfter != nil {
		filter["created_at"] = bson.M{"$gt": uint32(*f.CreatedAfter)}
	}
	if f.CreatedBefore != nil {
		existing, _ := filter["created_at"].(bson.M)
		if existing == nil {
			existing = bson.M{}
		}
		existing["$lt"] = uint32(*f.CreatedBefore)
		filter["created_at"] = existing
	}
	return filter
}

func cursorFilter(filter bson.M, cursor *types.IndexedOutputsCursor, order types.SortOrder) {
	if cursor == nil {
		return
	}
	op := "$lte"
	if order == types.SortOldestFirst {
		op = "$gte"
	}
	filter["$or"] = []bson.M{
		{"booked": bson.M{opInequality(op): uint32(cursor.Slot)}},
		{
			"booked": uint32(cursor.Slot),
			"_id":    bson.M{op: cursor.OutputId.String()},
		},
	}
}

func opInequality(op string) string {
	if op == "$lte" {
		return "$lt"
	}
	return "$gt"
}

// QueryOutputs runs a typed indexer query (spec §4.5): it fetches
// pageSize+1 rows so the (pageSize+1)-th becomes the next cursor, and
// returns the ledger index the response is consistent as of.
func (s *MongoStore) QueryOutputs(ctx context.Context, kind types.OutputKind, f types.OutputsFilter) (Page[types.OutputId], types.MilestoneIndex, error) {
	filter := buildOutputsFilter(kind, f)
	cursorFilter(filter, f.Cursor, f.Order)

	sortDir := -1
	if f.Order == types.SortOldestFirst {
		sortDir = 1
	}
	pageSize := f.PageSize
	if pageSize == 0 {
		pageSize = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "booked", Value: sortDir}, {Key: "_id", Value: sortDir}}).
		SetLimit(int64(pageSize) + 1)

	cur, err := s.unspent().Find(ctx, filter, opts)
	if err != nil {
		return Page[types.OutputId]{}, 0, &chronoerr.StorageTransient{Cause: err}
	}
	defer cur.Close(ctx)

	var ids []types.OutputId
	var lastSlot types.SlotIndex
	for cur.Next(ctx) {
		var d ledgerOutputDoc
		if err := cur.Decode(&d); err != nil {
			return Page[types.OutputId]{}, 0, &chronoerr.StorageTransient{Cause: err}
		}
		id, err := types.ParseOutputId(d.OutputId)
		if err != nil {
			return Page[types.OutputId]{}, 0, &chronoerr.CorruptState{Reason: fmt.Sprintf("malformed output id %q: %v", d.OutputId, err)}
		}
		ids = append(ids, id)
		lastSlot = types.SlotIndex(d.Booked)
	}
	if err := cur.Err(); err != nil {
		return Page[types.OutputId]{}, 0, &chronoerr.StorageTransient{Cause: err}
	}

	latest, err := s.GetLatestCommittedSlot(ctx)
	if err != nil {
		return Page[types.OutputId]{}, 0, err
	}
	var ledgerIndex types.MilestoneIndex
	if latest != nil {
		ledgerIndex = types.MilestoneIndex(latest.Index)
	}

	page := Page[types.OutputId]{}
	if uint32(len(ids)) > pageSize {
		next := types.IndexedOutputsCursor{Slot: lastSlot, OutputId: ids[pageSize], PageSize: pageSize}
		nextStr := next.String()
		page.Items = ids[:pageSize]
		page.NextCursor = &nextStr
	} else {
		page.Items = ids
	}
	return page, ledgerIndex, nil
}

func (s *MongoStore) streamLedgerUpdates(ctx context.Context, baseFilter bson.M, pageSize uint32, cursor *types.LedgerUpdateCursor) (Page[LedgerUpdate], error) {
	if pageSize == 0 {
		pageSize = 100
	}
	filter := bson.M{}
	for k, v := range baseFilter {
		filter[k] = v
	}
	if cursor != nil {
		filter["$or"] = []bson.M{
			{"booked": bson.M{"$lt": uint32(cursor.Slot)}},
			{"booked": uint32(cursor.Slot), "_id": bson.M{"$lte": cursor.OutputId.String()}},
		}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "booked", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(pageSize) + 1)

	var updates []LedgerUpdate
	for _, spent := range []bool{true, false} {
		coll := s.unspent()
		if spent {
			coll = s.spent()
		}
		cur, err := coll.Find(ctx, filter, opts)
		if err != nil {
			return Page[LedgerUpdate]{}, &chronoerr.StorageTransient{Cause: err}
		}
		if spent {
			for cur.Next(ctx) {
				var d sliceOfLedgerOutputSpentDoc
				if err := cur.Decode(&d); err != nil {
					cur.Close(ctx)
					return Page[LedgerUpdate]{}, &chronoerr.StorageTransient{Cause: err}
				}
				lo, err := fromLedgerOutputDoc(d.ledgerOutputDoc)
				if err != nil {
					cur.Close(ctx)
					return Page[LedgerUpdate]{}, &chronoerr.DecodeError{Record: "output", Cause: err}
				}
				txId, err := types.ParseTransactionId(d.Spent.TransactionId)
				if err != nil {
					cur.Close(ctx)
					return Page[LedgerUpdate]{}, &chronoerr.CorruptState{Reason: err.Error()}
				}
				meta := types.SpentMetadata{TransactionId: txId, Slot: types.SlotIndex(d.Spent.Slot)}
				updates = append(updates, LedgerUpdate{Output: lo, IsSpent: true, Spent: &meta})
			}
		} else {
			for cur.Next(ctx) {
				var d ledgerOutputDoc
				if err := cur.Decode(&d); err != nil {
					cur.Close(ctx)
					return Page[LedgerUpdate]{}, &chronoerr.StorageTransient{Cause: err}
				}
				lo, err := fromLedgerOutputDoc(d)
				if err != nil {
					cur.Close(ctx)
					return Page[LedgerUpdate]{}, &chronoerr.DecodeError{Record: "output", Cause: err}
				}
				updates = append(updates, LedgerUpdate{Output: lo, IsSpent: false})
			}
		}
		cur.Close(ctx)
	}

	page := Page[LedgerUpdate]{}
	if uint32(len(updates)) > pageSize {
		last := updates[pageSize]
		next := types.LedgerUpdateCursor{
			Slot:     last.Output.Booked,
			OutputId: last.Output.OutputId,
			IsSpent:  last.IsSpent,
			PageSize: pageSize,
		}
		nextStr := next.String()
		page.Items = updates[:pageSize]
		page.NextCursor = &nextStr
	} else {
		page.Items = updates
	}
	return page, nil
}

func (s *MongoStore) StreamLedgerUpdatesByAddress(ctx context.Context, addr types.Address, pageSize uint32, cursor *types.LedgerUpdateCursor, order types.SortOrder) (Page[LedgerUpdate], error) {
	return s.streamLedgerUpdates(ctx, bson.M{"address": addr.Key()}, pageSize, cursor)
}

func (s *MongoStore) StreamLedgerUpdatesBySlot(ctx context.Context, slot types.SlotIndex, pageSize uint32, cursor *types.LedgerUpdateCursor) (Page[LedgerUpdate], error) {
	return s.streamLedgerUpdates(ctx, bson.M{"booked": uint32(slot)}, pageSize, cursor)
}
