package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/synctracker"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

// MongoStore is the Store implementation backed by
// go.mongodb.org/mongo-driver, grounded in original_source's own MongoDb
// wrapper (src/db/mongodb.rs): one mongo.Client, one logical database, a
// session-scoped transaction per milestone commit.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	log    zerolog.Logger
}

// Config is the connection configuration (spec §6.4's mongodb.* keys).
type Config struct {
	ConnStr      string
	DatabaseName string
}

// NewMongoStore connects to MongoDB and ensures the collections/indexes
// this store needs exist, idempotently.
func NewMongoStore(ctx context.Context, cfg Config, logger zerolog.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.ConnStr))
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: fmt.Errorf("connecting to mongodb: %w", err)}
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, &chronoerr.StorageTransient{Cause: fmt.Errorf("pinging mongodb: %w", err)}
	}
	s := &MongoStore{
		client: client,
		db:     client.Database(cfg.DatabaseName),
		log:    logger.With().Str("component", "storage").Logger(),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) blocks() *mongo.Collection      { return s.db.Collection(collBlocks) }
func (s *MongoStore) parentEdges() *mongo.Collection { return s.db.Collection(collParentEdges) }
func (s *MongoStore) unspent() *mongo.Collection     { return s.db.Collection(collUnspent) }
func (s *MongoStore) spent() *mongo.Collection       { return s.db.Collection(collSpent) }
func (s *MongoStore) milestones() *mongo.Collection  { return s.db.Collection(collMilestones) }
func (s *MongoStore) sync() *mongo.Collection        { return s.db.Collection(collSync) }
func (s *MongoStore) protocol() *mongo.Collection     { return s.db.Collection(collProtocol) }
func (s *MongoStore) balances() *mongo.Collection    { return s.db.Collection(collBalances) }

// ensureIndexes creates the indexes spec §4.2/§6.3 require: unique
// (parent_id, child_id); unspent-output index by address and by booked
// slot; spent-output index by spending slot; balance index by address
// (the _id already provides this); partial indexed-id index on unspent
// rows only.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.parentEdges().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "parent_id", Value: 1}, {Key: "child_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("parent_child_unique"),
	})
	if err != nil {
		return &chronoerr.StorageFatal{Cause: fmt.Errorf("creating parent edge index: %w", err)}
	}

	_, err = s.unspent().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "address", Value: 1}}, Options: options.Index().SetName("unspent_by_address")},
		{Keys: bson.D{{Key: "booked", Value: 1}}, Options: options.Index().SetName("unspent_by_booked")},
		{
			Keys: bson.D{{Key: "indexed_id", Value: 1}},
			Options: options.Index().
				SetName("unspent_indexed_id_partial").
				SetPartialFilterExpression(bson.D{{Key: "indexed_id", Value: bson.D{{Key: "$exists", Value: true}}}}),
		},
	})
	if err != nil {
		return &chronoerr.StorageFatal{Cause: fmt.Errorf("creating unspent-output indexes: %w", err)}
	}

	_, err = s.spent().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "spent.slot", Value: 1}},
		Options: options.Index().SetName("spent_by_slot"),
	})
	if err != nil {
		return &chronoerr.StorageFatal{Cause: fmt.Errorf("creating spent-output index: %w", err)}
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CommitMilestone applies everything one milestone contributes — blocks,
// parent edges, created/consumed outputs, the milestone/slot record, the
// sync marker, and (when changed) a protocol-parameter upsert — inside one
// session transaction. If the transaction aborts the sync marker is not
// written and the caller (pkg/ingestion) retries the whole milestone.
func (s *MongoStore) CommitMilestone(ctx context.Context, milestone types.Milestone, blocks BlockBatch, outputs OutputsBatch, params *types.ProtocolParameters) error {
	session, err := s.client.StartSession()
	if err != nil {
		return &chronoerr.StorageTransient{Cause: fmt.Errorf("starting session: %w", err)}
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := s.insertMilestone(sc, milestone); err != nil {
			return nil, err
		}
		if err := s.insertBlocksWithMetadata(sc, blocks); err != nil {
			return nil, err
		}
		if len(outputs.Created) > 0 {
			if err := s.insertUnspentOutputs(sc, outputs.Created); err != nil {
				return nil, err
			}
		}
		if len(outputs.Spent) > 0 {
			if err := s.updateSpentOutputs(sc, outputs.Spent); err != nil {
				return nil, err
			}
		}
		if params != nil {
			if err := s.upsertProtocolParameters(sc, milestone.Index, *params); err != nil {
				return nil, err
			}
		}
		if err := s.insertSyncMarker(sc, milestone.Index); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return &chronoerr.StorageTransient{Cause: fmt.Errorf("committing milestone %d: %w", milestone.Index, err)}
	}
	return nil
}

func (s *MongoStore) insertMilestone(ctx context.Context, m types.Milestone) error {
	_, err := s.milestones().InsertOne(ctx, toMilestoneDoc(m))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("inserting milestone: %w", err)
	}
	return nil
}

func (s *MongoStore) UpsertCommittedSlot(ctx context.Context, m types.Milestone) error {
	return s.insertMilestone(ctx, m)
}

func (s *MongoStore) GetLatestCommittedSlot(ctx context.Context) (*SlotDoc, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "index", Value: -1}})
	var d milestoneDoc
	err := s.milestones().FindOne(ctx, bson.D{}, opts).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	m, err := fromMilestoneDoc(d)
	if err != nil {
		return nil, &chronoerr.DecodeError{Record: "milestone", Cause: err}
	}
	return &SlotDoc{
		CommitmentId: types.SlotCommitmentId{Hash: m.MilestoneId, Slot: types.SlotIndex(m.Index)},
		Index:        types.SlotIndex(m.Index),
		Raw:          m.Raw,
	}, nil
}

func (s *MongoStore) GetMilestone(ctx context.Context, index types.MilestoneIndex) (*types.Milestone, error) {
	var d milestoneDoc
	err := s.milestones().FindOne(ctx, bson.D{{Key: "index", Value: uint32(index)}}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	m, err := fromMilestoneDoc(d)
	if err != nil {
		return nil, &chronoerr.DecodeError{Record: "milestone", Cause: err}
	}
	return &m, nil
}

// insertBlocksWithMetadata inserts blocks and their parent edges.
// Duplicate (parent,child) pairs are ignored without error — the
// idempotence requirement of spec §4.2.
func (s *MongoStore) insertBlocksWithMetadata(ctx context.Context, batch BlockBatch) error {
	if len(batch.Blocks) > 0 {
		docs := make([]interface{}, len(batch.Blocks))
		for i, b := range batch.Blocks {
			d, err := toBlockDoc(b)
			if err != nil {
				return &chronoerr.DecodeError{Record: "block", Cause: err}
			}
			docs[i] = d
		}
		if _, err := s.blocks().InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
			if !mongo.IsDuplicateKeyError(err) {
				return &chronoerr.StorageFatal{Cause: fmt.Errorf("inserting blocks: %w", err)}
			}
		}
	}
	if len(batch.ParentEdges) > 0 {
		docs := make([]interface{}, len(batch.ParentEdges))
		for i, e := range batch.ParentEdges {
			docs[i] = parentEdgeDoc{Parent: e.Parent.String(), Child: e.Child.String()}
		}
		if _, err := s.parentEdges().InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
			if !mongo.IsDuplicateKeyError(err) {
				return &chronoerr.StorageFatal{Cause: fmt.Errorf("inserting parent edges: %w", err)}
			}
		}
	}
	return nil
}

func (s *MongoStore) InsertBlocksWithMetadata(ctx context.Context, batch BlockBatch) error {
	return s.insertBlocksWithMetadata(ctx, batch)
}

func (s *MongoStore) GetBlock(ctx context.Context, id types.BlockId) (*types.Block, error) {
	var d blockDoc
	err := s.blocks().FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	b, err := fromBlockDoc(d)
	if err != nil {
		return nil, &chronoerr.DecodeError{Record: "block", Cause: err}
	}
	return &b, nil
}

func (s *MongoStore) GetBlockMetadata(ctx context.Context, id types.BlockId) (*types.BlockMetadata, error) {
	b, err := s.GetBlock(ctx, id)
	if err != nil || b == nil {
		return nil, err
	}
	return &b.Metadata, nil
}

func (s *MongoStore) GetBlockChildren(ctx context.Context, id types.BlockId) ([]types.BlockId, error) {
	cur, err := s.parentEdges().Find(ctx, bson.D{{Key: "parent_id", Value: id.String()}})
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	defer cur.Close(ctx)

	var children []types.BlockId
	for cur.Next(ctx) {
		var d parentEdgeDoc
		if err := cur.Decode(&d); err != nil {
			return nil, &chronoerr.StorageTransient{Cause: err}
		}
		child, err := types.ParseBlockId(d.Child)
		if err != nil {
			return nil, &chronoerr.CorruptState{Reason: fmt.Sprintf("malformed child id in parent edge: %v", err)}
		}
		children = append(children, child)
	}
	return children, cur.Err()
}

func (s *MongoStore) insertUnspentOutputs(ctx context.Context, outputs []types.LedgerOutput) error {
	docs := make([]interface{}, len(outputs))
	for i, o := range outputs {
		docs[i] = toLedgerOutputDoc(o)
	}
	_, err := s.unspent().InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return &chronoerr.StorageFatal{Cause: fmt.Errorf("inserting unspent outputs: %w", err)}
	}
	for _, o := range outputs {
		addr, ok := o.Output.UnlockAddress()
		if !ok {
			continue
		}
		if err := s.AddBalance(ctx, addr, o.Output.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (s *MongoStore) InsertUnspentOutputs(ctx context.Context, outputs []types.LedgerOutput) error {
	return s.insertUnspentOutputs(ctx, outputs)
}

// updateSpentOutputs marks previously-unspent rows with spend metadata,
// moving them into the spent-outputs collection. Applying the same
// LedgerSpent twice must not duplicate or mutate beyond the first
// application (spec §4.2) — upsert-by-output-id gives that idempotence.
func (s *MongoStore) updateSpentOutputs(ctx context.Context, batch []types.LedgerSpent) error {
	for _, ls := range batch {
		doc := sliceOfLedgerOutputSpentDoc{
			ledgerOutputDoc: toLedgerOutputDoc(ls.Output),
			Spent: spentMetadataDoc{
				TransactionId: ls.Spent.TransactionId.String(),
				Slot:          uint32(ls.Spent.Slot),
			},
		}
		res, err := s.spent().UpdateOne(ctx,
			bson.D{{Key: "_id", Value: doc.OutputId}},
			bson.D{{Key: "$setOnInsert", Value: doc}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return &chronoerr.StorageFatal{Cause: fmt.Errorf("recording spend for %s: %w", ls.Output.OutputId, err)}
		}
		if res.UpsertedCount == 0 {
			continue // already recorded by an earlier application
		}
		if _, err := s.unspent().DeleteOne(ctx, bson.D{{Key: "_id", Value: doc.OutputId}}); err != nil {
			return &chronoerr.StorageFatal{Cause: fmt.Errorf("removing spent output %s from unspent set: %w", ls.Output.OutputId, err)}
		}
		if addr, ok := ls.Output.Output.UnlockAddress(); ok {
			if err := s.removeBalance(ctx, addr, ls.Output.Output.Amount); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *MongoStore) UpdateSpentOutputs(ctx context.Context, batch []types.LedgerSpent) error {
	return s.updateSpentOutputs(ctx, batch)
}

func (s *MongoStore) GetOutput(ctx context.Context, id types.OutputId) (*types.LedgerOutput, error) {
	var d ledgerOutputDoc
	err := s.unspent().FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		var sd sliceOfLedgerOutputSpentDoc
		err = s.spent().FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&sd)
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		if err != nil {
			return nil, &chronoerr.StorageTransient{Cause: err}
		}
		lo, err := fromLedgerOutputDoc(sd.ledgerOutputDoc)
		if err != nil {
			return nil, &chronoerr.DecodeError{Record: "output", Cause: err}
		}
		return &lo, nil
	}
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	lo, err := fromLedgerOutputDoc(d)
	if err != nil {
		return nil, &chronoerr.DecodeError{Record: "output", Cause: err}
	}
	return &lo, nil
}

func (s *MongoStore) GetOutputMetadata(ctx context.Context, id types.OutputId) (*OutputWithMetadata, error) {
	return s.GetOutputWithMetadata(ctx, id)
}

func (s *MongoStore) GetOutputWithMetadata(ctx context.Context, id types.OutputId) (*OutputWithMetadata, error) {
	var sd sliceOfLedgerOutputSpentDoc
	err := s.spent().FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&sd)
	if err == nil {
		lo, err := fromLedgerOutputDoc(sd.ledgerOutputDoc)
		if err != nil {
			return nil, &chronoerr.DecodeError{Record: "output", Cause: err}
		}
		txId, err := types.ParseTransactionId(sd.Spent.TransactionId)
		if err != nil {
			return nil, &chronoerr.CorruptState{Reason: fmt.Sprintf("malformed spending transaction id: %v", err)}
		}
		spentMeta := types.SpentMetadata{TransactionId: txId, Slot: types.SlotIndex(sd.Spent.Slot)}
		return &OutputWithMetadata{Output: lo, Spent: &spentMeta}, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}

	var d ledgerOutputDoc
	err = s.unspent().FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	lo, err := fromLedgerOutputDoc(d)
	if err != nil {
		return nil, &chronoerr.DecodeError{Record: "output", Cause: err}
	}
	return &OutputWithMetadata{Output: lo}, nil
}

func (s *MongoStore) insertSyncMarker(ctx context.Context, index types.MilestoneIndex) error {
	_, err := s.sync().InsertOne(ctx, syncDoc{Index: uint32(index)})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return &chronoerr.StorageFatal{Cause: fmt.Errorf("inserting sync marker %d: %w", index, err)}
	}
	return nil
}

func (s *MongoStore) InsertSyncMarker(ctx context.Context, index types.MilestoneIndex) error {
	return s.insertSyncMarker(ctx, index)
}

func (s *MongoStore) SortedMarkers(ctx context.Context, r types.Range) ([]types.MilestoneIndex, error) {
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$gte", Value: uint32(r.Start)}, {Key: "$lte", Value: uint32(r.End)}}}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.sync().Find(ctx, filter, opts)
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	defer cur.Close(ctx)

	var markers []types.MilestoneIndex
	for cur.Next(ctx) {
		var d syncDoc
		if err := cur.Decode(&d); err != nil {
			return nil, &chronoerr.StorageTransient{Cause: err}
		}
		markers = append(markers, types.MilestoneIndex(d.Index))
	}
	return markers, cur.Err()
}

func (s *MongoStore) GetSyncData(ctx context.Context, r types.Range) ([]types.Range, []types.Range, error) {
	markers, err := s.SortedMarkers(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	data, err := synctracker.Compute(r, markers, 0)
	if err != nil {
		return nil, nil, &chronoerr.RequestError{Reason: "invalid range", Cause: err}
	}
	return data.Completed, data.Gaps, nil
}

func (s *MongoStore) upsertProtocolParameters(ctx context.Context, index types.MilestoneIndex, params types.ProtocolParameters) error {
	latest, err := s.latestProtocolParameters(ctx)
	if err != nil {
		return err
	}
	if latest != nil && latest.Equal(params) {
		return nil // no-op upsert when unchanged, per spec §6.3
	}
	_, err = s.protocol().InsertOne(ctx, toProtocolUpdateDoc(index, params))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return &chronoerr.StorageFatal{Cause: fmt.Errorf("inserting protocol parameters at %d: %w", index, err)}
	}
	return nil
}

func (s *MongoStore) UpsertProtocolParameters(ctx context.Context, index types.MilestoneIndex, params types.ProtocolParameters) error {
	return s.upsertProtocolParameters(ctx, index, params)
}

func (s *MongoStore) latestProtocolParameters(ctx context.Context) (*types.ProtocolParameters, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	var d protocolUpdateDoc
	err := s.protocol().FindOne(ctx, bson.D{}, opts).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	p, err := fromProtocolUpdateDoc(d)
	if err != nil {
		return nil, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	return &p, nil
}

// ProtocolParamsFor returns the latest parameters with StartIndex <=
// index, per spec §3's "lookup by index returns the latest record with
// start <= index".
func (s *MongoStore) ProtocolParamsFor(ctx context.Context, index types.MilestoneIndex) (*types.ProtocolParameters, error) {
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$lte", Value: uint32(index)}}}}
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	var d protocolUpdateDoc
	err := s.protocol().FindOne(ctx, filter, opts).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &chronoerr.StorageTransient{Cause: err}
	}
	p, err := fromProtocolUpdateDoc(d)
	if err != nil {
		return nil, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
	}
	return &p, nil
}
