// Package inx implements source.Source against a live node-extension
// (INX) endpoint over gRPC, the same google.golang.org/grpc transport the
// teacher's own pkg/client and pkg/api use for the manager<->worker/CLI
// channel (spec §6.1).
package inx

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/codec"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/source"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

const (
	methodNodeStatus           = "/inx.v2.INX/ReadNodeStatus"
	methodProtocolParameters   = "/inx.v2.INX/ReadProtocolParameters"
	methodConfirmedMilestones  = "/inx.v2.INX/ListenToConfirmedMilestones"
	methodLedgerUpdates        = "/inx.v2.INX/ListenToLedgerUpdates"
	methodMilestoneCone        = "/inx.v2.INX/ReadMilestoneCone"
	methodBlock                = "/inx.v2.INX/ReadBlock"
	methodBlockMetadata        = "/inx.v2.INX/ReadBlockMetadata"
	methodMilestone            = "/inx.v2.INX/ReadMilestone"
)

// Client is a source.Source backed by a single gRPC connection to the
// node's INX endpoint.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the node extension at addr without transport
// credentials; INX is typically reached over a private/loopback
// interface the node itself exposes, the way the teacher's workers reach
// their manager over a plain channel before certificates are issued.
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)))
	if err != nil {
		return nil, fmt.Errorf("inx: dialing node at %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

func classifyUnaryErr(err error) error {
	if err == nil {
		return nil
	}
	return &chronoerr.TransportTransient{Cause: err}
}

func (c *Client) NodeStatus(ctx context.Context) (source.NodeStatus, error) {
	var resp nodeStatusResponse
	if err := c.conn.Invoke(ctx, methodNodeStatus, &struct{}{}, &resp); err != nil {
		return source.NodeStatus{}, classifyUnaryErr(err)
	}
	var milestoneId types.MilestoneId
	copy(milestoneId[:], resp.LatestMilestoneId)
	return source.NodeStatus{
		IsHealthy:            resp.IsHealthy,
		LedgerIndex:          types.MilestoneIndex(resp.LedgerIndex),
		LatestMilestoneIndex: types.MilestoneIndex(resp.LatestMilestoneIndex),
		LatestMilestoneId:    milestoneId,
		PruningIndex:         types.MilestoneIndex(resp.PruningIndex),
	}, nil
}

func (c *Client) ProtocolParameters(ctx context.Context, version uint8) (types.ProtocolParameters, error) {
	var resp protocolParametersResponse
	req := protocolParametersRequest{Version: version}
	if err := c.conn.Invoke(ctx, methodProtocolParameters, &req, &resp); err != nil {
		return types.ProtocolParameters{}, classifyUnaryErr(err)
	}
	return codec.DecodeProtocolParameters(resp.Raw)
}

func (c *Client) Block(ctx context.Context, id types.BlockId) (types.Block, error) {
	var resp blockResponse
	req := blockRequest{Id: id[:]}
	if err := c.conn.Invoke(ctx, methodBlock, &req, &resp); err != nil {
		return types.Block{}, classifyUnaryErr(err)
	}
	return codec.DecodeBlock(resp.Raw)
}

func (c *Client) BlockMetadata(ctx context.Context, id types.BlockId) (types.BlockMetadata, error) {
	var resp blockMetadataResponse
	req := blockRequest{Id: id[:]}
	if err := c.conn.Invoke(ctx, methodBlockMetadata, &req, &resp); err != nil {
		return types.BlockMetadata{}, classifyUnaryErr(err)
	}
	return types.BlockMetadata{
		Solid:                 resp.Solid,
		ReferencedByMilestone: types.MilestoneIndex(resp.ReferencedByMilestone),
		InclusionState:        types.InclusionState(resp.InclusionState),
		ConflictReason:        types.ConflictReason(resp.ConflictReason),
	}, nil
}

func (c *Client) Milestone(ctx context.Context, index types.MilestoneIndex) (types.Milestone, error) {
	var resp milestoneResponse
	req := milestoneIndexRequest{Index: uint32(index)}
	if err := c.conn.Invoke(ctx, methodMilestone, &req, &resp); err != nil {
		return types.Milestone{}, classifyUnaryErr(err)
	}
	return codec.DecodeMilestone(resp.Raw)
}

// milestoneStream adapts a raw gRPC server-stream to source.MilestoneStream.
type milestoneStream struct{ grpc.ClientStream }

func (s *milestoneStream) Recv() (source.MilestoneAndParams, error) {
	var frame milestoneAndParamsFrame
	if err := s.ClientStream.RecvMsg(&frame); err != nil {
		if err == io.EOF {
			return source.MilestoneAndParams{}, io.EOF
		}
		return source.MilestoneAndParams{}, &chronoerr.TransportTransient{Cause: err}
	}
	m, err := codec.DecodeMilestone(frame.MilestoneRaw)
	if err != nil {
		return source.MilestoneAndParams{}, &chronoerr.DecodeError{Record: "milestone", Cause: err}
	}
	result := source.MilestoneAndParams{Milestone: m}
	if len(frame.ProtocolParamsRaw) > 0 {
		params, err := codec.DecodeProtocolParameters(frame.ProtocolParamsRaw)
		if err != nil {
			return source.MilestoneAndParams{}, &chronoerr.DecodeError{Record: "protocol_parameters", Cause: err}
		}
		result.Params = &params
	}
	return result, nil
}

func (c *Client) ListenToConfirmedMilestones(ctx context.Context, r types.Range) (source.MilestoneStream, error) {
	stream, err := c.conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodConfirmedMilestones)
	if err != nil {
		return nil, &chronoerr.TransportTransient{Cause: err}
	}
	req := milestoneRangeRequest{StartIndex: uint32(r.Start), EndIndex: uint32(r.End)}
	if err := stream.SendMsg(&req); err != nil {
		return nil, &chronoerr.TransportTransient{Cause: err}
	}
	if err := stream.CloseSend(); err != nil {
		return nil, &chronoerr.TransportTransient{Cause: err}
	}
	return &milestoneStream{ClientStream: stream}, nil
}

// ledgerUpdateStream adapts a raw gRPC server-stream to source.LedgerUpdateStream.
type ledgerUpdateStream struct{ grpc.ClientStream }

func (s *ledgerUpdateStream) Recv() (source.LedgerUpdateEvent, error) {
	var frame ledgerUpdateFrame
	if err := s.ClientStream.RecvMsg(&frame); err != nil {
		if err == io.EOF {
			return source.LedgerUpdateEvent{}, io.EOF
		}
		return source.LedgerUpdateEvent{}, &chronoerr.TransportTransient{Cause: err}
	}
	event := source.LedgerUpdateEvent{Kind: source.LedgerUpdateEventKind(frame.Kind)}
	switch event.Kind {
	case source.LedgerUpdateBeginEvent, source.LedgerUpdateEndEvent:
		event.Marker = source.LedgerUpdateMarker{
			MilestoneIndex: types.MilestoneIndex(frame.MilestoneIndex),
			ConsumedCount:  frame.ConsumedCount,
			CreatedCount:   frame.CreatedCount,
		}
	case source.LedgerUpdateConsumedEvent:
		lo, err := decodeLedgerOutput(frame)
		if err != nil {
			return source.LedgerUpdateEvent{}, err
		}
		txId, err := types.ParseTransactionId(fmt.Sprintf("0x%x", frame.SpentTransactionId))
		if err != nil {
			return source.LedgerUpdateEvent{}, &chronoerr.DecodeError{Record: "ledger_update", Cause: err}
		}
		event.Consumed = types.LedgerSpent{
			Output: lo,
			Spent:  types.SpentMetadata{TransactionId: txId, Slot: types.SlotIndex(frame.SpentSlot)},
		}
	case source.LedgerUpdateCreatedEvent:
		lo, err := decodeLedgerOutput(frame)
		if err != nil {
			return source.LedgerUpdateEvent{}, err
		}
		event.Created = lo
	default:
		return source.LedgerUpdateEvent{}, &chronoerr.ProtocolViolation{Reason: fmt.Sprintf("unknown ledger update frame kind %d", frame.Kind)}
	}
	return event, nil
}

func decodeLedgerOutput(frame ledgerUpdateFrame) (types.LedgerOutput, error) {
	outputId, err := types.ParseOutputId(fmt.Sprintf("0x%x", frame.OutputId))
	if err != nil {
		return types.LedgerOutput{}, &chronoerr.DecodeError{Record: "ledger_update", Cause: err}
	}
	blockId, err := types.ParseBlockId(fmt.Sprintf("0x%x", frame.BlockId))
	if err != nil {
		return types.LedgerOutput{}, &chronoerr.DecodeError{Record: "ledger_update", Cause: err}
	}
	output, err := codec.DecodeOutput(frame.RawOutput)
	if err != nil {
		return types.LedgerOutput{}, &chronoerr.DecodeError{Record: "ledger_update", Cause: err}
	}
	return types.LedgerOutput{
		OutputId:  outputId,
		BlockId:   blockId,
		Booked:    types.SlotIndex(frame.Booked),
		RawOutput: frame.RawOutput,
		RentBytes: frame.RentBytes,
		Output:    output,
	}, nil
}

func (c *Client) ListenToLedgerUpdates(ctx context.Context, r types.Range) (source.LedgerUpdateStream, error) {
	stream, err := c.conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodLedgerUpdates)
	if err != nil {
		return nil, &chronoerr.TransportTransient{Cause: err}
	}
	req := milestoneRangeRequest{StartIndex: uint32(r.Start), EndIndex: uint32(r.End)}
	if err := stream.SendMsg(&req); err != nil {
		return nil, &chronoerr.TransportTransient{Cause: err}
	}
	if err := stream.CloseSend(); err != nil {
		return nil, &chronoerr.TransportTransient{Cause: err}
	}
	return &ledgerUpdateStream{ClientStream: stream}, nil
}

// coneStream adapts a raw gRPC server-stream to source.ConeStream.
type coneStream struct{ grpc.ClientStream }

func (s *coneStream) Recv() (types.BlockWithMetadata, error) {
	var frame blockWithMetadataFrame
	if err := s.ClientStream.RecvMsg(&frame); err != nil {
		if err == io.EOF {
			return types.BlockWithMetadata{}, io.EOF
		}
		return types.BlockWithMetadata{}, &chronoerr.TransportTransient{Cause: err}
	}
	block, err := codec.DecodeBlock(frame.Raw)
	if err != nil {
		return types.BlockWithMetadata{}, &chronoerr.DecodeError{Record: "block", Cause: err}
	}
	block.Metadata.Solid = frame.Solid
	block.Metadata.ReferencedByMilestone = types.MilestoneIndex(frame.ReferencedByMilestone)
	block.Metadata.InclusionState = types.InclusionState(frame.InclusionState)
	block.Metadata.ConflictReason = types.ConflictReason(frame.ConflictReason)
	return types.BlockWithMetadata{Block: block, Metadata: block.Metadata}, nil
}

func (c *Client) MilestoneCone(ctx context.Context, index types.MilestoneIndex) (source.ConeStream, error) {
	stream, err := c.conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodMilestoneCone)
	if err != nil {
		return nil, &chronoerr.TransportTransient{Cause: err}
	}
	req := milestoneIndexRequest{Index: uint32(index)}
	if err := stream.SendMsg(&req); err != nil {
		return nil, &chronoerr.TransportTransient{Cause: err}
	}
	if err := stream.CloseSend(); err != nil {
		return nil, &chronoerr.TransportTransient{Cause: err}
	}
	return &coneStream{ClientStream: stream}, nil
}

var _ source.Source = (*Client)(nil)
