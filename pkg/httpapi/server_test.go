package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/indexer"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/poi"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/types"
)

type fakeStore struct {
	storage.Store
	blocks   map[types.BlockId]types.Block
	metadata map[types.BlockId]types.BlockMetadata
	slot     *storage.SlotDoc
}

func (f fakeStore) GetBlock(ctx context.Context, id types.BlockId) (*types.Block, error) {
	if b, ok := f.blocks[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (f fakeStore) GetBlockMetadata(ctx context.Context, id types.BlockId) (*types.BlockMetadata, error) {
	if m, ok := f.metadata[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f fakeStore) GetLatestCommittedSlot(ctx context.Context) (*storage.SlotDoc, error) {
	return f.slot, nil
}

func blockId(b byte) types.BlockId {
	var id types.BlockId
	id[0] = b
	return id
}

func newTestServer(store storage.Store) *Server {
	return NewServer(Config{
		Store:       store,
		Engine:      indexer.New(store),
		PoI:         poi.NewService(store),
		MaxPageSize: 100,
	}, zerolog.Nop())
}

func TestHandleCoreBlockFound(t *testing.T) {
	id := blockId(1)
	store := fakeStore{blocks: map[types.BlockId]types.Block{id: {BlockId: id}}}
	srv := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/core/v3/blocks/"+id.String(), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleCoreBlockMissing(t *testing.T) {
	srv := newTestServer(fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/core/v3/blocks/"+blockId(9).String(), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealthReflectsStaleness(t *testing.T) {
	srv := newTestServer(fakeStore{slot: nil})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleRoutesFiltersNonPublic(t *testing.T) {
	srv := NewServer(Config{
		Store:        fakeStore{},
		Engine:       indexer.New(fakeStore{}),
		PoI:          poi.NewService(fakeStore{}),
		PublicRoutes: []string{"^/health$"},
	}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/routes", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/health")
	require.NotContains(t, rec.Body.String(), "/api/core")
}

func TestHandleLoginRejectsEmptyBody(t *testing.T) {
	srv := newTestServer(fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTruncateDepth(t *testing.T) {
	require.Equal(t, "/api/core", truncateDepth("/api/core/v3/blocks", 2))
	require.Equal(t, "/api/core/v3/blocks", truncateDepth("/api/core/v3/blocks", 0))
}
