package httpapi

import (
	"net/http"
	"regexp"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/health"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/indexer"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/poi"
	"github.com/iotaledger/inx-chronicle-sub002/pkg/storage"
)

// Config configures a Server.
type Config struct {
	Store        storage.Store
	Engine       *indexer.Engine
	PoI          *poi.Service
	Auth         Authenticator
	PublicRoutes []string
	MaxPageSize  uint32
}

// Server answers the routes in spec §6.2's contract table. It holds no
// middleware of its own; CORS, request metrics and full JWT verification
// are wired in front of it by the deployment, per the contract's "routing
// is external" note.
type Server struct {
	store       storage.Store
	engine      *indexer.Engine
	poi         *poi.Service
	auth        Authenticator
	liveness    *health.SyncLivenessChecker
	publicRe    []*regexp.Regexp
	maxPageSize uint32
	log         zerolog.Logger

	mux      *http.ServeMux
	patterns []string
}

// NewServer builds a Server and registers every handler.
func NewServer(cfg Config, log zerolog.Logger) *Server {
	auth := cfg.Auth
	if auth == nil {
		auth = NoopAuthenticator{}
	}
	maxPageSize := cfg.MaxPageSize
	if maxPageSize == 0 {
		maxPageSize = 1000
	}

	s := &Server{
		store:       cfg.Store,
		engine:      cfg.Engine,
		poi:         cfg.PoI,
		auth:        auth,
		liveness:    health.NewSyncLivenessChecker(cfg.Store),
		publicRe:    compilePublicRoutes(cfg.PublicRoutes),
		maxPageSize: maxPageSize,
		log:         log.With().Str("component", "httpapi").Logger(),
		mux:         http.NewServeMux(),
	}

	s.register("GET /health", s.handleHealth)
	s.register("GET /routes", s.handleRoutes)
	s.register("POST /login", s.handleLogin)

	s.register("GET /api/core/v3/blocks/{id}", s.handleCoreBlock)
	s.register("GET /api/core/v3/blocks/{id}/metadata", s.handleCoreBlockMetadata)
	s.register("GET /api/core/v3/outputs/{id}", s.handleCoreOutput)
	s.register("GET /api/core/v3/milestones/{index}", s.handleCoreMilestone)

	s.register("GET /api/explorer/v3/ledger/updates/by-address/{addr}", s.handleLedgerUpdatesByAddress)
	s.register("GET /api/explorer/v3/ledger/updates/by-slot/{idx}", s.handleLedgerUpdatesBySlot)
	s.register("GET /api/explorer/v3/balance/{addr}", s.handleBalance)
	s.register("GET /api/explorer/v3/blocks/{id}/children", s.handleBlockChildren)

	for _, kind := range []string{"basic", "account", "foundry", "nft", "anchor", "delegation"} {
		path := "GET /api/indexer/v2/outputs/" + kind
		s.register(path, s.handleIndexerOutputs)
	}

	s.register("GET /api/poi/v1/create/{blockId}", s.handlePoICreate)
	s.register("POST /api/poi/v1/validate", s.handlePoIValidate)

	return s
}

// register wires pattern into the mux and records it (stripped of its
// leading HTTP method) for /routes to list.
func (s *Server) register(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
	s.patterns = append(s.patterns, pattern)
}

// Start runs the HTTP server on addr until it exits or ctx-driven
// shutdown is performed by the caller (see pkg/supervisor); timeouts match
// the teacher's own pkg/api.HealthServer.Start.
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// Handler exposes the underlying mux, e.g. for embedding behind an
// external router or in tests.
func (s *Server) Handler() http.Handler { return s.mux }

func compilePublicRoutes(raw []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(raw))
	for _, pattern := range raw {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		out = append(out, re)
	}
	return out
}

func (s *Server) isPublic(path string) bool {
	for _, re := range s.publicRe {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func sortedUnique(items []string) []string {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
