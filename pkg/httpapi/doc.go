/*
Package httpapi is Chronicle's outward HTTP surface (spec §6.2). It is
intentionally thin: a net/http.ServeMux wired directly to the query engine,
the proof-of-inclusion service and the ledger store, the same way the
teacher's pkg/api.HealthServer wires a mux straight to its manager rather
than going through an intermediate service layer.

Router concerns the contract explicitly treats as an external
collaborator — CORS, request-level metrics middleware, full JWT
verification — are out of scope here; this package exposes Handlers a
deployment wires behind whatever edge proxy it already runs. /health and
/routes are implemented in full since they're Chronicle's own liveness
signal; /login is stubbed behind an Authenticator interface with a no-op
default.

# Core Components

Server:
  - Holds the ledger store, indexer engine and PoI service plus an
    Authenticator, and builds the mux.

Handlers:
  - core.go: node-parity reads (block, output, milestone/slot)
  - explorer.go: ledger-update streams, balance, block children
  - indexerapi.go: typed per-kind output queries
  - poi.go: proof create/validate
  - health.go: liveness
  - routes.go: route listing, filtered by the public-route regex set
  - auth.go: login stub

Error envelope:
  - writeError maps a chronoerr type to the JSON { "code", "message" }
    envelope and HTTP status spec §6.2 and §7 require; internal errors are
    logged with their cause but never echoed to the client.

# Usage

	store, _ := storage.NewMongoStore(ctx, storeCfg, logger)
	srv := httpapi.NewServer(httpapi.Config{
		Store:        store,
		Engine:       indexer.New(store),
		PoI:          poi.NewService(store),
		PublicRoutes: cfg.API.PublicRoutes,
	}, logger)
	srv.Start(fmt.Sprintf(":%d", cfg.API.Port))
*/
package httpapi
