package api

import (
	"database/sql"
	"net/http"

	"github.com/officeflow/officeflow/internal/blob"
	"github.com/officeflow/officeflow/internal/model"
	"github.com/officeflow/officeflow/internal/store"
)

// NewRouter creates the API router with all endpoints registered. Reads are
// open to every role, inventory writes need manager, and account or restore
// operations need admin.
func NewRouter(db *sql.DB, jwtSecret string, blobs *blob.Store) http.Handler {
	mux := http.NewServeMux()

	lookupCache := store.NewLookupCache(store.DefaultLookupTTL)

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	lookupsHandler := &LookupsHandler{DB: db, Cache: lookupCache}
	modelsHandler := &ModelsHandler{DB: db}
	assetsHandler := &AssetsHandler{DB: db}
	movementsHandler := &MovementsHandler{DB: db}
	maintenanceHandler := &MaintenanceHandler{DB: db}
	purchasesHandler := &PurchasesHandler{DB: db, Blobs: blobs}
	backupHandler := &BackupHandler{DB: db}
	tablesHandler := &TablesHandler{DB: db}
	filesHandler := &FilesHandler{Blobs: blobs}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login and signed downloads.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/files/{token}", filesHandler.Download)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Lookup tables: read (all roles), write (manager+).
	mux.Handle("GET /api/lookups/{table}", authMW(http.HandlerFunc(lookupsHandler.List)))
	mux.Handle("POST /api/lookups/{table}", authMW(requireManager(http.HandlerFunc(lookupsHandler.Create))))
	mux.Handle("PUT /api/lookups/{table}/{id}", authMW(requireManager(http.HandlerFunc(lookupsHandler.Update))))
	mux.Handle("DELETE /api/lookups/{table}/{id}", authMW(requireManager(http.HandlerFunc(lookupsHandler.Delete))))

	// Models: read (all roles), write (manager+).
	mux.Handle("GET /api/models", authMW(http.HandlerFunc(modelsHandler.List)))
	mux.Handle("POST /api/models", authMW(requireManager(http.HandlerFunc(modelsHandler.Create))))
	mux.Handle("GET /api/models/{id}", authMW(http.HandlerFunc(modelsHandler.Get)))
	mux.Handle("PUT /api/models/{id}", authMW(requireManager(http.HandlerFunc(modelsHandler.Update))))
	mux.Handle("DELETE /api/models/{id}", authMW(requireManager(http.HandlerFunc(modelsHandler.Delete))))

	// Assets: read (all roles), write (manager+).
	mux.Handle("GET /api/assets", authMW(http.HandlerFunc(assetsHandler.List)))
	mux.Handle("POST /api/assets", authMW(requireManager(http.HandlerFunc(assetsHandler.Create))))
	mux.Handle("GET /api/assets/{id}", authMW(http.HandlerFunc(assetsHandler.Get)))
	mux.Handle("PUT /api/assets/{id}", authMW(requireManager(http.HandlerFunc(assetsHandler.Update))))
	mux.Handle("DELETE /api/assets/{id}", authMW(requireManager(http.HandlerFunc(assetsHandler.Delete))))
	mux.Handle("GET /api/assets/{id}/movements", authMW(http.HandlerFunc(assetsHandler.GetMovements)))

	// Movements (all roles; every move is attributed to its user).
	mux.Handle("POST /api/movements", authMW(http.HandlerFunc(movementsHandler.Create)))
	mux.Handle("POST /api/movements/batch", authMW(http.HandlerFunc(movementsHandler.CreateBatch)))
	mux.Handle("GET /api/movements", authMW(http.HandlerFunc(movementsHandler.List)))

	// Maintenance: read (all roles), open/close (manager+).
	mux.Handle("GET /api/maintenances", authMW(http.HandlerFunc(maintenanceHandler.List)))
	mux.Handle("POST /api/maintenances", authMW(requireManager(http.HandlerFunc(maintenanceHandler.Open))))
	mux.Handle("GET /api/maintenances/{id}", authMW(http.HandlerFunc(maintenanceHandler.Get)))
	mux.Handle("PUT /api/maintenances/{id}/close", authMW(requireManager(http.HandlerFunc(maintenanceHandler.Close))))

	// Purchases: read (all roles), register (manager+).
	mux.Handle("GET /api/purchases", authMW(http.HandlerFunc(purchasesHandler.List)))
	mux.Handle("POST /api/purchases", authMW(requireManager(http.HandlerFunc(purchasesHandler.Create))))
	mux.Handle("GET /api/purchases/{id}", authMW(http.HandlerFunc(purchasesHandler.Get)))

	// Backup and per-table CSV: export (manager+), restore (admin only).
	mux.Handle("GET /api/backup", authMW(requireManager(http.HandlerFunc(backupHandler.Export))))
	mux.Handle("POST /api/restore", authMW(requireAdmin(http.HandlerFunc(backupHandler.Restore))))
	mux.Handle("GET /api/tables/{table}/export", authMW(requireManager(http.HandlerFunc(tablesHandler.Export))))
	mux.Handle("POST /api/tables/{table}/import", authMW(requireManager(http.HandlerFunc(tablesHandler.Import))))

	return mux
}
