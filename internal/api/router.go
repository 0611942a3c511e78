package api

import (
	"database/sql"
	"net/http"

	"github.com/divegear/gearbase/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret, reportsDir string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	membersHandler := &MembersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	compositionHandler := &CompositionHandler{DB: db}
	statesHandler := &StatesHandler{DB: db}
	loansHandler := &LoansHandler{DB: db}
	servicingHandler := &ServicingHandler{DB: db, ReportsDir: reportsDir}
	inventoryHandler := &InventoryHandler{DB: db}
	labelsHandler := &LabelsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireLender := RequireRole(model.RoleLender)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

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

	// Members: read (all roles), write (lender+), import (admin).
	mux.Handle("GET /api/members", authMW(http.HandlerFunc(membersHandler.List)))
	mux.Handle("POST /api/members", authMW(requireLender(http.HandlerFunc(membersHandler.Create))))
	mux.Handle("GET /api/members/{id}", authMW(http.HandlerFunc(membersHandler.Get)))
	mux.Handle("PUT /api/members/{id}/guarantee", authMW(requireLender(http.HandlerFunc(membersHandler.SetGuarantee))))
	mux.Handle("POST /api/members/import", authMW(requireAdmin(http.HandlerFunc(membersHandler.Import))))

	// Gear catalog and items: read (all roles), write (lender+).
	mux.Handle("GET /api/gear", authMW(http.HandlerFunc(itemsHandler.Catalog)))
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireLender(http.HandlerFunc(itemsHandler.Register))))
	mux.Handle("GET /api/items/references", authMW(http.HandlerFunc(itemsHandler.References)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireLender(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("POST /api/items/{id}/trash", authMW(requireLender(http.HandlerFunc(itemsHandler.Trash))))
	mux.Handle("POST /api/items/{id}/untrash", authMW(requireLender(http.HandlerFunc(itemsHandler.Untrash))))

	// Composition: read (all roles), write (lender+).
	mux.Handle("GET /api/composition", authMW(http.HandlerFunc(compositionHandler.Resolve)))
	mux.Handle("POST /api/composition", authMW(requireLender(http.HandlerFunc(compositionHandler.Attach))))

	// Item states (lender+ writes).
	mux.Handle("GET /api/items/{id}/states", authMW(http.HandlerFunc(statesHandler.List)))
	mux.Handle("POST /api/items/{id}/states", authMW(requireLender(http.HandlerFunc(statesHandler.Record))))
	mux.Handle("PUT /api/states/{id}", authMW(requireLender(http.HandlerFunc(statesHandler.Update))))
	mux.Handle("DELETE /api/states/{id}", authMW(requireLender(http.HandlerFunc(statesHandler.Delete))))

	// Loan desk (lender+).
	mux.Handle("GET /api/loans", authMW(http.HandlerFunc(loansHandler.List)))
	mux.Handle("GET /api/loans/borrowed", authMW(http.HandlerFunc(loansHandler.Borrowed)))
	mux.Handle("GET /api/loans/history", authMW(http.HandlerFunc(loansHandler.History)))
	mux.Handle("POST /api/loans", authMW(requireLender(http.HandlerFunc(loansHandler.Borrow))))
	mux.Handle("POST /api/loans/return", authMW(requireLender(http.HandlerFunc(loansHandler.GiveBack))))

	// Servicing (lender+ writes).
	mux.Handle("GET /api/servicing/due", authMW(http.HandlerFunc(servicingHandler.Due)))
	mux.Handle("GET /api/servicing/out", authMW(http.HandlerFunc(servicingHandler.Out)))
	mux.Handle("GET /api/servicing/reports/{file}", authMW(http.HandlerFunc(servicingHandler.Report)))
	mux.Handle("POST /api/servicing/send", authMW(requireLender(http.HandlerFunc(servicingHandler.Send))))
	mux.Handle("POST /api/servicing/return/{id}", authMW(requireLender(http.HandlerFunc(servicingHandler.Return))))
	mux.Handle("GET /api/items/{id}/servicings", authMW(http.HandlerFunc(servicingHandler.History)))
	mux.Handle("POST /api/items/{id}/servicings", authMW(requireLender(http.HandlerFunc(servicingHandler.Record))))

	// Inventory campaigns (lender+ writes).
	mux.Handle("GET /api/inventory", authMW(http.HandlerFunc(inventoryHandler.List)))
	mux.Handle("POST /api/inventory/start", authMW(requireLender(http.HandlerFunc(inventoryHandler.Start))))
	mux.Handle("POST /api/inventory/stop", authMW(requireLender(http.HandlerFunc(inventoryHandler.Stop))))
	mux.Handle("POST /api/inventory/{id}/restart", authMW(requireLender(http.HandlerFunc(inventoryHandler.Restart))))
	mux.Handle("GET /api/inventory/remaining", authMW(http.HandlerFunc(inventoryHandler.Remaining)))
	mux.Handle("GET /api/inventory/select", authMW(http.HandlerFunc(inventoryHandler.Select)))
	mux.Handle("GET /api/inventory/report", authMW(http.HandlerFunc(inventoryHandler.Report)))

	// QR labels.
	mux.Handle("GET /api/items/{id}/label", authMW(http.HandlerFunc(labelsHandler.Item)))
	mux.Handle("GET /api/labels/sheet", authMW(http.HandlerFunc(labelsHandler.Sheet)))
	mux.Handle("POST /api/labels/scan", authMW(http.HandlerFunc(labelsHandler.Scan)))

	return mux
}
