package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"p9e.in/gemstock/config"
	"p9e.in/gemstock/handlers"
	"p9e.in/gemstock/middleware"
	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/importer"
	"p9e.in/gemstock/pkg/legacy"
	"p9e.in/gemstock/pkg/storage"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Stores    *config.Stores
	Auth      *middleware.AuthService
	Files     storage.Store
	UploadDir string         // served at /uploads/ when Files is local
	Legacy    *legacy.Client // nil when no legacy backend is configured
	Reports   *handlers.ReportHandler
	Log       *zap.Logger
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(d Deps) http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	authHandler := handlers.NewAuthHandler(d.Auth, d.Stores.Users, d.Log)
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	if d.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))),
		)
	}

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(d.Auth.JWTMiddleware)

	api.Handle("/profile", d.Auth.Authorize()(http.HandlerFunc(authHandler.Profile))).Methods("GET")

	registerStockRoutes(api, d)
	registerLedgerRoutes(api, d)
	registerCustodyRoutes(api, d)
	registerReportRoutes(api, d)
	registerFileRoutes(api, d)

	admin := api.PathPrefix("/admin").Subrouter()
	registerAdminRoutes(admin, d)

	// CORS wraps the router so preflight requests reach it before route
	// matching.
	return middleware.RequestLogger(d.Log)(middleware.CORS(r))
}

func registerStockRoutes(api *mux.Router, d Deps) {
	s, log := d.Stores, d.Log

	loose := handlers.NewResource("loose-stock", "Loose Stock", s.LooseStock, log)
	loose.Prepare = handlers.PrepareLooseStock
	registerCRUDRoutes(api, d.Auth, "/loose-stock", config.ResLooseStock, resourceHandlers(loose))
	api.Handle("/loose-stock/summary", d.Auth.RequirePermission(perm(config.ResLooseStock, "read"))(
		handlers.StockSummary(s.LooseStock, log))).Methods("GET")

	certified := handlers.NewResource("certified-stock", "Certified Stock", s.CertifiedStock, log)
	certified.Prepare = handlers.PrepareCertifiedStock
	registerCRUDRoutes(api, d.Auth, "/certified-stock", config.ResCertifiedStock, resourceHandlers(certified))
	api.Handle("/certified-stock/summary", d.Auth.RequirePermission(perm(config.ResCertifiedStock, "read"))(
		handlers.StockSummary(s.CertifiedStock, log))).Methods("GET")

	jewellery := handlers.NewResource("jewellery-stock", "Jewellery Stock", s.JewelleryStock, log)
	jewellery.Prepare = handlers.PrepareJewelleryStock
	registerCRUDRoutes(api, d.Auth, "/jewellery-stock", config.ResJewelleryStock, resourceHandlers(jewellery))
	api.Handle("/jewellery-stock/summary", d.Auth.RequirePermission(perm(config.ResJewelleryStock, "read"))(
		handlers.StockSummary(s.JewelleryStock, log))).Methods("GET")
}

func registerLedgerRoutes(api *mux.Router, d Deps) {
	s, log := d.Stores, d.Log

	sales := handlers.NewResource("sales", "Sales", s.Sales, log)
	sales.Prepare = handlers.PrepareSale
	registerCRUDRoutes(api, d.Auth, "/sales", config.ResSales, resourceHandlers(sales))
	registerImportRoutes(api, d.Auth, "/sales", config.ResSales,
		handlers.NewImportHandler("sales", s.Sales, importer.Sale, log),
		handlers.LegacySync(d.Legacy, legacy.SalesPaths, s.Sales, importer.Sale, log))

	purchases := handlers.NewResource("purchases", "Purchases", s.Purchases, log)
	purchases.Prepare = handlers.PreparePurchase
	registerCRUDRoutes(api, d.Auth, "/purchases", config.ResPurchases, resourceHandlers(purchases))
	registerImportRoutes(api, d.Auth, "/purchases", config.ResPurchases,
		handlers.NewImportHandler("purchases", s.Purchases, importer.Purchase, log),
		handlers.LegacySync(d.Legacy, legacy.PurchasePaths, s.Purchases, importer.Purchase, log))

	expenses := handlers.NewResource("expenses", "Expenses", s.Expenses, log)
	expenses.Prepare = handlers.PrepareExpense
	registerCRUDRoutes(api, d.Auth, "/expenses", config.ResExpenses, resourceHandlers(expenses))
	registerImportRoutes(api, d.Auth, "/expenses", config.ResExpenses,
		handlers.NewImportHandler("expenses", s.Expenses, importer.Expense, log),
		handlers.LegacySync(d.Legacy, legacy.ExpensePaths, s.Expenses, importer.Expense, log))
}

// importRoutes is the upload side of a ledger; the sync route shares its
// permission.
type importRoutes interface {
	Preview(http.ResponseWriter, *http.Request)
	Import(http.ResponseWriter, *http.Request)
}

func registerImportRoutes(api *mux.Router, auth *middleware.AuthService, path, resource string, imp importRoutes, sync http.HandlerFunc) {
	p := perm(resource, "import")
	api.Handle(path+"/import/preview", auth.RequirePermission(p)(
		http.HandlerFunc(imp.Preview))).Methods("POST")
	api.Handle(path+"/import", auth.RequirePermission(p)(
		http.HandlerFunc(imp.Import))).Methods("POST")
	api.Handle("/sync"+path, auth.RequirePermission(p)(sync)).Methods("POST")
}

func registerCustodyRoutes(api *mux.Router, d Deps) {
	s, log := d.Stores, d.Log

	for _, m := range []struct {
		kind  string
		title string
	}{
		{models.MemoGive, "Memo Give"},
		{models.MemoTake, "Memo Take"},
	} {
		store := s.MemoGive
		if m.kind == models.MemoTake {
			store = s.MemoTake
		}
		path := "/memo-" + m.kind
		memo := handlers.NewResource("memo-"+m.kind, m.title, store, log)
		memo.Prepare = handlers.PrepareMemo(m.kind)
		memo.Merge = handlers.KeepMemoDecisions
		registerCRUDRoutes(api, d.Auth, path, config.ResMemo, resourceHandlers(memo))

		decide := handlers.NewMemoHandler(m.kind, store, log)
		api.Handle(path+"/{id:[0-9]+}/decision", d.Auth.RequirePermission(perm(config.ResMemo, "decide"))(
			http.HandlerFunc(decide.Decide))).Methods("POST")
	}

	igi := handlers.NewResource("igi-issues", "IGI Issue", s.IgiIssues, log)
	igi.Prepare = handlers.PrepareIgiIssue
	igi.Merge = handlers.KeepIgiReceipts
	registerCRUDRoutes(api, d.Auth, "/igi-issues", config.ResIgi, resourceHandlers(igi))

	lab := handlers.NewIgiHandler(s.IgiIssues, log)
	api.Handle("/igi-issues/pending-items", d.Auth.RequirePermission(perm(config.ResIgi, "read"))(
		http.HandlerFunc(lab.PendingItems))).Methods("GET")
	api.Handle("/igi-issues/{id:[0-9]+}/receive", d.Auth.RequirePermission(perm(config.ResIgi, "receive"))(
		http.HandlerFunc(lab.Receive))).Methods("POST")
}

func registerReportRoutes(api *mux.Router, d Deps) {
	read := d.Auth.RequirePermission(perm(config.ResReports, "read"))
	api.Handle("/reports/summary", read(http.HandlerFunc(d.Reports.Summary))).Methods("GET")
	api.Handle("/reports/snapshots", read(http.HandlerFunc(d.Reports.Snapshots))).Methods("GET")
	api.Handle("/dashboard", read(http.HandlerFunc(d.Reports.Dashboard))).Methods("GET")
	api.Handle("/reports/export", d.Auth.RequirePermission(perm(config.ResReports, "export"))(
		http.HandlerFunc(d.Reports.Export))).Methods("GET")
}

// registerFileRoutes registers file upload endpoints
func registerFileRoutes(api *mux.Router, d Deps) {
	files := handlers.NewFileHandler(d.Files, d.Stores.CertifiedStock, d.Log)
	api.Handle("/files/upload", d.Auth.RequirePermission(perm(config.ResFiles, "create"))(
		http.HandlerFunc(files.Upload))).Methods("POST")
	api.Handle("/certified-stock/{id:[0-9]+}/attachments", d.Auth.RequirePermission(perm(config.ResCertifiedStock, "update"))(
		http.HandlerFunc(files.Attach))).Methods("POST")
}

// registerAdminRoutes registers user and role administration
func registerAdminRoutes(admin *mux.Router, d Deps) {
	users := handlers.NewUserHandler(d.Stores.Users, d.Stores.Roles, d.Log)
	registerCRUDRoutes(admin, d.Auth, "/users", config.ResUsers, crudHandlers{
		getAll: users.List,
		create: users.Create,
		getOne: users.Get,
		update: users.Update,
		delete: users.Delete,
	})

	roles := handlers.NewResource("roles", "Roles", d.Stores.Roles, d.Log)
	roles.Prepare = handlers.PrepareRole(config.PermissionCatalog())
	roles.Defaults = handlers.RoleDefaults
	roles.BeforeDelete = handlers.RoleNotInUse(d.Stores.Users)
	h := resourceHandlers(roles)
	h.batch, h.export, h.print = nil, nil, nil
	registerCRUDRoutes(admin, d.Auth, "/roles", config.ResRoles, h)

	admin.Handle("/permissions", d.Auth.RequireAnyPermission([]string{perm(config.ResRoles, "read"), perm(config.ResUsers, "read")})(
		http.HandlerFunc(handlers.Permissions))).Methods("GET")
}

type crudHandlers struct {
	getAll func(http.ResponseWriter, *http.Request)
	create func(http.ResponseWriter, *http.Request)
	getOne func(http.ResponseWriter, *http.Request)
	update func(http.ResponseWriter, *http.Request)
	delete func(http.ResponseWriter, *http.Request)
	batch  func(http.ResponseWriter, *http.Request)
	export func(http.ResponseWriter, *http.Request)
	print  func(http.ResponseWriter, *http.Request)
}

func resourceHandlers[T any](res *handlers.Resource[T]) crudHandlers {
	return crudHandlers{
		getAll: res.List,
		create: res.Create,
		getOne: res.Get,
		update: res.Update,
		delete: res.Delete,
		batch:  res.Batch,
		export: res.Export,
		print:  res.Print,
	}
}

func perm(resource, action string) string {
	return resource + ":" + action
}

// registerCRUDRoutes registers standard CRUD routes for a resource
func registerCRUDRoutes(router *mux.Router, auth *middleware.AuthService, path string, resource string, h crudHandlers) {
	readPerm := perm(resource, "read")
	createPerm := perm(resource, "create")
	updatePerm := perm(resource, "update")
	deletePerm := perm(resource, "delete")

	// GET all
	router.Handle(path, auth.RequirePermission(readPerm)(
		http.HandlerFunc(h.getAll))).Methods("GET")

	// POST create
	router.Handle(path, auth.RequirePermission(createPerm)(
		http.HandlerFunc(h.create))).Methods("POST")

	// GET export
	if h.export != nil {
		router.Handle(path+"/export", auth.RequirePermission(readPerm)(
			http.HandlerFunc(h.export))).Methods("GET")
	}

	// POST batch
	if h.batch != nil {
		router.Handle(path+"/batch", auth.RequirePermission(createPerm)(
			http.HandlerFunc(h.batch))).Methods("POST")
	}

	// GET one by ID
	router.Handle(path+"/{id:[0-9]+}", auth.RequirePermission(readPerm)(
		http.HandlerFunc(h.getOne))).Methods("GET")

	// GET printable document
	if h.print != nil {
		router.Handle(path+"/{id:[0-9]+}/print", auth.RequirePermission(readPerm)(
			http.HandlerFunc(h.print))).Methods("GET")
	}

	// PUT update
	router.Handle(path+"/{id:[0-9]+}", auth.RequirePermission(updatePerm)(
		http.HandlerFunc(h.update))).Methods("PUT")

	// DELETE
	router.Handle(path+"/{id:[0-9]+}", auth.RequirePermission(deletePerm)(
		http.HandlerFunc(h.delete))).Methods("DELETE")
}
