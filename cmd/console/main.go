// Command console boots the state core against the in-memory services and
// walks a full operator flow: restore, login, browse users, create a module,
// delete it, log out. It fails loudly when an invariant does not hold.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"adminkit.org/internal/admin"
	"adminkit.org/internal/authsvc"
	"adminkit.org/internal/config"
	"adminkit.org/internal/notify"
	"adminkit.org/internal/obs"
	"adminkit.org/internal/resource"
	"adminkit.org/internal/service"
	"adminkit.org/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := obs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	obs.Init()
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", obs.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	sink := notify.Logger(logger)
	now := time.Now().UTC()

	// Seed the backing services the way a provisioned tenant looks.
	roles := admin.SeedRoles()
	roleSvc := service.NewMemory[admin.Role]()
	roleSvc.Seed(roles...)

	userSvc := service.NewMemory(service.WithPrepend[admin.User](), service.WithLatency[admin.User](cfg.MockLatencyMin, cfg.MockLatencyMax))
	userSvc.Seed(admin.SeedUsers(roles, 25, now)...)

	moduleSvc := service.NewMemory(service.WithLatency[admin.Module](cfg.MockLatencyMin, cfg.MockLatencyMax))
	moduleSvc.Seed(admin.SeedModules(now)...)

	auth := authsvc.NewMemory()
	if err := auth.AddAccount(authsvc.AccountSeed{
		Email:       "root@example.com",
		Password:    "correct horse battery staple",
		Name:        "Root Operator",
		Roles:       []authsvc.Role{{ID: "role-superadmin", Name: "Super Admin"}},
		Permissions: []string{"users.manage", "billing.view"},
	}); err != nil {
		log.Fatalf("seed auth account: %v", err)
	}

	sess := session.New(auth,
		session.WithLogger(logger),
		session.WithNotifier(sink),
		session.WithPersister(session.NewFilePersister(cfg.SnapshotPath)),
		session.WithCountdown(cfg.ResendWindowSeconds, cfg.CountdownTick),
	)
	if err := sess.Restore(); err != nil {
		log.Fatalf("restore session: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sess.Login(ctx, "root@example.com", "correct horse battery staple"); err != nil {
		log.Fatalf("login: %v", err)
	}
	abilities := sess.Abilities()
	if len(abilities) != 3 || abilities[len(abilities)-1].Subject != session.SubjectDefault {
		log.Fatalf("unexpected abilities: %v", abilities)
	}

	users := admin.NewUserStore(userSvc, roleSvc,
		resource.WithLogger[admin.User, admin.UserForm](logger),
		resource.WithNotifier[admin.User, admin.UserForm](sink),
		resource.WithPerPage[admin.User, admin.UserForm](cfg.PerPage),
	)
	if err := users.FetchRoles(ctx); err != nil {
		log.Fatalf("fetch roles: %v", err)
	}
	users.SetPage(3)
	if err := users.Fetch(ctx); err != nil {
		log.Fatalf("fetch users: %v", err)
	}
	page := users.Page()
	if page.Total != 25 || page.From != 21 || page.To != 25 || page.LastPage != 3 || len(page.Items) != 5 {
		log.Fatalf("pagination invariant violated: %+v", page)
	}

	modules := admin.NewModuleStore(moduleSvc,
		resource.WithLogger[admin.Module, admin.ModuleForm](logger),
		resource.WithNotifier[admin.Module, admin.ModuleForm](sink),
	)
	if err := modules.Fetch(ctx); err != nil {
		log.Fatalf("fetch modules: %v", err)
	}
	modules.OpenDialog(resource.ModeCreate, nil)
	modules.SetForm(admin.ModuleForm{Code: "audit", Name: "Audit Log", Icon: "tabler-history", Status: admin.StatusBeta})
	if err := modules.Create(ctx); err != nil {
		log.Fatalf("create module: %v", err)
	}
	created := findModule(modules.Records(), "audit")
	if created == nil {
		log.Fatalf("created module missing from working set")
	}
	if err := modules.Delete(ctx, created.ID); err != nil {
		log.Fatalf("delete module: %v", err)
	}
	if findModule(modules.Records(), "audit") != nil {
		log.Fatalf("deleted module still present")
	}

	if err := sess.Logout(ctx); err != nil {
		log.Fatalf("logout: %v", err)
	}
	if sess.Authenticated() || !sess.Credentials().Empty() {
		log.Fatalf("session not cleared after logout")
	}

	fmt.Println("✅ console smoke flow passed")
}

func findModule(list []admin.Module, code string) *admin.Module {
	for i := range list {
		if list[i].Code == code {
			return &list[i]
		}
	}
	return nil
}
