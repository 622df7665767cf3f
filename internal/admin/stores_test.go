package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminkit.org/internal/resource"
	"adminkit.org/internal/service"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestModuleStoreCreateAssignsSortOrder(t *testing.T) {
	svc := service.NewMemory[Module]()
	svc.Seed(SeedModules(testNow)...)
	store := NewModuleStore(svc, resource.WithClock[Module, ModuleForm](func() time.Time { return testNow }))

	ctx := context.Background()
	require.NoError(t, store.Fetch(ctx))

	store.OpenDialog(resource.ModeCreate, nil)
	store.SetForm(ModuleForm{Code: "audit", Name: "Audit Log", Icon: defaultModuleIcon, Status: StatusBeta})
	require.NoError(t, store.Create(ctx))

	records := store.Records()
	require.Len(t, records, 4)
	created := records[len(records)-1]
	assert.Equal(t, "audit", created.Code)
	assert.Equal(t, 4, created.SortOrder)
	assert.Equal(t, testNow, created.CreatedAt)
}

func TestModuleStoreDefaultsIconAndStatus(t *testing.T) {
	svc := service.NewMemory[Module]()
	store := NewModuleStore(svc)

	f := store.Form()
	assert.Equal(t, defaultModuleIcon, f.Icon)
	assert.Equal(t, StatusActive, f.Status)
}

func TestModuleStoreValidation(t *testing.T) {
	svc := service.NewMemory[Module]()
	store := NewModuleStore(svc)
	store.OpenDialog(resource.ModeCreate, nil)
	store.SetForm(ModuleForm{Name: "No Code"})

	err := store.Create(context.Background())
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, svc.Len())
	assert.True(t, store.DialogVisible())
}

func TestUserStorePrependsNewUsers(t *testing.T) {
	roles := SeedRoles()
	roleSvc := service.NewMemory[Role]()
	roleSvc.Seed(roles...)
	userSvc := service.NewMemory(service.WithPrepend[User]())
	userSvc.Seed(SeedUsers(roles, 5, testNow)...)

	store := NewUserStore(userSvc, roleSvc)
	ctx := context.Background()
	require.NoError(t, store.FetchRoles(ctx))

	store.OpenDialog(resource.ModeCreate, nil)
	store.SetForm(UserForm{Email: "new@example.com", Name: "Newest", RoleID: roles[0].ID, Status: UserActive})
	require.NoError(t, store.Create(ctx))

	page := store.Page()
	require.NotEmpty(t, page.Items)
	assert.Equal(t, "new@example.com", page.Items[0].Email, "new users are most-recent-first")
	assert.Equal(t, roles[0].Name, page.Items[0].Role.Name, "role resolved from fetched role list")
}

func TestUserStoreSearchFiltersNameAndEmail(t *testing.T) {
	roles := SeedRoles()
	roleSvc := service.NewMemory[Role]()
	roleSvc.Seed(roles...)
	userSvc := service.NewMemory(service.WithPrepend[User]())
	userSvc.Seed(
		User{ID: "u1", Email: "alice@example.com", Name: "Alice"},
		User{ID: "u2", Email: "bob@example.com", Name: "Bob"},
	)

	store := NewUserStore(userSvc, roleSvc)
	store.SetSearch("ALICE")
	require.NoError(t, store.Fetch(context.Background()))
	page := store.Page()
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].ID)
}

func TestUserStoreProjectsSuspendedAsInactive(t *testing.T) {
	roleSvc := service.NewMemory[Role]()
	userSvc := service.NewMemory(service.WithPrepend[User]())
	store := NewUserStore(userSvc, roleSvc)

	suspended := User{ID: "u1", Email: "a@example.com", Name: "A", Status: UserSuspended}
	store.OpenDialog(resource.ModeEdit, &suspended)
	assert.Equal(t, UserInactive, store.Form().Status)
}

func TestUserStoreUpdatePreservesCreatedAt(t *testing.T) {
	roles := SeedRoles()
	roleSvc := service.NewMemory[Role]()
	roleSvc.Seed(roles...)
	userSvc := service.NewMemory(service.WithPrepend[User]())
	created := testNow.Add(-24 * time.Hour)
	userSvc.Seed(User{ID: "u1", Email: "a@example.com", Name: "A", Status: UserActive, CreatedAt: created, UpdatedAt: created})

	later := testNow.Add(time.Hour)
	store := NewUserStore(userSvc, roleSvc, resource.WithClock[User, UserForm](func() time.Time { return later }))
	ctx := context.Background()
	require.NoError(t, store.FetchRoles(ctx))

	target := User{ID: "u1", Email: "a@example.com", Name: "A", Status: UserActive, CreatedAt: created, UpdatedAt: created}
	store.OpenDialog(resource.ModeEdit, &target)
	f := store.Form()
	f.Name = "Renamed"
	f.RoleID = roles[1].ID
	store.SetForm(f)
	require.NoError(t, store.Update(ctx))

	list, err := userSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)
	assert.Equal(t, roles[1].ID, list[0].Role.ID)
	assert.Equal(t, created, list[0].CreatedAt)
	assert.Equal(t, later, list[0].UpdatedAt)
}

func TestFeatureStoreResolvesModuleName(t *testing.T) {
	modules := SeedModules(testNow)
	moduleSvc := service.NewMemory[Module]()
	moduleSvc.Seed(modules...)
	featureSvc := service.NewMemory[Feature]()

	store := NewFeatureStore(featureSvc, moduleSvc)
	ctx := context.Background()
	require.NoError(t, store.FetchModules(ctx))

	store.OpenDialog(resource.ModeCreate, nil)
	store.SetForm(FeatureForm{ModuleID: modules[1].ID, Code: "billing.invoices", Name: "Invoices", Status: StatusActive})
	require.NoError(t, store.Create(ctx))

	records := store.Records()
	require.Len(t, records, 1)
	assert.Equal(t, modules[1].Name, records[0].ModuleName)
}

func TestFeatureStoreValidationRequiresModule(t *testing.T) {
	store := NewFeatureStore(service.NewMemory[Feature](), service.NewMemory[Module]())
	store.OpenDialog(resource.ModeCreate, nil)
	store.SetForm(FeatureForm{Code: "x", Name: "X"})
	require.ErrorIs(t, store.Create(context.Background()), ErrValidation)
}

func TestPlanCapabilityStoreIsReadOnly(t *testing.T) {
	svc := service.NewMemory[PlanCapability]()
	svc.Seed(SeedPlanCapabilities(testNow)...)
	store := NewPlanCapabilityStore(svc)

	require.NoError(t, store.Fetch(context.Background()))
	assert.Len(t, store.Page().Items, 2)
	assert.ErrorIs(t, store.Create(context.Background()), resource.ErrReadOnly)
}

func TestTenantOverrideStoreCreateAndDelete(t *testing.T) {
	svc := service.NewMemory[TenantOverride]()
	store := NewTenantOverrideStore(svc)
	ctx := context.Background()

	store.OpenDialog(resource.ModeCreate, nil)
	store.SetForm(OverrideForm{CompanyID: "acme", Type: OverrideFeature, TargetID: "iam.users", Action: OverrideAdd, Reason: "pilot"})
	require.NoError(t, store.Create(ctx))
	require.Len(t, store.Records(), 1)
	created := store.Records()[0]

	require.NoError(t, store.Delete(ctx, created.ID))
	assert.Empty(t, store.Records())

	// Deleting again is a silent no-op.
	require.NoError(t, store.Delete(ctx, created.ID))
}

func TestTenantOverrideDefaults(t *testing.T) {
	store := NewTenantOverrideStore(service.NewMemory[TenantOverride]())
	f := store.Form()
	assert.Equal(t, OverrideModule, f.Type)
	assert.Equal(t, OverrideAdd, f.Action)

	assert.ErrorIs(t, store.Create(context.Background()), ErrValidation)
}
