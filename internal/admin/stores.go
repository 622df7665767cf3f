package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"adminkit.org/internal/paginate"
	"adminkit.org/internal/resource"
	"adminkit.org/internal/service"
)

// ErrValidation marks a missing or malformed required form field. The dialog
// stays open and the form buffer is left untouched.
var ErrValidation = errors.New("admin: validation failed")

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return nil
}

// ModuleForm is the editable subset of a Module.
type ModuleForm struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Status      Status `json:"status"`
}

// ModuleStore manages the module collection.
type ModuleStore = resource.Store[Module, ModuleForm]

// NewModuleStore instantiates the resource store pattern for modules.
func NewModuleStore(svc service.Resource[Module], opts ...resource.Option[Module, ModuleForm]) *ModuleStore {
	hooks := resource.Hooks[Module, ModuleForm]{
		Defaults: func() ModuleForm {
			return ModuleForm{Icon: defaultModuleIcon, Status: StatusActive}
		},
		Validate: func(f ModuleForm) error {
			if err := required("code", f.Code); err != nil {
				return err
			}
			return required("name", f.Name)
		},
		Project: func(m Module) ModuleForm {
			icon := m.Icon
			if icon == "" {
				icon = defaultModuleIcon
			}
			return ModuleForm{
				Code:        m.Code,
				Name:        m.Name,
				Description: m.Description,
				Icon:        icon,
				Status:      m.Status,
			}
		},
		New: func(id string, f ModuleForm, now time.Time, total int) Module {
			return Module{
				ID:          id,
				Code:        f.Code,
				Name:        f.Name,
				Description: f.Description,
				Icon:        f.Icon,
				Status:      f.Status,
				SortOrder:   total + 1,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
		},
		Merge: func(m Module, f ModuleForm, now time.Time) Module {
			m.Code = f.Code
			m.Name = f.Name
			m.Description = f.Description
			m.Icon = f.Icon
			m.Status = f.Status
			m.UpdatedAt = now
			return m
		},
		Match: func(m Module, search string) bool {
			return paginate.MatchFold(search, m.Code, m.Name)
		},
	}
	return resource.New("module", svc, hooks, opts...)
}

// FeatureForm is the editable subset of a Feature.
type FeatureForm struct {
	ModuleID    string `json:"module_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// FeatureStore manages the feature collection, plus the module list features
// reference by name.
type FeatureStore struct {
	*resource.Store[Feature, FeatureForm]

	modules service.Resource[Module]

	mu         sync.Mutex
	moduleList []Module
}

// NewFeatureStore instantiates the resource store pattern for features.
func NewFeatureStore(svc service.Resource[Feature], modules service.Resource[Module], opts ...resource.Option[Feature, FeatureForm]) *FeatureStore {
	s := &FeatureStore{modules: modules}
	hooks := resource.Hooks[Feature, FeatureForm]{
		Defaults: func() FeatureForm {
			return FeatureForm{Status: StatusActive}
		},
		Validate: func(f FeatureForm) error {
			if err := required("module", f.ModuleID); err != nil {
				return err
			}
			if err := required("code", f.Code); err != nil {
				return err
			}
			return required("name", f.Name)
		},
		Project: func(rec Feature) FeatureForm {
			return FeatureForm{
				ModuleID:    rec.ModuleID,
				Code:        rec.Code,
				Name:        rec.Name,
				Description: rec.Description,
				Status:      rec.Status,
			}
		},
		New: func(id string, f FeatureForm, now time.Time, _ int) Feature {
			moduleName := ""
			if m, ok := s.moduleByID(f.ModuleID); ok {
				moduleName = m.Name
			}
			return Feature{
				ID:          id,
				ModuleID:    f.ModuleID,
				ModuleName:  moduleName,
				Code:        f.Code,
				Name:        f.Name,
				Description: f.Description,
				Status:      f.Status,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
		},
		Merge: func(rec Feature, f FeatureForm, now time.Time) Feature {
			rec.ModuleID = f.ModuleID
			if m, ok := s.moduleByID(f.ModuleID); ok {
				rec.ModuleName = m.Name
			}
			rec.Code = f.Code
			rec.Name = f.Name
			rec.Description = f.Description
			rec.Status = f.Status
			rec.UpdatedAt = now
			return rec
		},
		Match: func(rec Feature, search string) bool {
			return paginate.MatchFold(search, rec.Code, rec.Name, rec.ModuleName)
		},
	}
	s.Store = resource.New("feature", svc, hooks, opts...)
	return s
}

// FetchModules loads the module list used to resolve module names on submit.
func (s *FeatureStore) FetchModules(ctx context.Context) error {
	list, err := s.modules.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moduleList = list
	return nil
}

// Modules returns the cached module list.
func (s *FeatureStore) Modules() []Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Module{}, s.moduleList...)
}

func (s *FeatureStore) moduleByID(id string) (Module, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.moduleList {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// PermissionForm is the editable subset of a Permission.
type PermissionForm struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Module      string `json:"module"`
	Description string `json:"description"`
}

// PermissionStore manages the permission catalog.
type PermissionStore = resource.Store[Permission, PermissionForm]

// NewPermissionStore instantiates the resource store pattern for permissions.
func NewPermissionStore(svc service.Resource[Permission], opts ...resource.Option[Permission, PermissionForm]) *PermissionStore {
	hooks := resource.Hooks[Permission, PermissionForm]{
		Defaults: func() PermissionForm { return PermissionForm{} },
		Validate: func(f PermissionForm) error {
			if err := required("code", f.Code); err != nil {
				return err
			}
			return required("name", f.Name)
		},
		Project: func(p Permission) PermissionForm {
			return PermissionForm{
				Code:        p.Code,
				Name:        p.Name,
				Module:      p.Module,
				Description: p.Description,
			}
		},
		New: func(id string, f PermissionForm, now time.Time, _ int) Permission {
			return Permission{
				ID:          id,
				Code:        f.Code,
				Name:        f.Name,
				Module:      f.Module,
				Description: f.Description,
				CreatedAt:   now,
			}
		},
		Match: func(p Permission, search string) bool {
			return paginate.MatchFold(search, p.Code, p.Name, p.Module)
		},
	}
	return resource.New("permission", svc, hooks, opts...)
}

// UserForm is the editable subset of a console User.
type UserForm struct {
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Phone    string     `json:"phone"`
	RoleID   string     `json:"role_id"`
	Password string     `json:"password"`
	Status   UserStatus `json:"status"`
}

// UserStore manages console user accounts, plus the role list users are
// assigned from. New users are most-recent-first; the backing service must
// be configured to prepend.
type UserStore struct {
	*resource.Store[User, UserForm]

	roles service.Resource[Role]

	mu       sync.Mutex
	roleList []Role
}

// NewUserStore instantiates the resource store pattern for users.
func NewUserStore(svc service.Resource[User], roles service.Resource[Role], opts ...resource.Option[User, UserForm]) *UserStore {
	s := &UserStore{roles: roles}
	hooks := resource.Hooks[User, UserForm]{
		Defaults: func() UserForm {
			return UserForm{Status: UserActive}
		},
		Validate: func(f UserForm) error {
			if err := required("email", f.Email); err != nil {
				return err
			}
			if !strings.Contains(f.Email, "@") {
				return fmt.Errorf("%w: valid email is required", ErrValidation)
			}
			if err := required("name", f.Name); err != nil {
				return err
			}
			return required("role", f.RoleID)
		},
		Project: func(u User) UserForm {
			status := u.Status
			if status == UserSuspended {
				status = UserInactive
			}
			return UserForm{
				Email:  u.Email,
				Name:   u.Name,
				Phone:  u.Phone,
				RoleID: u.Role.ID,
				Status: status,
			}
		},
		New: func(id string, f UserForm, now time.Time, _ int) User {
			role, _ := s.roleByID(f.RoleID)
			return User{
				ID:        id,
				Email:     f.Email,
				Name:      f.Name,
				Phone:     f.Phone,
				Role:      role,
				Status:    f.Status,
				CreatedAt: now,
				UpdatedAt: now,
			}
		},
		Merge: func(u User, f UserForm, now time.Time) User {
			u.Email = f.Email
			u.Name = f.Name
			u.Phone = f.Phone
			if role, ok := s.roleByID(f.RoleID); ok {
				u.Role = role
			}
			u.Status = f.Status
			u.UpdatedAt = now
			return u
		},
		Match: func(u User, search string) bool {
			return paginate.MatchFold(search, u.Name, u.Email)
		},
	}
	s.Store = resource.New("user", svc, hooks, opts...)
	return s
}

// FetchRoles loads the assignable role list.
func (s *UserStore) FetchRoles(ctx context.Context) error {
	list, err := s.roles.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roleList = list
	return nil
}

// Roles returns the cached role list.
func (s *UserStore) Roles() []Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Role{}, s.roleList...)
}

func (s *UserStore) roleByID(id string) (Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roleList {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// PlanCapabilityStore is read-only: plans change through billing, not here.
type PlanCapabilityStore = resource.Store[PlanCapability, struct{}]

// NewPlanCapabilityStore instantiates a fetch-only store for plan
// capabilities.
func NewPlanCapabilityStore(svc service.Resource[PlanCapability], opts ...resource.Option[PlanCapability, struct{}]) *PlanCapabilityStore {
	hooks := resource.Hooks[PlanCapability, struct{}]{
		Defaults: func() struct{} { return struct{}{} },
		Project:  func(PlanCapability) struct{} { return struct{}{} },
		Match: func(c PlanCapability, search string) bool {
			return paginate.MatchFold(search, c.PlanName)
		},
	}
	return resource.New("plan_capability", svc, hooks, opts...)
}

// OverrideForm is the editable subset of a TenantOverride.
type OverrideForm struct {
	CompanyID string         `json:"company_id"`
	Type      OverrideType   `json:"type"`
	TargetID  string         `json:"target_id"`
	Action    OverrideAction `json:"action"`
	Reason    string         `json:"reason"`
	ExpiresAt string         `json:"expires_at"`
}

// TenantOverrideStore manages per-tenant capability overrides.
type TenantOverrideStore = resource.Store[TenantOverride, OverrideForm]

// NewTenantOverrideStore instantiates the resource store pattern for tenant
// overrides.
func NewTenantOverrideStore(svc service.Resource[TenantOverride], opts ...resource.Option[TenantOverride, OverrideForm]) *TenantOverrideStore {
	hooks := resource.Hooks[TenantOverride, OverrideForm]{
		Defaults: func() OverrideForm {
			return OverrideForm{Type: OverrideModule, Action: OverrideAdd}
		},
		Validate: func(f OverrideForm) error {
			if err := required("company", f.CompanyID); err != nil {
				return err
			}
			return required("target", f.TargetID)
		},
		Project: func(o TenantOverride) OverrideForm {
			return OverrideForm{
				CompanyID: o.CompanyID,
				Type:      o.Type,
				TargetID:  o.TargetID,
				Action:    o.Action,
				Reason:    o.Reason,
				ExpiresAt: o.ExpiresAt,
			}
		},
		New: func(id string, f OverrideForm, now time.Time, _ int) TenantOverride {
			return TenantOverride{
				ID:        id,
				CompanyID: f.CompanyID,
				Type:      f.Type,
				TargetID:  f.TargetID,
				Action:    f.Action,
				Reason:    f.Reason,
				ExpiresAt: f.ExpiresAt,
				CreatedAt: now,
			}
		},
		Match: func(o TenantOverride, search string) bool {
			return paginate.MatchFold(search, o.CompanyID, o.TargetID, string(o.Type))
		},
	}
	return resource.New("tenant_override", svc, hooks, opts...)
}
