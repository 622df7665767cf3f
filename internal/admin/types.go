// Package admin defines the console's entity records and instantiates the
// resource store pattern for each of them.
package admin

import "time"

// Status is the lifecycle state of a module or feature.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBeta     Status = "beta"
)

const defaultModuleIcon = "tabler-box"

// Module is a top-level product area.
type Module struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Status      Status    `json:"status"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (m Module) RecordID() string { return m.ID }

// Feature belongs to a module.
type Feature struct {
	ID          string    `json:"id"`
	ModuleID    string    `json:"module_id"`
	ModuleName  string    `json:"module_name,omitempty"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (f Feature) RecordID() string { return f.ID }

// Permission is a fine-grained capability grouped under a module.
type Permission struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Module      string    `json:"module,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p Permission) RecordID() string { return p.ID }

// Role groups permissions for console users.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r Role) RecordID() string { return r.ID }

// UserStatus is the account state of a console user.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// User is a console operator account.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (u User) RecordID() string { return u.ID }

// PlanCapability describes what a subscription plan unlocks.
type PlanCapability struct {
	ID        string         `json:"id"`
	PlanID    string         `json:"plan_id"`
	PlanName  string         `json:"plan_name"`
	Modules   []string       `json:"modules,omitempty"`
	Features  []string       `json:"features,omitempty"`
	Limits    map[string]int `json:"limits,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (c PlanCapability) RecordID() string { return c.ID }

// OverrideType selects what a tenant override targets.
type OverrideType string

const (
	OverrideModule     OverrideType = "module"
	OverrideFeature    OverrideType = "feature"
	OverridePermission OverrideType = "permission"
	OverrideLimit      OverrideType = "limit"
)

// OverrideAction selects how the target is altered.
type OverrideAction string

const (
	OverrideAdd    OverrideAction = "add"
	OverrideRemove OverrideAction = "remove"
	OverrideModify OverrideAction = "modify"
)

// TenantOverride grants or revokes a capability for a single tenant outside
// its plan.
type TenantOverride struct {
	ID        string         `json:"id"`
	CompanyID string         `json:"company_id"`
	Type      OverrideType   `json:"type"`
	TargetID  string         `json:"target_id"`
	Action    OverrideAction `json:"action"`
	Reason    string         `json:"reason,omitempty"`
	ExpiresAt string         `json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (o TenantOverride) RecordID() string { return o.ID }
