package admin

import (
	"fmt"
	"time"

	"adminkit.org/internal/ids"
)

// Seed fixtures mirror what a freshly provisioned console works against.

func SeedRoles() []Role {
	return []Role{
		{ID: "role-superadmin", Name: "Super Admin", Description: "Full platform access"},
		{ID: "role-admin", Name: "Admin", Description: "Tenant administration"},
		{ID: "role-support", Name: "Support", Description: "Read-mostly support access"},
	}
}

func SeedModules(now time.Time) []Module {
	mk := func(order int, code, name, icon string, status Status) Module {
		return Module{
			ID:        ids.Record(),
			Code:      code,
			Name:      name,
			Icon:      icon,
			Status:    status,
			SortOrder: order,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return []Module{
		mk(1, "iam", "Identity & Access", "tabler-users", StatusActive),
		mk(2, "billing", "Billing", "tabler-receipt", StatusActive),
		mk(3, "reports", "Reports", "tabler-chart-bar", StatusBeta),
	}
}

func SeedFeatures(modules []Module, now time.Time) []Feature {
	if len(modules) == 0 {
		return nil
	}
	iam := modules[0]
	return []Feature{
		{
			ID: ids.Record(), ModuleID: iam.ID, ModuleName: iam.Name,
			Code: "iam.users", Name: "User Management",
			Status: StatusActive, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: ids.Record(), ModuleID: iam.ID, ModuleName: iam.Name,
			Code: "iam.roles", Name: "Role Management",
			Status: StatusActive, CreatedAt: now, UpdatedAt: now,
		},
	}
}

func SeedPermissions(now time.Time) []Permission {
	return []Permission{
		{ID: ids.Record(), Code: "users.manage", Name: "Manage Users", Module: "iam", CreatedAt: now},
		{ID: ids.Record(), Code: "billing.view", Name: "View Billing", Module: "billing", CreatedAt: now},
		{ID: ids.Record(), Code: "reports.export", Name: "Export Reports", Module: "reports", CreatedAt: now},
	}
}

func SeedPlanCapabilities(now time.Time) []PlanCapability {
	return []PlanCapability{
		{
			ID: ids.Record(), PlanID: "plan-starter", PlanName: "Starter",
			Modules:   []string{"iam"},
			Limits:    map[string]int{"users": 10},
			CreatedAt: now,
		},
		{
			ID: ids.Record(), PlanID: "plan-business", PlanName: "Business",
			Modules:   []string{"iam", "billing", "reports"},
			Limits:    map[string]int{"users": 250},
			CreatedAt: now,
		},
	}
}

// SeedUsers generates n demo users assigned round-robin over roles, ordered
// most-recent-first the way the user collection presents them.
func SeedUsers(roles []Role, n int, now time.Time) []User {
	users := make([]User, 0, n)
	for i := n; i >= 1; i-- {
		role := Role{}
		if len(roles) > 0 {
			role = roles[i%len(roles)]
		}
		users = append(users, User{
			ID:        ids.Record(),
			Email:     fmt.Sprintf("operator%02d@example.com", i),
			Name:      fmt.Sprintf("Operator %02d", i),
			Role:      role,
			Status:    UserActive,
			CreatedAt: now.Add(-time.Duration(n-i) * time.Hour),
			UpdatedAt: now.Add(-time.Duration(n-i) * time.Hour),
		})
	}
	return users
}
