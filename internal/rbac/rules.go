package rbac

// Simple default policy. Role names match what the store records.
var RolePermissions = map[string][]string{
	"Student": {
		"question:view",
		"submission:create",
		"submission:view-own",
		"attempt:view-remaining",
		"user:change_password",
	},
	"Admin": {
		"*", // everything
	},
}
