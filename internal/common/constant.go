package common

// Role names persisted with users and sessions.
const (
	RoleGeneral = "general"
	RoleAdmin   = "admin"
)

// Chat roles used for entries the application writes on its own behalf.
const (
	ChatRoleUser   = "user"
	ChatRoleSystem = "system"
)

// MasterKeyEnvVar is the default environment variable holding the master key.
const MasterKeyEnvVar = "ENCRYPTION_KEY"
