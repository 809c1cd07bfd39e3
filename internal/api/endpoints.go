package api

// Route groups
const (
	Prefix           = "/api"
	AuthGroup        = Prefix + "/auth"
	JournalistGroup  = Prefix + "/journalist"
	CommsGroup       = Prefix + "/comms"
	AdminGroup       = Prefix + "/admin"
	HealthCheckRoute = Prefix + "/health"
)

// Authentication endpoints, relative to AuthGroup
const (
	AuthRegisterJournalist = "/register/journalist"
	AuthRegisterComms      = "/register/comms"
	AuthLogin              = "/login"
	AuthVerifyEmail        = "/verify-email"
	AuthForgotPassword     = "/forgot-password"
	AuthResetPassword      = "/reset-password"
	AuthRefreshToken       = "/refresh-token"
	AuthLogout             = "/logout"
	AuthMe                 = "/me"
)

// Profile endpoint, relative to JournalistGroup and CommsGroup
const Profile = "/profile"

// Admin endpoints, relative to AdminGroup
const (
	AdminPendingJournalists = "/journalists/pending"
	AdminApproveJournalist  = "/journalists/:id/approve"
	AdminRejectJournalist   = "/journalists/:id/reject"
	AdminUsers              = "/users"
	AdminUserRole           = "/users/:id/role"
	AdminUserStatus         = "/users/:id/status"
	AdminUser               = "/users/:id"
)

// CredentialEndpoints are rate limited when limiting is enabled.
var CredentialEndpoints = map[string]bool{
	AuthGroup + AuthLogin:              true,
	AuthGroup + AuthRegisterJournalist: true,
	AuthGroup + AuthRegisterComms:      true,
	AuthGroup + AuthForgotPassword:     true,
	AuthGroup + AuthResetPassword:      true,
	AuthGroup + AuthVerifyEmail:        true,
}
