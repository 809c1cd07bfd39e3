package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/api"
)

// RegisterRoutes mounts the credential and profile endpoints.
func RegisterRoutes(e *echo.Echo, h *Handler, gate *Gate) {
	g := e.Group(api.AuthGroup)
	g.POST(api.AuthRegisterJournalist, h.RegisterJournalist)
	g.POST(api.AuthRegisterComms, h.RegisterComms)
	g.POST(api.AuthLogin, h.Login)
	g.POST(api.AuthVerifyEmail, h.VerifyEmail)
	g.POST(api.AuthForgotPassword, h.ForgotPassword)
	g.POST(api.AuthResetPassword, h.ResetPassword)
	g.POST(api.AuthRefreshToken, h.RefreshToken)
	g.POST(api.AuthLogout, h.Logout)
	g.GET(api.AuthMe, h.Me, gate.Authenticate, gate.Authorize(RoutePolicy{AllowDegraded: true}))

	journalist := e.Group(api.JournalistGroup, gate.Authenticate)
	journalist.GET(api.Profile, h.GetProfile,
		gate.Authorize(RoutePolicy{Roles: []account.Role{account.RoleJournalist}, AllowDegraded: true}))
	journalist.PUT(api.Profile, h.UpdateProfile,
		gate.Authorize(RoutePolicy{Roles: []account.Role{account.RoleJournalist}}))

	comms := e.Group(api.CommsGroup, gate.Authenticate,
		gate.Authorize(RoutePolicy{Roles: []account.Role{account.RoleComms}}))
	comms.GET(api.Profile, h.GetProfile)
	comms.PUT(api.Profile, h.UpdateProfile)
}
