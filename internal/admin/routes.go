package admin

import (
	"github.com/labstack/echo/v4"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/api"
	"github.com/elskow/press-portal/internal/auth"
)

func RegisterRoutes(e *echo.Echo, h *Handler, gate *auth.Gate) {
	g := e.Group(api.AdminGroup,
		gate.Authenticate,
		gate.Authorize(auth.RoutePolicy{Roles: []account.Role{account.RoleAdmin}}))

	g.GET(api.AdminPendingJournalists, h.PendingJournalists)
	g.PUT(api.AdminApproveJournalist, h.ApproveJournalist)
	g.PUT(api.AdminRejectJournalist, h.RejectJournalist)
	g.GET(api.AdminUsers, h.ListUsers)
	g.PUT(api.AdminUserRole, h.SetRole)
	g.PUT(api.AdminUserStatus, h.SetStatus)
	g.DELETE(api.AdminUser, h.DeleteUser)
}
