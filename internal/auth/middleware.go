package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/apperror"
)

// Context keys set by Gate.Authenticate
const (
	accountKey  = "auth.account"
	decisionKey = "auth.decision"
)

// RoutePolicy describes who may call a route.
type RoutePolicy struct {
	Roles         []account.Role
	AllowDegraded bool
}

// Gate guards routes with access tokens and the eligibility policy.
type Gate struct {
	svc *Service
	log *zap.Logger
}

func NewGate(svc *Service, log *zap.Logger) *Gate {
	return &Gate{svc: svc, log: log}
}

// Authenticate resolves the bearer token to a stored account. The policy is
// evaluated against the stored record on every request.
func (g *Gate) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))

		a, decision, err := g.svc.Authenticate(c.Request().Context(), raw)
		if err != nil {
			if apperror.KindOf(err) != apperror.KindServer {
				g.log.Debug("authentication rejected",
					zap.String("path", c.Path()),
					zap.String("code", apperror.CodeOf(err)))
			}
			return err
		}

		c.Set(accountKey, a)
		c.Set(decisionKey, decision)
		return next(c)
	}
}

// Authorize enforces a RoutePolicy. It must run after Authenticate.
func (g *Gate) Authorize(p RoutePolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := CurrentAccount(c)
			if a == nil {
				return errMissingToken
			}

			if len(p.Roles) > 0 && !hasRole(p.Roles, a.Role) {
				return apperror.Forbidden("Access denied. Insufficient permissions.")
			}
			if IsDegraded(c) && !p.AllowDegraded {
				return apperror.Forbidden("Your account is pending approval. This action requires full access.")
			}
			return next(c)
		}
	}
}

// CurrentAccount returns the account attached by Authenticate.
func CurrentAccount(c echo.Context) *account.Account {
	a, _ := c.Get(accountKey).(*account.Account)
	return a
}

// IsDegraded reports whether the session only has pending-approval access.
func IsDegraded(c echo.Context) bool {
	d, ok := c.Get(decisionKey).(Decision)
	return ok && d.Access == AccessDegraded
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func hasRole(roles []account.Role, role account.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
