package admin

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/api"
	"github.com/elskow/press-portal/internal/apperror"
	"github.com/elskow/press-portal/internal/auth"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) PendingJournalists(c echo.Context) error {
	accounts, err := h.svc.ListPending(c.Request().Context(), account.RoleJournalist)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "", echo.Map{
		"journalists": account.ProjectAll(accounts),
		"count":       len(accounts),
	})
}

func (h *Handler) ListUsers(c echo.Context) error {
	q := ListQuery{
		Page:   atoi(c.QueryParam("page")),
		Limit:  atoi(c.QueryParam("limit")),
		Role:   account.Role(c.QueryParam("role")),
		Status: account.Status(c.QueryParam("status")),
	}

	res, err := h.svc.ListAccounts(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "", echo.Map{
		"users":      account.ProjectAll(res.Accounts),
		"pagination": api.NewPage(res.Page, res.Limit, res.Total),
	})
}

func (h *Handler) ApproveJournalist(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.ApproveJournalist(c.Request().Context(), auth.CurrentAccount(c), id)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "Journalist approved successfully", echo.Map{"user": account.Project(a)})
}

func (h *Handler) RejectJournalist(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.RejectJournalist(c.Request().Context(), auth.CurrentAccount(c), id)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "Journalist rejected", echo.Map{"user": account.Project(a)})
}

type roleRequest struct {
	Role account.Role `json:"role"`
}

type statusRequest struct {
	Status account.Status `json:"status"`
}

func (h *Handler) SetRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in roleRequest
	if err := c.Bind(&in); err != nil {
		return apperror.Validation("Malformed request body", nil)
	}

	a, err := h.svc.SetRole(c.Request().Context(), auth.CurrentAccount(c), id, in.Role)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "User role updated", echo.Map{"user": account.Project(a)})
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in statusRequest
	if err := c.Bind(&in); err != nil {
		return apperror.Validation("Malformed request body", nil)
	}

	a, err := h.svc.SetStatus(c.Request().Context(), auth.CurrentAccount(c), id, in.Status)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "User status updated", echo.Map{"user": account.Project(a)})
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAccount(c.Request().Context(), auth.CurrentAccount(c), id); err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "User deleted successfully", nil)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid user id", map[string]string{"id": "must be a UUID"})
	}
	return id, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
