package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/api"
	"github.com/elskow/press-portal/internal/apperror"
	"github.com/elskow/press-portal/internal/storage"
)

type Handler struct {
	svc    *Service
	intake storage.Intake
	log    *zap.Logger
}

func NewHandler(svc *Service, intake storage.Intake, log *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		intake: intake,
		log:    log,
	}
}

func (h *Handler) RegisterJournalist(c echo.Context) error {
	var in JournalistRegistration
	if isForm(c) {
		if err := c.Bind(&in); err != nil {
			return errMalformedBody
		}
		in.Interests = formInterests(c)

		// Nothing is written for a request that cannot register.
		if err := validationError(in.Validate()); err != nil {
			return err
		}
		license, err := h.storeLicense(c)
		if err != nil {
			return err
		}
		in.License = license
	} else {
		var body struct {
			JournalistRegistration
			Interests json.RawMessage `json:"interests"`
		}
		if err := c.Bind(&body); err != nil {
			return errMalformedBody
		}
		in = body.JournalistRegistration
		in.Interests = InterestsFromJSON(body.Interests)
	}

	a, err := h.svc.Lifecycle().RegisterJournalist(c.Request().Context(), in)
	if err != nil {
		h.discardLicense(c, in.License)
		return err
	}
	return api.OK(c, http.StatusCreated,
		"Journalist registration successful. Please check your email to verify your account.",
		echo.Map{"user": account.Project(a)})
}

func (h *Handler) RegisterComms(c echo.Context) error {
	var in CommsRegistration
	if isForm(c) {
		if err := c.Bind(&in); err != nil {
			return errMalformedBody
		}
		in.Interests = formInterests(c)
	} else {
		var body struct {
			CommsRegistration
			Interests json.RawMessage `json:"interests"`
		}
		if err := c.Bind(&body); err != nil {
			return errMalformedBody
		}
		in = body.CommsRegistration
		in.Interests = InterestsFromJSON(body.Interests)
	}

	a, err := h.svc.Lifecycle().RegisterComms(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated,
		"Comms registration successful. Please check your email to verify your account.",
		echo.Map{"user": account.Project(a)})
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginRequest
	if err := c.Bind(&in); err != nil {
		return errMalformedBody
	}

	session, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}

	data := echo.Map{
		"token":         session.Tokens.AccessToken,
		"refreshToken":  session.Tokens.RefreshToken,
		"user":          account.Project(session.Account),
		"limitedAccess": session.Decision.Access == AccessDegraded,
	}
	message := "Login successful"
	if session.Decision.Access == AccessDegraded {
		message = session.Decision.Message
	}
	return api.OK(c, http.StatusOK, message, data)
}

func (h *Handler) VerifyEmail(c echo.Context) error {
	var in TokenRequest
	if err := c.Bind(&in); err != nil {
		return errMalformedBody
	}
	if in.Token == "" {
		in.Token = c.QueryParam("token")
	}

	a, err := h.svc.Lifecycle().VerifyEmail(c.Request().Context(), in.Token)
	if err != nil {
		return err
	}

	var message string
	switch a.Status {
	case account.StatusActive:
		message = "Email verified successfully. Your account is now active."
	case account.StatusPending:
		message = "Email verified successfully. Your account is pending admin approval."
	default:
		message = "Email verified successfully."
	}
	return api.OK(c, http.StatusOK, message, echo.Map{"user": account.Project(a)})
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var in ForgotPasswordRequest
	if err := c.Bind(&in); err != nil {
		return errMalformedBody
	}

	message, err := h.svc.ForgotPassword(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, message, nil)
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var in ResetPasswordRequest
	if err := c.Bind(&in); err != nil {
		return errMalformedBody
	}

	if err := h.svc.ResetPassword(c.Request().Context(), in); err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "Password reset successful. You can now log in with your new password.", nil)
}

func (h *Handler) RefreshToken(c echo.Context) error {
	var in RefreshRequest
	if err := c.Bind(&in); err != nil {
		return errMalformedBody
	}

	access, err := h.svc.Refresh(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "Token refreshed", echo.Map{"token": access})
}

// Logout acknowledges the request. Sessions are stateless, so the client
// discards its tokens.
func (h *Handler) Logout(c echo.Context) error {
	return api.OK(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *Handler) Me(c echo.Context) error {
	a, err := h.svc.Me(c.Request().Context(), CurrentAccount(c).ID)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "", echo.Map{
		"user":          account.Project(a),
		"limitedAccess": IsDegraded(c),
	})
}

func (h *Handler) GetProfile(c echo.Context) error {
	return api.OK(c, http.StatusOK, "", echo.Map{"profile": account.Project(CurrentAccount(c))})
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var body struct {
		ProfileUpdate
		Interests json.RawMessage `json:"interests"`
	}
	if err := c.Bind(&body); err != nil {
		return errMalformedBody
	}
	in := body.ProfileUpdate
	if len(body.Interests) > 0 {
		in.Interests = InterestsFromJSON(body.Interests)
	}

	a, err := h.svc.UpdateProfile(c.Request().Context(), CurrentAccount(c).ID, in)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, "Profile updated successfully", echo.Map{"profile": account.Project(a)})
}

var errMalformedBody = apperror.Validation("Malformed request body", nil)

func (h *Handler) storeLicense(c echo.Context) (account.LicenseFile, error) {
	fh, err := c.FormFile("license")
	if errors.Is(err, http.ErrMissingFile) {
		return account.LicenseFile{}, nil
	}
	if err != nil {
		return account.LicenseFile{}, errMalformedBody
	}

	f, err := fh.Open()
	if err != nil {
		return account.LicenseFile{}, apperror.Internal("Server error during registration", err)
	}
	defer f.Close()

	ref, err := h.intake.Store(c.Request().Context(), storage.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		MimeType: fh.Header.Get(echo.HeaderContentType),
		Reader:   f,
	})
	switch {
	case errors.Is(err, storage.ErrTooLarge), errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrEmpty):
		return account.LicenseFile{}, apperror.Validation("Invalid license file", map[string]string{"license": err.Error()})
	case err != nil:
		return account.LicenseFile{}, apperror.Internal("Server error during registration", err)
	}
	return ref, nil
}

func (h *Handler) discardLicense(c echo.Context, file account.LicenseFile) {
	if file.IsZero() {
		return
	}
	if err := h.intake.Remove(c.Request().Context(), file); err != nil {
		h.log.Warn("failed to discard license of failed registration",
			zap.String("path", file.Path), zap.Error(err))
	}
}

func isForm(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEMultipartForm) || strings.HasPrefix(ct, echo.MIMEApplicationForm)
}

func formInterests(c echo.Context) []string {
	form, err := c.FormParams()
	if err != nil {
		return []string{}
	}
	values := append([]string{}, form["interests"]...)
	values = append(values, form["interests[]"]...)
	return NormalizeInterests(values...)
}
