package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/elskow/press-portal/internal/account"
)

const (
	minPasswordLength = 6
	maxInterestLength = 50
)

var phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)

type JournalistRegistration struct {
	FirstName       string   `json:"firstName" form:"firstName"`
	Surname         string   `json:"surname" form:"surname"`
	LastName        string   `json:"lastName" form:"lastName"`
	Email           string   `json:"email" form:"email"`
	PhoneNumber     string   `json:"phoneNumber" form:"phoneNumber"`
	Country         string   `json:"country" form:"country"`
	Publication     string   `json:"publication" form:"publication"`
	Password        string   `json:"password" form:"password"`
	ConfirmPassword string   `json:"confirmPassword" form:"confirmPassword"`
	Interests       []string `json:"interests" form:"-"`

	License account.LicenseFile `json:"-" form:"-"`
}

func (r JournalistRegistration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Surname, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Publication, validation.Required),
		validation.Field(&r.PhoneNumber, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.Country, validation.Length(0, 50)),
		validation.Field(&r.Interests, validation.By(shortInterests)),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, 128)),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(equals(r.Password))),
	)
}

type CommsRegistration struct {
	FirstName       string   `json:"firstName" form:"firstName"`
	Surname         string   `json:"surname" form:"surname"`
	LastName        string   `json:"lastName" form:"lastName"`
	OrgEmail        string   `json:"orgEmail" form:"orgEmail"`
	OrgName         string   `json:"orgName" form:"orgName"`
	Position        string   `json:"position" form:"position"`
	Bio             string   `json:"bio" form:"bio"`
	PhoneNumber     string   `json:"phoneNumber" form:"phoneNumber"`
	Country         string   `json:"country" form:"country"`
	Password        string   `json:"password" form:"password"`
	ConfirmPassword string   `json:"confirmPassword" form:"confirmPassword"`
	Interests       []string `json:"interests" form:"-"`
}

func (r CommsRegistration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Surname, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.OrgEmail, validation.Required, is.Email),
		validation.Field(&r.OrgName, validation.Required),
		validation.Field(&r.Position, validation.Length(0, 100)),
		validation.Field(&r.Bio, validation.Length(0, 500)),
		validation.Field(&r.PhoneNumber, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.Country, validation.Length(0, 50)),
		validation.Field(&r.Interests, validation.By(shortInterests)),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, 128)),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(equals(r.Password))),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type TokenRequest struct {
	Token string `json:"token"`
}

func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, 128)),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(equals(r.Password))),
	)
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// ProfileUpdate carries the self-service profile fields. Nil fields are left
// unchanged. Role specific fields are ignored for other roles.
type ProfileUpdate struct {
	FirstName   *string  `json:"firstName"`
	Surname     *string  `json:"surname"`
	LastName    *string  `json:"lastName"`
	PhoneNumber *string  `json:"phoneNumber"`
	Country     *string  `json:"country"`
	Publication *string  `json:"publication"`
	OrgName     *string  `json:"orgName"`
	Position    *string  `json:"position"`
	Bio         *string  `json:"bio"`
	Interests   []string `json:"interests"`
}

func (r ProfileUpdate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.Surname, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.PhoneNumber, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.Country, validation.Length(0, 50)),
		validation.Field(&r.Position, validation.Length(0, 100)),
		validation.Field(&r.Bio, validation.Length(0, 500)),
		validation.Field(&r.Interests, validation.By(shortInterests)),
	)
}

func equals(other string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != other {
			return errors.New("Password confirmation does not match password")
		}
		return nil
	}
}

func shortInterests(value interface{}) error {
	list, _ := value.([]string)
	for _, v := range list {
		if len(v) > maxInterestLength {
			return fmt.Errorf("each interest must be at most %d characters", maxInterestLength)
		}
	}
	return nil
}

// NormalizeInterests turns the accepted encodings of the interests field into
// an ordered list: a JSON array, a string holding a JSON array, a comma
// separated string, or repeated form values.
func NormalizeInterests(values ...string) []string {
	out := []string{}
	for _, v := range values {
		out = append(out, splitInterests(v)...)
	}
	return out
}

// InterestsFromJSON accepts the raw JSON value of an interests field.
func InterestsFromJSON(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return NormalizeInterests(list...)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return NormalizeInterests(s)
	}
	return []string{}
}

func splitInterests(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	var parts []string
	if strings.HasPrefix(v, "[") {
		if err := json.Unmarshal([]byte(v), &parts); err != nil {
			parts = strings.Split(strings.Trim(v, "[]"), ",")
		}
	} else {
		parts = strings.Split(v, ",")
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
