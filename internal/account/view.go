package account

import (
	"time"

	"github.com/google/uuid"
)

// View is the public shape of an account. It is the only account
// representation handed to callers.
type View struct {
	ID                 uuid.UUID          `json:"id"`
	FirstName          string             `json:"firstName"`
	Surname            string             `json:"surname"`
	LastName           string             `json:"lastName"`
	FullName           string             `json:"fullName"`
	Email              string             `json:"email"`
	Role               Role               `json:"role"`
	RegistrationMethod RegistrationMethod `json:"registrationMethod"`
	Publication        string             `json:"publication,omitempty"`
	License            *LicenseView       `json:"licenseFile,omitempty"`
	OrgName            string             `json:"orgName,omitempty"`
	Position           string             `json:"position,omitempty"`
	Bio                string             `json:"bio,omitempty"`
	PhoneNumber        string             `json:"phoneNumber,omitempty"`
	Country            string             `json:"country,omitempty"`
	Interests          []string           `json:"interests"`
	Status             Status             `json:"status"`
	EmailVerified      bool               `json:"isEmailVerified"`
	LastLoginAt        *time.Time         `json:"lastLogin,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

type LicenseView struct {
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// Project maps every field that may leave the service and nothing else:
// credentials, single-use secrets and lockout state stay behind.
func Project(a *Account) View {
	v := View{
		ID:                 a.ID,
		FirstName:          a.FirstName,
		Surname:            a.Surname,
		LastName:           a.LastName,
		FullName:           a.FullName(),
		Email:              a.Email,
		Role:               a.Role,
		RegistrationMethod: a.RegistrationMethod,
		Publication:        a.Publication,
		OrgName:            a.OrgName,
		Position:           a.Position,
		Bio:                a.Bio,
		PhoneNumber:        a.PhoneNumber,
		Country:            a.Country,
		Interests:          append([]string{}, a.Interests...),
		Status:             a.Status,
		EmailVerified:      a.EmailVerified,
		LastLoginAt:        a.LastLoginAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
	if !a.License.IsZero() {
		v.License = &LicenseView{
			OriginalName: a.License.OriginalName,
			MimeType:     a.License.MimeType,
			Size:         a.License.Size,
			URL:          a.License.URL,
		}
	}
	return v
}

func ProjectAll(accounts []Account) []View {
	views := make([]View, 0, len(accounts))
	for i := range accounts {
		views = append(views, Project(&accounts[i]))
	}
	return views
}
