package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	Password    string `json:"-"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role" gorm:"type:varchar(20);index"` // buyer, seller, solicitor, estate_agent

	// Optional fields for solicitors and estate agents
	CompanyName        string `json:"companyName"`
	CompanyAddress     string `json:"companyAddress"`
	RegistrationNumber string `json:"registrationNumber"` // SRA number for solicitors, company registration for agents

	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
}

// Custom JSON marshaling to expose push tokens as an array
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		PushTokens []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.PushTokens != nil {
		var tokens []string
		if err := json.Unmarshal(u.PushTokens, &tokens); err == nil {
			aux.PushTokens = tokens
		}
	}

	return json.Marshal(aux)
}
