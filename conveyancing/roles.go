package conveyancing

import (
	"strings"

	"conveyancing-server/models"
)

// Account-level roles, resolved once at signup and carried in the access
// token.
const (
	RoleBuyer       = "buyer"
	RoleSeller      = "seller"
	RoleSolicitor   = "solicitor"
	RoleEstateAgent = "estate_agent"
)

// PropertyRole is a role disambiguated against one property's party
// assignments: a solicitor account becomes the buyer's or seller's solicitor
// depending on which id field of the property matches.
type PropertyRole string

const (
	PropertyRoleBuyer           PropertyRole = "buyer"
	PropertyRoleSeller          PropertyRole = "seller"
	PropertyRoleBuyerSolicitor  PropertyRole = "buyer_solicitor"
	PropertyRoleSellerSolicitor PropertyRole = "seller_solicitor"
	PropertyRoleEstateAgent     PropertyRole = "estate_agent"
	PropertyRoleNone            PropertyRole = ""
)

// ResolvePropertyRole maps an account role to its property-scoped role. This
// is the sole source of truth for role resolution; no other code compares
// party id fields directly.
func ResolvePropertyRole(userID uint, accountRole string, prop models.Property) PropertyRole {
	matches := func(id *uint) bool { return id != nil && *id == userID }

	switch strings.ToLower(accountRole) {
	case RoleBuyer:
		if matches(prop.BuyerID) {
			return PropertyRoleBuyer
		}
	case RoleSeller:
		if matches(prop.SellerID) {
			return PropertyRoleSeller
		}
	case RoleSolicitor:
		if matches(prop.BuyerSolicitorID) {
			return PropertyRoleBuyerSolicitor
		}
		if matches(prop.SellerSolicitorID) {
			return PropertyRoleSellerSolicitor
		}
	case RoleEstateAgent:
		if matches(prop.EstateAgentID) {
			return PropertyRoleEstateAgent
		}
	}
	return PropertyRoleNone
}

// Responsible-role vocabulary for stages. "client", "agent" and "surveyor"
// from the legacy display vocabulary are normalized here and never stored.
const (
	ResponsibleBuyer           = "buyer"
	ResponsibleSeller          = "seller"
	ResponsibleBuyerSolicitor  = "buyer_solicitor"
	ResponsibleSellerSolicitor = "seller_solicitor"
	ResponsibleEstateAgent     = "estate_agent"
	ResponsibleBothSolicitors  = "both_solicitors"
	ResponsibleBothParties     = "both_parties"
)

var responsibleAliases = map[string]string{
	"client":   ResponsibleBuyer,
	"agent":    ResponsibleEstateAgent,
	"surveyor": ResponsibleBuyer, // survey stages are driven by the buyer
}

var responsibleLabels = map[string]string{
	ResponsibleBuyer:           "Buyer",
	ResponsibleSeller:          "Seller",
	ResponsibleBuyerSolicitor:  "Buyer's Solicitor",
	ResponsibleSellerSolicitor: "Seller's Solicitor",
	ResponsibleEstateAgent:     "Estate Agent",
	ResponsibleBothSolicitors:  "Both Solicitors",
	ResponsibleBothParties:     "Buyer & Seller",
}

// NormalizeResponsibleRole folds legacy aliases and casing into the closed
// vocabulary. Unknown values are rejected by the caller via ValidResponsibleRole.
func NormalizeResponsibleRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	r = strings.ReplaceAll(r, " ", "_")
	if canonical, ok := responsibleAliases[r]; ok {
		return canonical
	}
	return r
}

func ValidResponsibleRole(role string) bool {
	_, ok := responsibleLabels[role]
	return ok
}

// ResponsibleRoleLabel is the single label-rendering function for the
// responsible-role vocabulary.
func ResponsibleRoleLabel(role string) string {
	if label, ok := responsibleLabels[NormalizeResponsibleRole(role)]; ok {
		return label
	}
	return role
}
