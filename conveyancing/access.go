package conveyancing

import (
	"conveyancing-server/models"
)

// allowedCounterparts is the recipient rule table, keyed by the sender's
// property-scoped role. No role may message a same-role counterpart, and a
// solicitor never reaches the other side's client directly.
var allowedCounterparts = map[PropertyRole][]PropertyRole{
	PropertyRoleBuyer:           {PropertyRoleBuyerSolicitor, PropertyRoleEstateAgent, PropertyRoleSeller},
	PropertyRoleSeller:          {PropertyRoleSellerSolicitor, PropertyRoleEstateAgent, PropertyRoleBuyer},
	PropertyRoleBuyerSolicitor:  {PropertyRoleBuyer, PropertyRoleSellerSolicitor, PropertyRoleEstateAgent},
	PropertyRoleSellerSolicitor: {PropertyRoleSeller, PropertyRoleBuyerSolicitor, PropertyRoleEstateAgent},
	PropertyRoleEstateAgent:     {PropertyRoleBuyer, PropertyRoleSeller, PropertyRoleBuyerSolicitor, PropertyRoleSellerSolicitor},
}

// CanMessage reports whether a sender with the given property-scoped role may
// address the recipient role at all. Buyer<->seller pairs pass this check but
// are additionally forced through the moderation flow by the send handlers.
func CanMessage(sender, recipient PropertyRole) bool {
	for _, allowed := range allowedCounterparts[sender] {
		if allowed == recipient {
			return true
		}
	}
	return false
}

// AllowedRecipients filters candidates down to the users the actor may
// message on this property. The actor's account role is resolved to a
// property-scoped role first; candidates that hold no role on the property
// are always excluded.
func AllowedRecipients(actorID uint, actorRole string, prop models.Property, candidates []models.User) []models.User {
	senderRole := ResolvePropertyRole(actorID, actorRole, prop)
	if senderRole == PropertyRoleNone {
		return []models.User{}
	}

	allowed := []models.User{}
	for _, candidate := range candidates {
		if candidate.ID == actorID {
			continue
		}
		recipientRole := ResolvePropertyRole(candidate.ID, candidate.Role, prop)
		if recipientRole == PropertyRoleNone {
			continue
		}
		if CanMessage(senderRole, recipientRole) {
			allowed = append(allowed, candidate)
		}
	}
	return allowed
}
