package conveyancing

import (
	"testing"

	"conveyancing-server/models"
)

func TestCanMessagePolicy(t *testing.T) {
	allowed := []struct{ sender, recipient PropertyRole }{
		{PropertyRoleBuyer, PropertyRoleBuyerSolicitor},
		{PropertyRoleBuyer, PropertyRoleEstateAgent},
		{PropertyRoleBuyer, PropertyRoleSeller},
		{PropertyRoleSeller, PropertyRoleSellerSolicitor},
		{PropertyRoleSeller, PropertyRoleEstateAgent},
		{PropertyRoleSeller, PropertyRoleBuyer},
		{PropertyRoleBuyerSolicitor, PropertyRoleBuyer},
		{PropertyRoleBuyerSolicitor, PropertyRoleSellerSolicitor},
		{PropertyRoleBuyerSolicitor, PropertyRoleEstateAgent},
		{PropertyRoleSellerSolicitor, PropertyRoleSeller},
		{PropertyRoleSellerSolicitor, PropertyRoleBuyerSolicitor},
		{PropertyRoleSellerSolicitor, PropertyRoleEstateAgent},
		{PropertyRoleEstateAgent, PropertyRoleBuyer},
		{PropertyRoleEstateAgent, PropertyRoleSeller},
		{PropertyRoleEstateAgent, PropertyRoleBuyerSolicitor},
		{PropertyRoleEstateAgent, PropertyRoleSellerSolicitor},
	}
	for _, pair := range allowed {
		if !CanMessage(pair.sender, pair.recipient) {
			t.Errorf("%s -> %s should be allowed", pair.sender, pair.recipient)
		}
	}

	denied := []struct{ sender, recipient PropertyRole }{
		{PropertyRoleBuyer, PropertyRoleSellerSolicitor},
		{PropertyRoleSeller, PropertyRoleBuyerSolicitor},
		{PropertyRoleBuyerSolicitor, PropertyRoleSeller},
		{PropertyRoleSellerSolicitor, PropertyRoleBuyer},
		{PropertyRoleBuyer, PropertyRoleBuyer},
		{PropertyRoleBuyerSolicitor, PropertyRoleBuyerSolicitor},
		{PropertyRoleNone, PropertyRoleBuyer},
		{PropertyRoleBuyer, PropertyRoleNone},
	}
	for _, pair := range denied {
		if CanMessage(pair.sender, pair.recipient) {
			t.Errorf("%s -> %s should be denied", pair.sender, pair.recipient)
		}
	}
}

func TestResolvePropertyRole(t *testing.T) {
	prop := testProperty()

	cases := []struct {
		userID      uint
		accountRole string
		want        PropertyRole
	}{
		{1, RoleBuyer, PropertyRoleBuyer},
		{2, RoleSeller, PropertyRoleSeller},
		{10, RoleSolicitor, PropertyRoleBuyerSolicitor},
		{11, RoleSolicitor, PropertyRoleSellerSolicitor},
		{20, RoleEstateAgent, PropertyRoleEstateAgent},
		// Party id match without the matching account role resolves to nothing.
		{1, RoleSeller, PropertyRoleNone},
		{10, RoleEstateAgent, PropertyRoleNone},
		// Unassigned users hold no role.
		{999, RoleBuyer, PropertyRoleNone},
		{999, RoleSolicitor, PropertyRoleNone},
	}
	for _, tc := range cases {
		if got := ResolvePropertyRole(tc.userID, tc.accountRole, prop); got != tc.want {
			t.Errorf("ResolvePropertyRole(%d, %q) = %q, want %q", tc.userID, tc.accountRole, got, tc.want)
		}
	}
}

func TestResolvePropertyRolePartialAssignments(t *testing.T) {
	prop := models.Property{BuyerID: uintp(1)}
	prop.ID = 101

	if got := ResolvePropertyRole(1, RoleBuyer, prop); got != PropertyRoleBuyer {
		t.Errorf("buyer on sparse property = %q", got)
	}
	if got := ResolvePropertyRole(10, RoleSolicitor, prop); got != PropertyRoleNone {
		t.Errorf("solicitor on sparse property = %q, want none", got)
	}
}

func TestAllowedRecipients(t *testing.T) {
	prop := testProperty()
	users := make([]models.User, 0, 5)
	for _, entry := range []struct {
		id   uint
		role string
	}{
		{1, RoleBuyer}, {2, RoleSeller}, {10, RoleSolicitor}, {11, RoleSolicitor}, {20, RoleEstateAgent},
	} {
		user := models.User{Role: entry.role}
		user.ID = entry.id
		users = append(users, user)
	}

	recipientIDs := func(actorID uint, actorRole string) []uint {
		ids := []uint{}
		for _, u := range AllowedRecipients(actorID, actorRole, prop, users) {
			ids = append(ids, u.ID)
		}
		return ids
	}

	// Buyer: own solicitor, agent and the seller; never the other side's solicitor.
	got := recipientIDs(1, RoleBuyer)
	want := map[uint]bool{2: true, 10: true, 20: true}
	if len(got) != len(want) {
		t.Fatalf("buyer recipients = %v", got)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("buyer may message %d unexpectedly", id)
		}
	}

	// Agent reaches everyone but themselves.
	if got := recipientIDs(20, RoleEstateAgent); len(got) != 4 {
		t.Errorf("agent recipients = %v, want all four parties", got)
	}

	// Non-party gets nothing.
	if got := recipientIDs(999, RoleBuyer); len(got) != 0 {
		t.Errorf("non-party recipients = %v, want none", got)
	}
}
