package conveyancing

import (
	"conveyancing-server/models"
)

// PresetStage is one entry of the fixed conveyancing sequence seeded when a
// property is created.
type PresetStage struct {
	Stage           string
	ResponsibleRole string
	Description     string
}

var PresetStages = []PresetStage{
	{"Offer Accepted", ResponsibleEstateAgent, "Initial acceptance of offer by the estate agent"},
	{"Buyer ID Verification", ResponsibleBuyer, "Buyer provides proof of ID and address"},
	{"Seller ID Verification", ResponsibleSeller, "Seller provides proof of ID and address"},
	{"Draft Contract Issued", ResponsibleSellerSolicitor, "Seller's solicitor prepares and issues draft contract"},
	{"Searches Ordered", ResponsibleBuyerSolicitor, "Buyer's solicitor orders property searches"},
	{"Searches Received & Reviewed", ResponsibleBuyerSolicitor, "Buyer's solicitor reviews search results"},
	{"Survey Booked", ResponsibleBuyer, "Buyer arranges property survey"},
	{"Survey Completed", ResponsibleBuyer, "Surveyor completes property survey"},
	{"Mortgage Offer Received", ResponsibleBuyer, "Buyer receives mortgage offer from lender"},
	{"Proof of Funds Verified", ResponsibleBuyer, "Buyer provides proof of funds"},
	{"Enquiries Raised by Buyer's Solicitor", ResponsibleBuyerSolicitor, "Buyer's solicitor raises enquiries"},
	{"Enquiries Answered by Seller's Solicitor", ResponsibleSellerSolicitor, "Seller's solicitor answers enquiries"},
	{"Final Contract Approved", ResponsibleBothSolicitors, "Both solicitors approve final contract"},
	{"Contracts Signed by Buyer & Seller", ResponsibleBothParties, "Buyer and seller sign contracts"},
	{"Completion Date Agreed", ResponsibleBothSolicitors, "Both solicitors agree on completion date"},
	{"Deposit Paid by Buyer", ResponsibleBuyer, "Buyer pays deposit to solicitor"},
	{"Contracts Exchanged", ResponsibleBothSolicitors, "Solicitors exchange contracts"},
	{"Final Checks & Funds Requested", ResponsibleBuyerSolicitor, "Buyer's solicitor requests final funds"},
	{"Completion Day", ResponsibleBuyerSolicitor, "Property ownership transfers to buyer"},
	{"Keys Released & Registration", ResponsibleEstateAgent, "Keys released and property registered"},
}

// SeedStages builds the preset stage rows for a newly created property, all
// pending, ordered as listed.
func SeedStages(propertyID uint) []models.PropertyStage {
	stages := make([]models.PropertyStage, 0, len(PresetStages))
	for i, preset := range PresetStages {
		stages = append(stages, models.PropertyStage{
			PropertyID:      propertyID,
			Stage:           preset.Stage,
			Description:     preset.Description,
			Status:          models.StagePending,
			StageOrder:      i,
			ResponsibleRole: preset.ResponsibleRole,
			IsDraft:         false,
		})
	}
	return stages
}
