package dto

type CreateProposalRequest struct {
	Title       string `json:"title" validate:"required,min=5,max=255"`
	Description string `json:"description" validate:"required,min=10,max=5000"`
}

// ProposalRequest addresses one proposal. MunicipalityID is only consulted
// for super admins, who are not bound to a municipality.
type ProposalRequest struct {
	ProposalID     string `json:"proposalId" validate:"required,uuid"`
	MunicipalityID string `json:"municipalityId" validate:"omitempty,slug"`
}

type RejectProposalRequest struct {
	ProposalID     string `json:"proposalId" validate:"required,uuid"`
	MunicipalityID string `json:"municipalityId" validate:"omitempty,slug"`
	Reason         string `json:"reason" validate:"max=1000"`
}

type ListApprovedRequest struct {
	MunicipalityID string `json:"municipalityId" validate:"required,slug"`
}

type AdminListProposalsRequest struct {
	MunicipalityID string `json:"municipalityId" validate:"omitempty,slug"`
	Status         string `json:"status" validate:"omitempty,oneof=pending approved rejected archived"`
}

type VoteRequest struct {
	ProposalID string `json:"proposalId" validate:"required,uuid"`
}
