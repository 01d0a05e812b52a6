package dto

type SubmitComplaintRequest struct {
	Text string `json:"text" validate:"required,min=10,max=2000"`
}

type ListComplaintsRequest struct {
	MunicipalityID string `json:"municipalityId" validate:"omitempty,slug"`
	Status         string `json:"status" validate:"omitempty,oneof=open in_review closed"`
}

type UpdateComplaintRequest struct {
	ComplaintID    string `json:"complaintId" validate:"required,uuid"`
	Status         string `json:"status" validate:"required,oneof=open in_review closed"`
	MunicipalityID string `json:"municipalityId" validate:"omitempty,slug"`
}

type ReportSummaryRequest struct {
	MunicipalityID string `json:"municipalityId" validate:"omitempty,slug"`
	Top            int    `json:"top" validate:"omitempty,min=1,max=50"`
}

type AuditListRequest struct {
	Limit  int `json:"limit" validate:"omitempty,min=1,max=200"`
	Offset int `json:"offset" validate:"min=0"`
}
