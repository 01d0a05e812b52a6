package dto

type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=255"`
	CPF       *string `json:"cpf" validate:"omitempty,cpf"`
	BirthDate *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	ZipCode   *string `json:"zipCode" validate:"omitempty,cep"`
}

type JoinMunicipalityRequest struct {
	MunicipalityID string `json:"municipalityId" validate:"required,slug"`
}

// AssignRoleRequest accepts every role name so that granting super_admin is
// refused by the service as FORBIDDEN rather than as a schema error.
type AssignRoleRequest struct {
	UserID         string `json:"userId" validate:"required,max=128"`
	Role           string `json:"role" validate:"required,oneof=citizen council_member city_admin super_admin"`
	MunicipalityID string `json:"municipalityId" validate:"omitempty,slug"`
}

type ListUsersRequest struct {
	MunicipalityID string `json:"municipalityId" validate:"omitempty,slug"`
	Role           string `json:"role" validate:"omitempty,oneof=citizen council_member city_admin super_admin"`
}
