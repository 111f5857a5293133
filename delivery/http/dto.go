package http

import "time"

// ScanItemRequest is one delivery item line of a scan payload
type ScanItemRequest struct {
	BLNumber      string `json:"blNumber" validate:"required"`
	ClientCode    string `json:"clientCode"`
	ClientName    string `json:"clientName"`
	ClientAddress string `json:"clientAddress"`
	NombreColis   int    `json:"nombreColis" validate:"gte=0"`
	NombreSachets int    `json:"nombreSachets" validate:"gte=0"`
}

// ScanBordereauRequest is the bordereau ingestion payload
type ScanBordereauRequest struct {
	BordereauNumber string            `json:"bordereauNumber" validate:"required"`
	DeliveryDate    *time.Time        `json:"deliveryDate"`
	DriverCode      string            `json:"driverCode"`
	ManagerCode     string            `json:"managerCode"`
	Items           []ScanItemRequest `json:"items" validate:"dive"`
}

// UpdateBordereauRequest is a partial bordereau update
type UpdateBordereauRequest struct {
	DeliveryDate *time.Time `json:"deliveryDate"`
	Status       *string    `json:"status"`
}

// ReassignBordereauRequest names the new driver and/or secteur
type ReassignBordereauRequest struct {
	DriverCode  *string `json:"driverCode"`
	ManagerCode *string `json:"managerCode"`
}

// UpdateDeliveryItemRequest is a partial delivery item update
type UpdateDeliveryItemRequest struct {
	NombreColis        *int    `json:"nombreColis" validate:"omitempty,gte=0"`
	NombreSachets      *int    `json:"nombreSachets" validate:"omitempty,gte=0"`
	Status             *string `json:"status"`
	DeliveryNotes      *string `json:"deliveryNotes"`
	RecipientSignature *string `json:"recipientSignature"`
}

// ProofRequest is the proof-of-delivery payload
type ProofRequest struct {
	DeliveryNotes      string `json:"deliveryNotes"`
	RecipientSignature string `json:"recipientSignature"`
}

// CreateTransferRequest starts a custody transfer
type CreateTransferRequest struct {
	FromDriverCode  string `json:"fromDriverCode"`
	ToDriverCode    string `json:"toDriverCode" validate:"required"`
	TransferBarcode string `json:"transferBarcode"`
	Reason          string `json:"reason"`
}

// UpdateTransferStatusRequest moves a transfer through its lifecycle
type UpdateTransferStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateAdminRequest is the explicit admin creation payload
type CreateAdminRequest struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Code      string `json:"code" validate:"required"`
}

// UpdateAdminRequest is a partial admin update
type UpdateAdminRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// CreateManagerRequest is the explicit manager creation payload
type CreateManagerRequest struct {
	Username          string  `json:"username" validate:"required"`
	Email             string  `json:"email" validate:"required,email"`
	Password          string  `json:"password" validate:"required,min=8"`
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	Code              string  `json:"code" validate:"required"`
	SecteurName       string  `json:"secteurName"`
	Phone             string  `json:"phone"`
	Address           string  `json:"address"`
	AssignedAdminCode *string `json:"assignedAdminCode"`
}

// UpdateManagerRequest is a partial manager update
type UpdateManagerRequest struct {
	Email             *string `json:"email" validate:"omitempty,email"`
	FirstName         *string `json:"firstName"`
	LastName          *string `json:"lastName"`
	SecteurName       *string `json:"secteurName"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	AssignedAdminCode *string `json:"assignedAdminCode"`
}

// CreateDriverRequest is the explicit driver creation payload
type CreateDriverRequest struct {
	Username            string  `json:"username" validate:"required"`
	Email               string  `json:"email" validate:"required,email"`
	Password            string  `json:"password" validate:"required,min=8"`
	FirstName           string  `json:"firstName"`
	LastName            string  `json:"lastName"`
	Code                string  `json:"code" validate:"required"`
	LicenseNumber       string  `json:"licenseNumber"`
	Phone               string  `json:"phone"`
	AssignedManagerCode *string `json:"assignedManagerCode"`
}

// UpdateDriverRequest is a partial driver update
type UpdateDriverRequest struct {
	Email               *string `json:"email" validate:"omitempty,email"`
	FirstName           *string `json:"firstName"`
	LastName            *string `json:"lastName"`
	LicenseNumber       *string `json:"licenseNumber"`
	Phone               *string `json:"phone"`
	AssignedManagerCode *string `json:"assignedManagerCode"`
}

// ResetPasswordRequest sets a new credential on the remote identity
type ResetPasswordRequest struct {
	Password  string `json:"password" validate:"required,min=8"`
	Temporary bool   `json:"temporary"`
}

// SetActiveRequest enables or disables an account
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CreateClientRequest is the explicit pharmacy client creation payload
type CreateClientRequest struct {
	ClientCode  string  `json:"clientCode" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Coordinates string  `json:"coordinates"`
	SecteurCode *string `json:"secteurCode"`
}

// UpdateClientRequest is a partial client update
type UpdateClientRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Coordinates *string `json:"coordinates"`
	SecteurCode *string `json:"secteurCode"`
}
