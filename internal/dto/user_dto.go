package dto

type CreateDriverRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	PreferredLanguage string `json:"preferred_language"`
	Country           string `json:"country"`
}

type UpdateProfileRequest struct {
	Name              *string `json:"name"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	PreferredLanguage *string `json:"preferred_language"`
	Country           *string `json:"country"`
	Avatar            *string `json:"avatar"`
	Password          *string `json:"password"`
}

type CreateDriverResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Driver  UserResponse `json:"driver"`
	// EmailSent is false when the invitation could not be delivered; the
	// account exists either way and SetupLink can be shared by hand.
	EmailSent  bool   `json:"email_sent"`
	EmailError string `json:"email_error,omitempty"`
	SetupLink  string `json:"setup_link,omitempty"`
}

type UserEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    UserResponse `json:"user"`
}

type DriverEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Driver  UserResponse `json:"driver"`
}

type DriversEnvelope struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Drivers []UserResponse `json:"drivers"`
}
