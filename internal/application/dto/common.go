package dto

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Actor identidad ya autenticada que el request layer entrega al motor.
type Actor struct {
	UserID   string
	Username string
	Roles    []string
}
