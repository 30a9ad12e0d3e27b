package models

// Error Response Models

// ErrorResponse represents basic error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"company not found"`
	Details string `json:"details,omitempty" example:"unknown company id 7"`
}

// ValidationErrorResponse carries the per-field validator messages
type ValidationErrorResponse struct {
	Error  string `json:"error" example:"Validation failed"`
	Errors any    `json:"errors"`
}

type UnauthorizedErrorResponse struct {
	Error string `json:"error" example:"Invalid or expired token"`
}

type ForbiddenErrorResponse struct {
	Error string `json:"error" example:"admin role required"`
}

// Success Response Models

type UploadSuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"schedules and shifts saved"`
}

// EventsResponse represents the attendance report of one company
type EventsResponse struct {
	Company string      `json:"company" example:"Jarvis"`
	Total   int         `json:"total" example:"2"`
	Events  []RecordRow `json:"events"`
}

type EmployeesResponse struct {
	Company   string     `json:"company" example:"Jarvis"`
	Total     int        `json:"total" example:"2"`
	Employees []Employee `json:"employees"`
}

// EventAck answers the camera. It is always sent with status 200.
type EventAck struct {
	Status    string `json:"status" example:"processed"`
	RequestID string `json:"requestId" example:"0b6f2a5e-6c1f-4a47-9d0e-1f2d3c4b5a69"`
	Company   string `json:"company,omitempty" example:"Jarvis"`
	Result    string `json:"result,omitempty" example:"applied"`
	Message   string `json:"message,omitempty" example:"workday opened"`
}

type HealthResponse struct {
	Message string `json:"message" example:"HikVision integration API"`
	Status  string `json:"status" example:"running"`
	Docs    string `json:"docs" example:"/docs/index.html"`
}
