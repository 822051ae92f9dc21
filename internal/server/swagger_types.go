package server

// Generic Swagger response envelope to match API shape.
type DataResponse struct {
	Data any `json:"data"`
}
