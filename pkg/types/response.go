package types

// SuccessEnvelope is the body shape for every 2xx response: the payload
// nested under "data" so clients never branch on top-level shape.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-visible error body. Details is populated only
// for codes whose metadata allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the body shape for every non-2xx response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
