package response

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	// RequestID is set on failures so a pilot can quote it when reporting a problem.
	RequestID string `json:"request_id,omitempty"`
}

func Success(statusCode int, data interface{}) Response {
	return Response{Status: StatusSuccess, StatusCode: statusCode, Data: data}
}

// Error wraps a message that is safe to show to the caller.
func Error(statusCode int, msg string) Response {
	return Response{Status: StatusError, StatusCode: statusCode, Error: msg}
}

// WithRequestID returns a copy tagged with id. An empty id leaves the field out.
func (r Response) WithRequestID(id string) Response {
	r.RequestID = id
	return r
}
