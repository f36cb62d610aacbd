package response

// Response is the uniform JSON body for non-entity API replies.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	statusOk    = "ok"
	statusError = "error"
)

func Ok(message string) Response {
	return Response{Status: statusOk, Message: message}
}

func Error(message string) Response {
	return Response{Status: statusError, Message: message}
}
