package response

import "errors"

// Response is the machine-readable error envelope printed by the admin CLI
// when it runs with -json.
type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST      ErrCode = "REQUEST_FAILED"
	BAD_REQUEST         ErrCode = "BAD_REQUEST"
	NOT_FOUND           ErrCode = "NOT_FOUND"
	LOCKED              ErrCode = "LOCKED"
	CONFLICT            ErrCode = "CONFLICT"
	VALIDATION_FAILED   ErrCode = "VALIDATION_FAILED"
	SCHEDULING_CONFLICT ErrCode = "SCHEDULING_CONFLICT"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("resource not found")
	ErrLocked     = errors.New("resource is locked")
	ErrConflict   = errors.New("conflict")
)

func Error(code ErrCode, msg string, fields ...string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    string(code),
			Message: msg,
			Fields:  fields,
		},
	}
}
