package services

// ServiceError carries the HTTP status a controller should respond with.
// Details holds optional structured context (e.g. the missing product IDs on
// a failed catalog lookup) that belongs in the response body.
type ServiceError struct {
	StatusCode int
	Message    string
	Details    map[string]interface{}
}

func (e *ServiceError) Error() string {
	return e.Message
}

func newServiceError(status int, message string) *ServiceError {
	return &ServiceError{StatusCode: status, Message: message}
}
