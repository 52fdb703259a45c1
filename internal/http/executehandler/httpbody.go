package executehandler

type ExecuteBody struct {
	Code string `json:"code" binding:"required" example:"print(1)"`
} // @name ExecuteRequest

type ExecuteResponse struct {
	Output string `json:"output"`
} // @name ExecuteResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
