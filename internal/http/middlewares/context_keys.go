package middlewares

type ctxKey string

const (
	CtxRequestID ctxKey = "request_id"
	CtxClientID  ctxKey = "client_id"
)
