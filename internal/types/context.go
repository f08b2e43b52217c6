package types

import "context"

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const HeaderRequestID = "X-Request-ID"

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxJobName   ContextKey = "ctx_job_name"
	CtxRunID     ContextKey = "ctx_run_id"
)

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetJobName(ctx context.Context) string {
	if name, ok := ctx.Value(CtxJobName).(string); ok {
		return name
	}
	return ""
}

func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(CtxRunID).(string); ok {
		return runID
	}
	return ""
}

// WithJobRun tags ctx with the scheduled job and the id of this particular run
func WithJobRun(ctx context.Context, jobName, runID string) context.Context {
	ctx = context.WithValue(ctx, CtxJobName, jobName)
	return context.WithValue(ctx, CtxRunID, runID)
}
