package domain

import "context"

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata any
}

// Execution progress stages
const (
	StageNodeReconciled     = "node_reconciled"
	StageNodeDeploying      = "node_deploying"
	StageNodeDeployed       = "node_deployed"
	StageNodeFailed         = "node_failed"
	StageExecutionCompleted = "execution_completed"
)

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
