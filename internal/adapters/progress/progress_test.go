package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
)

func TestLineProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewLineProgress(&buf)
	ctx := context.Background()
	unit := &domain.DeployedUnit{Node: "Aura", Address: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")}

	p.OnProgress(ctx, domain.ProgressEvent{Stage: domain.StageNodeReconciled, Current: 1, Total: 3, Message: "Token", Metadata: unit})
	p.OnProgress(ctx, domain.ProgressEvent{Stage: domain.StageNodeDeploying, Current: 2, Total: 3, Message: "Aura"})
	p.OnProgress(ctx, domain.ProgressEvent{Stage: domain.StageNodeDeployed, Current: 2, Total: 3, Message: "Aura", Metadata: unit})
	p.OnProgress(ctx, domain.ProgressEvent{Stage: domain.StageNodeFailed, Current: 3, Total: 3, Message: "Vault"})
	p.OnProgress(ctx, domain.ProgressEvent{Stage: domain.StageExecutionCompleted})
	p.Error("boom")

	assert.Equal(t, "[1/3] Token already deployed at 0x5FbDB2315678afecb367f032d93F642f64180aa3\n"+
		"[2/3] deploying Aura\n"+
		"[2/3] Aura deployed at 0x5FbDB2315678afecb367f032d93F642f64180aa3\n"+
		"[3/3] Vault failed\n"+
		"Error: boom\n", buf.String())
}

func TestSpinnerProgressReporter_PrintsNodeLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewSpinnerProgressReporter(&buf)
	ctx := context.Background()
	unit := &domain.DeployedUnit{Node: "Aura", Address: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")}

	r.OnProgress(ctx, domain.ProgressEvent{Stage: domain.StageNodeDeploying, Current: 1, Total: 1, Message: "Aura"})
	r.OnProgress(ctx, domain.ProgressEvent{Stage: domain.StageNodeDeployed, Current: 1, Total: 1, Message: "Aura", Metadata: unit})
	r.OnProgress(ctx, domain.ProgressEvent{Stage: domain.StageExecutionCompleted})

	assert.False(t, r.spinner.Active())
	assert.Contains(t, buf.String(), "[1/1] Aura")
	assert.Contains(t, buf.String(), "0x5FbDB2315678afecb367f032d93F642f64180aa3")
}
