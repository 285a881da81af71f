package connector

import (
	"context"

	"github.com/mattfenwick/scan-utils/pkg/command"
)

// Connector is a session with a scan server
type Connector interface {
	SubmitScan(ctx context.Context, name string, commands []*command.Command) (ScanID, error)
	GetScanInfo(ctx context.Context, id ScanID) (*ScanInfo, error)
	GetInfo(ctx context.Context) (string, error)
}
