package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattfenwick/scan-utils/pkg/command"
	"github.com/mattfenwick/scan-utils/pkg/connector"
	"github.com/mattfenwick/scan-utils/pkg/telemetry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"k8s.io/apimachinery/pkg/util/wait"
)

const DefaultPollInterval = 1 * time.Second

// Client submits scans and monitors them.  It remembers the most recently
// submitted scan as the current one.
type Client struct {
	Connector    connector.Connector
	CurrentID    connector.ScanID
	PollInterval time.Duration
	Out          io.Writer
}

func NewClient(conn connector.Connector) *Client {
	return &Client{
		Connector:    conn,
		CurrentID:    connector.NoScanID,
		PollInterval: DefaultPollInterval,
		Out:          os.Stdout,
	}
}

func (c *Client) Submit(ctx context.Context, name string, cmds *command.Sequence) (connector.ScanID, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "submit scan")
	defer span.End()
	span.SetAttributes(attribute.String("scan.name", name))

	id, err := c.Connector.SubmitScan(ctx, name, cmds.GetCommands())
	telemetry.RecordEvent("submit", name, err)
	if err != nil {
		return connector.NoScanID, errors.WithMessagef(err, "unable to submit scan '%s'", name)
	}
	logrus.Infof("submitted scan '%s' as %d", name, id)
	c.CurrentID = id
	return id, nil
}

// WaitUntilDone polls the scan, printing each status, until it is done.
// connector.NoScanID selects the current scan.  With a context that is
// never cancelled, this blocks for as long as the scan runs.
func (c *Client) WaitUntilDone(ctx context.Context, id connector.ScanID) (*connector.ScanInfo, error) {
	if id == connector.NoScanID {
		id = c.CurrentID
	}
	if c.PollInterval <= 0 {
		return nil, errors.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	ctx, span := telemetry.Tracer().Start(ctx, "wait until done")
	defer span.End()
	span.SetAttributes(attribute.Int64("scan.id", int64(id)))

	var info *connector.ScanInfo
	err := wait.PollImmediateUntil(c.PollInterval, func() (bool, error) {
		var err error
		info, err = c.Connector.GetScanInfo(ctx, id)
		if err != nil {
			return false, errors.WithMessagef(err, "unable to get info for scan %d", id)
		}
		fmt.Fprintln(c.Out, info)
		telemetry.RecordEventValue("performed work units", fmt.Sprintf("%d", id), float64(info.PerformedWorkUnits))
		return info.IsDone(), nil
	}, ctx.Done())
	if err != nil {
		if ctx.Err() != nil {
			return info, errors.Wrapf(ctx.Err(), "stopped waiting for scan %d", id)
		}
		return info, err
	}
	return info, nil
}

func (c *Client) String() string {
	info, err := c.Connector.GetInfo(context.Background())
	if err != nil {
		info = fmt.Sprintf("(unavailable: %s)", err.Error())
	}
	return fmt.Sprintf("Scan client, connected to %s", info)
}
