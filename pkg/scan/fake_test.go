package scan

import (
	"context"
	"sync"

	"github.com/mattfenwick/scan-utils/pkg/command"
	"github.com/mattfenwick/scan-utils/pkg/connector"
	"github.com/pkg/errors"
)

type submission struct {
	Name     string
	Commands []*command.Command
}

// fakeConnector reports a scan done after doneAfter polls
type fakeConnector struct {
	mu          sync.Mutex
	submissions []*submission
	polls       map[connector.ScanID]int
	doneAfter   int
	submitErr   error
	infoErr     error
}

func newFakeConnector(doneAfter int) *fakeConnector {
	return &fakeConnector{polls: map[connector.ScanID]int{}, doneAfter: doneAfter}
}

func (f *fakeConnector) SubmitScan(ctx context.Context, name string, commands []*command.Command) (connector.ScanID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return connector.NoScanID, f.submitErr
	}
	f.submissions = append(f.submissions, &submission{Name: name, Commands: commands})
	return connector.ScanID(len(f.submissions) + 100), nil
}

func (f *fakeConnector) GetScanInfo(ctx context.Context, id connector.ScanID) (*connector.ScanInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	f.polls[id]++
	state := connector.ScanStateRunning
	if f.polls[id] >= f.doneAfter {
		state = connector.ScanStateFinished
	}
	return &connector.ScanInfo{ID: id, Name: "fake", State: state, PerformedWorkUnits: int64(f.polls[id]), TotalWorkUnits: int64(f.doneAfter)}, nil
}

func (f *fakeConnector) GetInfo(ctx context.Context) (string, error) {
	if f.infoErr != nil {
		return "", f.infoErr
	}
	return "fake scan server", nil
}

func (f *fakeConnector) pollCount(id connector.ScanID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls[id]
}

var errUnreachable = errors.New("unreachable")
