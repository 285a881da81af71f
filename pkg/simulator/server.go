package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mattfenwick/collections/pkg/slice"
	"github.com/mattfenwick/scan-utils/pkg/command"
	"github.com/mattfenwick/scan-utils/pkg/connector"
	"github.com/mattfenwick/scan-utils/pkg/telemetry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"k8s.io/apimachinery/pkg/util/rand"
)

const queueSize = 100

var ErrScanNotFound = errors.New("scan not found")

var errAborted = errors.New("aborted")

type scanRun struct {
	info     connector.ScanInfo
	commands []*command.Command
	samples  []*connector.Sample
}

// Server simulates a scan server: scans are queued and executed one at a
// time against a set of in-memory devices
type Server struct {
	Info      string
	StepDelay time.Duration

	mu      sync.Mutex
	nextID  connector.ScanID
	scans   map[connector.ScanID]*scanRun
	devices map[string]float64
	queue   chan *scanRun
}

func NewServer(name string, stepDelay time.Duration) *Server {
	return &Server{
		Info:      fmt.Sprintf("%s [session %s]", name, rand.String(8)),
		StepDelay: stepDelay,
		scans:     map[connector.ScanID]*scanRun{},
		devices:   map[string]float64{},
		queue:     make(chan *scanRun, queueSize),
	}
}

// Start runs queued scans until ctx is cancelled
func (s *Server) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				logrus.Infof("stopping scan executor")
				return
			case run := <-s.queue:
				s.run(ctx, run)
			}
		}
	}()
}

func (s *Server) GetInfo() string {
	return s.Info
}

func (s *Server) SubmitScan(name string, commands []*command.Command) (connector.ScanID, error) {
	if err := command.Validate(commands); err != nil {
		return connector.NoScanID, errors.WithMessagef(err, "invalid commands for scan '%s'", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	run := &scanRun{
		info: connector.ScanInfo{
			ID:             s.nextID,
			Name:           name,
			State:          connector.ScanStateIdle,
			Created:        time.Now(),
			TotalWorkUnits: command.WorkUnits(commands),
		},
		commands: commands,
	}
	select {
	case s.queue <- run:
	default:
		return connector.NoScanID, errors.Errorf("scan queue is full (%d scans)", queueSize)
	}
	s.scans[run.info.ID] = run
	s.nextID++
	logrus.Infof("queued scan '%s' as %d with %d work units", name, run.info.ID, run.info.TotalWorkUnits)
	return run.info.ID, nil
}

func (s *Server) FetchScanInfo(id connector.ScanID) (*connector.ScanInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.scans[id]
	if !ok {
		return nil, errors.Wrapf(ErrScanNotFound, "id %d", id)
	}
	info := run.info
	return &info, nil
}

func (s *Server) FetchScanData(id connector.ScanID) ([]*connector.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.scans[id]
	if !ok {
		return nil, errors.Wrapf(ErrScanNotFound, "id %d", id)
	}
	samples := make([]*connector.Sample, len(run.samples))
	copy(samples, run.samples)
	return samples, nil
}

func (s *Server) ListScans() []*connector.ScanInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var infos []*connector.ScanInfo
	for _, id := range slice.Sort(maps.Keys(s.scans)) {
		info := s.scans[id].info
		infos = append(infos, &info)
	}
	return infos
}

// AbortScan stops a queued or running scan; a finished scan stays as it is
func (s *Server) AbortScan(id connector.ScanID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.scans[id]
	if !ok {
		return errors.Wrapf(ErrScanNotFound, "id %d", id)
	}
	if !run.info.IsDone() {
		logrus.Infof("aborting scan %d", id)
		run.info.State = connector.ScanStateAborted
	}
	return nil
}

func (s *Server) run(ctx context.Context, run *scanRun) {
	s.mu.Lock()
	if run.info.State != connector.ScanStateIdle {
		s.mu.Unlock()
		return
	}
	run.info.State = connector.ScanStateRunning
	s.mu.Unlock()

	logrus.Infof("running scan %d '%s'", run.info.ID, run.info.Name)
	err := s.executeScan(ctx, run)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case errors.Is(err, errAborted):
		run.info.State = connector.ScanStateAborted
	case err != nil:
		run.info.State = connector.ScanStateFailed
		run.info.Error = err.Error()
	default:
		run.info.State = connector.ScanStateFinished
	}
	telemetry.RecordEvent("scan", string(run.info.State), err)
	logrus.Infof("scan %d '%s' ended: %s", run.info.ID, run.info.Name, run.info.State)
}

// executeScan turns a panic during execution into an error so that the scan
// is marked failed and the executor keeps serving the queue
func (s *Server) executeScan(ctx context.Context, run *scanRun) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("scan %d panicked: %+v", run.info.ID, r)
			err = errors.Errorf("scan execution panicked: %v", r)
		}
	}()
	return s.execute(ctx, run, run.commands)
}

func (s *Server) execute(ctx context.Context, run *scanRun, commands []*command.Command) error {
	for _, c := range commands {
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), "server shutting down")
		}
		if s.isAborted(run) {
			return errAborted
		}
		switch c.Type {
		case command.LogCommandType:
			s.log(run, c)
			select {
			case <-ctx.Done():
			case <-time.After(s.StepDelay):
			}
		case command.LoopCommandType:
			for i, count := int64(0), c.Loop.Count(); i < count; i++ {
				s.setDevice(run, c, c.Loop.Value(i))
				if err := s.execute(ctx, run, c.Loop.Body); err != nil {
					return err
				}
			}
		default:
			return errors.Errorf("unable to execute command of type '%s'", c.Type)
		}
	}
	return nil
}

func (s *Server) isAborted(run *scanRun) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return run.info.State == connector.ScanStateAborted
}

func (s *Server) setDevice(run *scanRun, c *command.Command, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[c.Loop.Device] = value
	run.info.CurrentCommand = fmt.Sprintf("Set '%s' = %s", c.Loop.Device, command.FormatNumber(value))
	logrus.Tracef("scan %d: %s", run.info.ID, run.info.CurrentCommand)
}

func (s *Server) log(run *scanRun, c *command.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := map[string]float64{}
	for _, device := range c.Log.Devices {
		values[device] = s.devices[device]
	}
	run.samples = append(run.samples, &connector.Sample{Index: int64(len(run.samples)), Values: values})
	run.info.PerformedWorkUnits++
	run.info.CurrentCommand = c.String()
	logrus.Tracef("scan %d: %s -> %+v", run.info.ID, c.String(), values)
}
