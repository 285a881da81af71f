package connector

import (
	"fmt"
	"time"

	"github.com/mattfenwick/scan-utils/pkg/command"
)

type ScanID int64

// NoScanID stands in for "the most recently submitted scan"
const NoScanID ScanID = -1

type ScanState string

const (
	ScanStateIdle     ScanState = "Idle"
	ScanStateRunning  ScanState = "Running"
	ScanStateFinished ScanState = "Finished"
	ScanStateAborted  ScanState = "Aborted"
	ScanStateFailed   ScanState = "Failed"
)

func (s ScanState) IsDone() bool {
	switch s {
	case ScanStateFinished, ScanStateAborted, ScanStateFailed:
		return true
	default:
		return false
	}
}

type ScanInfo struct {
	ID                 ScanID    `json:"id"`
	Name               string    `json:"name"`
	State              ScanState `json:"state"`
	Created            time.Time `json:"created"`
	PerformedWorkUnits int64     `json:"performedWorkUnits"`
	TotalWorkUnits     int64     `json:"totalWorkUnits"`
	CurrentCommand     string    `json:"currentCommand,omitempty"`
	Error              string    `json:"error,omitempty"`
}

func (s *ScanInfo) IsDone() bool {
	return s.State.IsDone()
}

func (s *ScanInfo) PercentDone() int {
	if s.TotalWorkUnits <= 0 {
		if s.State == ScanStateFinished {
			return 100
		}
		return 0
	}
	return int(float64(s.PerformedWorkUnits) * 100 / float64(s.TotalWorkUnits))
}

func (s *ScanInfo) String() string {
	text := fmt.Sprintf("Scan '%s' [%d]: %s, %d%%", s.Name, s.ID, s.State, s.PercentDone())
	if s.CurrentCommand != "" {
		text += fmt.Sprintf(" (%s)", s.CurrentCommand)
	}
	if s.Error != "" {
		text += fmt.Sprintf(": %s", s.Error)
	}
	return text
}

type SubmitScanRequest struct {
	Name     string             `json:"name"`
	Commands []*command.Command `json:"commands"`
}

type SubmitScanResponse struct {
	ID ScanID `json:"id"`
}

// Sample holds the device values recorded by one execution of a log command
type Sample struct {
	Index  int64              `json:"index"`
	Values map[string]float64 `json:"values"`
}
