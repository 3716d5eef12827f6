package combo

import (
	"encoding/json"
	"fmt"
)

// Status is the wire status of a best-combination computation.
type Status string

const (
	StatusReady      Status = "READY"
	StatusProcessing Status = "PROCESSING"
	StatusError      Status = "ERROR"
)

// Result is the closed set of server responses to getBestCombination.
// The unexported marker keeps the set sealed to Ready, Processing and Failed.
type Result interface {
	Status() Status
	isResult()
}

// Ready carries the computed combinations in server order.
type Ready struct {
	Data []Combination
}

// Processing means the server is still computing.
type Processing struct{}

// Failed means the server gave up on the computation.
type Failed struct{}

func (Ready) Status() Status      { return StatusReady }
func (Processing) Status() Status { return StatusProcessing }
func (Failed) Status() Status     { return StatusError }

func (Ready) isResult()      {}
func (Processing) isResult() {}
func (Failed) isResult()     {}

// wireResult is the JSON shape of BestCombinationResponse.
type wireResult struct {
	Status Status        `json:"status"`
	Data   []Combination `json:"data"`
}

// DecodeResult maps the wire form to a Result. Unknown statuses are errors.
func DecodeResult(raw json.RawMessage) (Result, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("decode result: empty response")
	}
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return ParseStatus(w.Status, w.Data)
}

// ParseStatus builds the Result variant for status. data is kept only for READY.
func ParseStatus(status Status, data []Combination) (Result, error) {
	switch status {
	case StatusReady:
		return Ready{Data: data}, nil
	case StatusProcessing:
		return Processing{}, nil
	case StatusError:
		return Failed{}, nil
	default:
		return nil, fmt.Errorf("unknown status %q", status)
	}
}
