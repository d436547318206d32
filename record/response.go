package record

import "github.com/bytedance/sonic"

// Response is the store's envelope for every operation. Data holds either a
// single record or a list depending on the call; batch mutations report
// per-record outcomes in Results.
type Response struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    sonic.NoCopyRawMessage `json:"data,omitempty"`
	Results []Result               `json:"results,omitempty"`
}

// Result is the outcome of one record inside a batch operation.
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    sonic.NoCopyRawMessage `json:"data,omitempty"`
}

// FirstFailure returns the message of the first failed result, or "" when
// every result succeeded.
func FirstFailure(results []Result) (string, bool) {
	for _, r := range results {
		if !r.Success {
			return r.Message, true
		}
	}
	return "", false
}
