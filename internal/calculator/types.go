package calculator

import "calc-editor/internal/editor"

// ActionRequest is the JSON body for POST /calculator/sessions/{id}/actions.
type ActionRequest struct {
	Action string `json:"action"`          // "append", "delete", "clear", "evaluate"
	Token  string `json:"token,omitempty"` // keypad token, append only
}

// KeysRequest is the JSON body for POST /calculator/sessions/{id}/keys.
type KeysRequest struct {
	Keys []string `json:"keys"` // key names, e.g. "7", "+", "Enter", "Backspace", "Escape"
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// SnapshotResponse is the JSON response for every editor endpoint.
type SnapshotResponse struct {
	SessionID       string     `json:"session_id,omitempty"`
	Buffer          string     `json:"buffer"`
	Display         string     `json:"display"`
	Result          ResultView `json:"result"`
	OperatorLock    bool       `json:"operator_lock"`
	PostResultReset bool       `json:"post_result_reset"`
}

// ResultView renders an editor result for clients.
type ResultView struct {
	Kind  string   `json:"kind"`
	Value *float64 `json:"value,omitempty"`
	Text  string   `json:"text"`
}

func newSnapshotResponse(id string, s editor.Snapshot) SnapshotResponse {
	kind := s.Result.Kind
	if kind == "" {
		kind = editor.ResultEmpty
	}
	view := ResultView{Kind: string(kind), Text: s.Result.Text()}
	if kind == editor.ResultNumeric {
		v := s.Result.Value
		view.Value = &v
	}
	return SnapshotResponse{
		SessionID:       id,
		Buffer:          s.Buffer,
		Display:         s.Display(),
		Result:          view,
		OperatorLock:    s.OperatorLock,
		PostResultReset: s.PostResultReset,
	}
}
