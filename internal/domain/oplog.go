package domain

import (
	"encoding/json"
	"time"
)

// Operation names recorded in the operate log.
const (
	OpAdd    = "add"
	OpEdit   = "edit"
	OpDelete = "delete"
	OpMove   = "move"
	OpImport = "import"
	OpPull   = "pull"
)

type logRecord struct {
	Op string `json:"op"`
	ID string `json:"id,omitempty"`
	K  int    `json:"k,omitempty"`
	At string `json:"at"`
}

// AppendLog returns a copy of doc with one audit record appended.
func AppendLog(doc Document, op, id string, k int, at time.Time) Document {
	out := doc.Clone()
	rec, err := json.Marshal(logRecord{Op: op, ID: id, K: k, At: at.UTC().Format(time.RFC3339)})
	if err != nil {
		return out
	}
	out.OperateLog = append(out.OperateLog, rec)
	return out
}
