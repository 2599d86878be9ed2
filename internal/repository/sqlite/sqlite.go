package sqlite

import (
	"encoding/json"
	"time"

	"github.com/evtimahovich/talentflow/internal/db"
	"github.com/evtimahovich/talentflow/pkg/repository"
)

// Repo implements the repository interfaces using the internal DB wrapper.
type Repo struct {
	conn *db.DB
}

// Ensure Repo implements the public interfaces.
var _ repository.UserRepo = (*Repo)(nil)
var _ repository.PipelineStore = (*Repo)(nil)
var _ repository.DatasetRepo = (*Repo)(nil)

func New(conn *db.DB) *Repo {
	return &Repo{conn: conn}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// marshalStrings stores a string slice as a JSON text column; nil round-trips
// as an empty list.
func marshalStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalStrings(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
