package memory

import (
	"encoding/json"
	"fmt"
)

// Buckets names the snapshot partitions persisted by the SQL stores, one
// row of the state table each.
var Buckets = []string{"exports", "audit"}

// EncodeBucket marshals the named bucket of the snapshot.
func (s Snapshot) EncodeBucket(bucket string) ([]byte, error) {
	switch bucket {
	case "exports":
		return json.Marshal(s.Exports)
	case "audit":
		return json.Marshal(s.Audit)
	default:
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
}

// DecodeBucket unmarshals payload into the named bucket. Unknown buckets
// are ignored so older binaries can open newer databases.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	var target any
	switch bucket {
	case "exports":
		target = &s.Exports
	case "audit":
		target = &s.Audit
	default:
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}
