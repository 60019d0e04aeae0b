// Package audit produces integrity records for burn operations: SHA3-256
// digests of the input and output document bytes plus the placements that
// were drawn. Persistence of records is the caller's concern.
package audit

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/fieldink/signkit/compositor"
	"github.com/fieldink/signkit/geom"
)

// Digest returns the hex SHA3-256 digest of the data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PlacementRecord captures one performed draw.
type PlacementRecord struct {
	FieldID string    `json:"fieldId"`
	Page    int       `json:"page"`
	Rect    geom.Rect `json:"rect"`
}

// Record ties a burn outcome to the exact input and output bytes. The
// digests cover the bytes handed to NewRecord; anything appended to the
// document afterwards (such as a signing notice quoting the record) is
// outside OutputDigest.
type Record struct {
	InputDigest  string            `json:"inputDigest"`
	OutputDigest string            `json:"outputDigest"`
	CreatedAt    time.Time         `json:"createdAt"`
	Placements   []PlacementRecord `json:"placements"`
	Skipped      []string          `json:"skipped,omitempty"`
}

// NewRecord builds a record from the raw input/output bytes and the burn
// result.
func NewRecord(input, output []byte, res *compositor.Result) Record {
	rec := Record{
		InputDigest:  Digest(input),
		OutputDigest: Digest(output),
		CreatedAt:    time.Now().UTC(),
	}
	if res != nil {
		for _, d := range res.Drawn {
			rec.Placements = append(rec.Placements, PlacementRecord{
				FieldID: d.FieldID,
				Page:    d.Page,
				Rect:    d.Rect,
			})
		}
		rec.Skipped = append(rec.Skipped, res.Skipped...)
	}
	return rec
}

// MarshalIndent renders the record as indented JSON.
func (r Record) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
