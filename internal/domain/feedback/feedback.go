// Package feedback records candidates a client rejected.
package feedback

import (
	"fmt"
	"slices"
	"strings"
)

// Dismissed is one rejected candidate's embedding (append-only record).
type Dismissed struct {
	clientID    string
	candidateID string
	slateID     string
	embedding   []float32
	createdAt   int64
}

// New validates and creates a Dismissed record. slateID is optional.
func New(clientID, candidateID, slateID string, embedding []float32, createdAt int64) (Dismissed, error) {
	if strings.TrimSpace(clientID) == "" {
		return Dismissed{}, fmt.Errorf("client id is required")
	}
	if strings.TrimSpace(candidateID) == "" {
		return Dismissed{}, fmt.Errorf("candidate id is required")
	}
	if len(embedding) == 0 {
		return Dismissed{}, fmt.Errorf("dismissed embedding is required")
	}
	return Dismissed{
		clientID:    clientID,
		candidateID: candidateID,
		slateID:     slateID,
		embedding:   slices.Clone(embedding),
		createdAt:   createdAt,
	}, nil
}

// ClientID returns the client that dismissed the candidate.
func (d Dismissed) ClientID() string { return d.clientID }

// CandidateID returns the dismissed resource.
func (d Dismissed) CandidateID() string { return d.candidateID }

// SlateID returns the originating slate, or "".
func (d Dismissed) SlateID() string { return d.slateID }

// Embedding returns the dismissed candidate's vector.
func (d Dismissed) Embedding() []float32 { return d.embedding }

// CreatedAt returns the dismissal time in unix millis.
func (d Dismissed) CreatedAt() int64 { return d.createdAt }
