package matchdex

import (
	"fmt"

	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
	domclient "github.com/kailas-cloud/matchdex/internal/domain/client"
	dommatch "github.com/kailas-cloud/matchdex/internal/domain/match"
	"github.com/kailas-cloud/matchdex/internal/domain/resource"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
)

// Candidate kinds.
const (
	KindListing = string(resource.KindListing)
	KindContent = string(resource.KindContent)
	KindEvent   = string(resource.KindEvent)
)

// Client is a client profile. Preference values may be numbers, strings
// or string lists; numeric strings are accepted where a number is expected.
type Client struct {
	ID          string
	Preferences map[string]any
	UserTags    []string
	AITags      []string
	Notes       string
	Embedding   []float32
}

// Candidate is a resource considered for a client's slate.
type Candidate struct {
	ID         string
	Kind       string // listing (default), content or event
	EventType  string // listings default to "new_listing"
	Attributes map[string]any
	Remarks    string
	Embedding  []float32
}

// Match is the outcome of scoring one client against one candidate.
type Match struct {
	CandidateID string
	Score       int
	Reasons     []string
}

// Slate is a client's ranked, capped list of recommendations.
type Slate struct {
	ClientID        string
	Cap             int
	TotalConsidered int
	Entries         []Match
}

func toDomainClient(c Client, dim int) (domclient.Profile, error) {
	prefs, err := attribute.FromMap(c.Preferences)
	if err != nil {
		return domclient.Profile{}, fmt.Errorf("client %s preferences: %w", c.ID, err)
	}
	p, err := domclient.New(c.ID, prefs, c.UserTags, c.AITags, c.Notes, c.Embedding, dim)
	if err != nil {
		return domclient.Profile{}, fmt.Errorf("client %q: %w", c.ID, err)
	}
	return p, nil
}

func toDomainClients(cs []Client, dim int) ([]domclient.Profile, error) {
	out := make([]domclient.Profile, len(cs))
	for i, c := range cs {
		p, err := toDomainClient(c, dim)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func toDomainCandidate(c Candidate) (resource.Candidate, error) {
	attrs, err := attribute.FromMap(c.Attributes)
	if err != nil {
		return resource.Candidate{}, fmt.Errorf("candidate %s attributes: %w", c.ID, err)
	}
	r, err := resource.New(c.ID, resource.Kind(c.Kind), c.EventType, attrs, c.Remarks, c.Embedding)
	if err != nil {
		return resource.Candidate{}, fmt.Errorf("candidate %q: %w", c.ID, err)
	}
	return r, nil
}

func toDomainCandidates(cs []Candidate) ([]resource.Candidate, error) {
	out := make([]resource.Candidate, len(cs))
	for i, c := range cs {
		r, err := toDomainCandidate(c)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func fromDomainMatch(r dommatch.Result) Match {
	return Match{CandidateID: r.CandidateID(), Score: r.Score(), Reasons: r.Reasons()}
}

func fromDomainSlate(s domslate.Slate) Slate {
	entries := s.Entries()
	out := Slate{
		ClientID:        s.ClientID(),
		Cap:             s.Cap(),
		TotalConsidered: s.TotalConsidered(),
		Entries:         make([]Match, len(entries)),
	}
	for i, e := range entries {
		out.Entries[i] = fromDomainMatch(e)
	}
	return out
}

func toDomainSlate(s Slate) (domslate.Slate, error) {
	entries := make([]dommatch.Result, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = dommatch.New(e.CandidateID, e.Score, e.Reasons)
	}
	sl, err := domslate.Reconstruct(s.ClientID, s.ClientID, entries, s.Cap, s.TotalConsidered)
	if err != nil {
		return domslate.Slate{}, fmt.Errorf("slate %s: %w", s.ClientID, err)
	}
	return sl, nil
}
