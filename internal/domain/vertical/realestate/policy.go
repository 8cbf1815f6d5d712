// Package realestate implements the real-estate scoring policy.
package realestate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain/attribute"
	"github.com/kailas-cloud/matchdex/internal/domain/client"
	"github.com/kailas-cloud/matchdex/internal/domain/vector"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical"
)

// Name is the registry key of this vertical.
const Name = "realestate"

// Preference keys read from the client profile.
const (
	PrefBudgetMax       = "budget_max"
	PrefMinBeds         = "min_beds"
	PrefMinBaths        = "min_baths"
	PrefMinSqft         = "min_sqft"
	PrefMaxHOA          = "max_hoa"
	PrefMinYearBuilt    = "min_year_built"
	PrefDealBreakers    = "deal_breakers"
	PrefMustHaves       = "must_haves"
	PrefLocations       = "locations"
	PrefPropertySubtype = "property_subtype"
)

// Listing attribute keys (RESO field names).
const (
	AttrListPrice       = "ListPrice"
	AttrBedrooms        = "BedroomsTotal"
	AttrBathrooms       = "BathroomsTotalInteger"
	AttrLivingArea      = "LivingArea"
	AttrAssociationFee  = "AssociationFee"
	AttrYearBuilt       = "YearBuilt"
	AttrCity            = "City"
	AttrSubdivision     = "SubdivisionName"
	AttrUnparsedAddress = "UnparsedAddress"
	AttrPostalCode      = "PostalCode"
	AttrPropertySubType = "PropertySubType"
)

var locationAttrs = []string{AttrCity, AttrSubdivision, AttrUnparsedAddress, AttrPostalCode}

type bound int

const (
	atMost bound = iota
	atLeast
)

type knockout struct {
	pref   string
	attr   string
	bound  bound
	reason string
}

var knockouts = []knockout{
	{PrefBudgetMax, AttrListPrice, atMost, "Deal-Breaker: Over Budget"},
	{PrefMinBeds, AttrBedrooms, atLeast, "Deal-Breaker: Not Enough Bedrooms"},
	{PrefMinBaths, AttrBathrooms, atLeast, "Deal-Breaker: Not Enough Bathrooms"},
	{PrefMinSqft, AttrLivingArea, atLeast, "Deal-Breaker: Too Small"},
	{PrefMaxHOA, AttrAssociationFee, atMost, "Deal-Breaker: HOA Too High"},
	{PrefMinYearBuilt, AttrYearBuilt, atLeast, "Deal-Breaker: Too Old"},
}

// Policy scores real-estate clients against listings and market events.
type Policy struct {
	w Weights
}

// New validates weights and creates a Policy.
func New(w Weights) (*Policy, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Policy{w: w}, nil
}

// Default returns a Policy with DefaultWeights.
func Default() *Policy {
	return &Policy{w: DefaultWeights()}
}

// Name returns the vertical name.
func (p *Policy) Name() string { return Name }

// Weights returns the active configuration.
func (p *Policy) Weights() Weights { return p.w }

// Role classifies the client: investor tag wins over seller, buyer is the default.
func (p *Policy) Role(c client.Profile) vertical.Role {
	for _, role := range []vertical.Role{RoleInvestor, RoleSeller} {
		if rule, ok := p.w.Roles[role]; ok && c.HasTag(rule.Tag) {
			return role
		}
	}
	return RoleBuyer
}

// Campaign returns notification metadata for an event type.
func (p *Policy) Campaign(eventType string) (vertical.Campaign, bool) {
	c, ok := campaigns[eventType]
	return c, ok
}

// Score evaluates one candidate for one client.
func (p *Policy) Score(c client.Profile, cand vertical.Candidate) vertical.Outcome {
	role := p.Role(c)
	if !slices.Contains(p.w.Roles[role].EventTypes, cand.EventType) {
		return vertical.Outcome{Reasons: []string{notApplicable(role, cand.EventType)}}
	}

	if role == RoleSeller {
		return p.scoreSeller(c, cand)
	}

	if reason, dataErr, ok := p.knockedOut(c.Preferences(), cand); ok {
		return vertical.Outcome{Reasons: []string{reason}, Knockout: !dataErr, DataError: dataErr}
	}

	s := scorer{}
	s.add(p.w.BuyerBase, "Base Match: "+title(cand.EventType))
	if loc, ok := locationMatch(c.Preferences(), cand.Attributes); ok {
		s.add(p.w.LocationBonus, "Location Match: "+loc)
	}
	if phrase, ok := firstPhrase(c.Preferences().Strings(PrefMustHaves), cand.Remarks); ok {
		s.add(p.w.MustHaveBonus, "Must-Have: "+phrase)
	}
	p.addShared(&s, c, cand)
	return s.outcome()
}

func (p *Policy) scoreSeller(c client.Profile, cand vertical.Candidate) vertical.Outcome {
	s := scorer{}
	s.add(p.w.SellerBase, "Seller Update: "+title(cand.EventType))
	if loc, ok := locationMatch(c.Preferences(), cand.Attributes); ok {
		s.add(p.w.ComparableBonus, "Comparable in Area: "+loc)
	}
	p.addShared(&s, c, cand)
	return s.outcome()
}

func (p *Policy) addShared(s *scorer, c client.Profile, cand vertical.Candidate) {
	if subtype, ok := subtypeMatch(c.Preferences(), cand.Attributes); ok {
		s.add(p.w.SubtypeBonus, "Property Type: "+subtype)
	}
	if !c.HasEmbedding() || len(cand.Embedding) == 0 {
		return
	}
	if sim := vector.Cosine(c.Embedding(), cand.Embedding); sim > p.w.SemanticFloor {
		s.add(p.w.SemanticWeight*sim, fmt.Sprintf("Semantic Match: %.0f%% similar", sim*100))
	}
}

// knockedOut returns the first failing hard constraint. A present but
// unparseable value on either side yields a data error reason.
func (p *Policy) knockedOut(prefs attribute.Set, cand vertical.Candidate) (reason string, dataErr, ok bool) {
	for _, k := range knockouts {
		limit, ok, err := prefs.Float(k.pref)
		if err != nil {
			return dataError(k.pref), true, true
		}
		if !ok {
			continue
		}
		actual, ok, err := cand.Attributes.Float(k.attr)
		if err != nil {
			return dataError(k.attr), true, true
		}
		if !ok {
			continue
		}
		if (k.bound == atMost && actual > limit) || (k.bound == atLeast && actual < limit) {
			return k.reason, false, true
		}
	}
	if phrase, ok := firstPhrase(prefs.Strings(PrefDealBreakers), cand.Remarks); ok {
		return fmt.Sprintf("Deal-Breaker: Mentions %q", phrase), false, true
	}
	return "", false, false
}

func dataError(field string) string { return "Data Error: invalid " + field }

func notApplicable(role vertical.Role, eventType string) string {
	if eventType == "" {
		return fmt.Sprintf("Not Applicable: no event type for %s", role)
	}
	return fmt.Sprintf("Not Applicable: %s for %s", title(eventType), role)
}

func locationMatch(prefs, attrs attribute.Set) (string, bool) {
	for _, loc := range prefs.Strings(PrefLocations) {
		needle := strings.ToLower(strings.TrimSpace(loc))
		if needle == "" {
			continue
		}
		for _, key := range locationAttrs {
			if strings.Contains(strings.ToLower(attrs.Text(key)), needle) {
				return loc, true
			}
		}
	}
	return "", false
}

func subtypeMatch(prefs, attrs attribute.Set) (string, bool) {
	actual := strings.TrimSpace(attrs.Text(AttrPropertySubType))
	if actual == "" {
		return "", false
	}
	for _, want := range prefs.Strings(PrefPropertySubtype) {
		if strings.EqualFold(strings.TrimSpace(want), actual) {
			return actual, true
		}
	}
	return "", false
}

func firstPhrase(phrases []string, text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, ph := range phrases {
		if n := strings.ToLower(strings.TrimSpace(ph)); n != "" && strings.Contains(lower, n) {
			return ph, true
		}
	}
	return "", false
}

type scorer struct {
	total   float64
	reasons []string
}

func (s *scorer) add(points float64, reason string) {
	s.total += points
	s.reasons = append(s.reasons, reason)
}

func (s *scorer) outcome() vertical.Outcome {
	return vertical.Outcome{Score: int(s.total), Reasons: s.reasons}
}

var _ vertical.ScoringPolicy = (*Policy)(nil)
