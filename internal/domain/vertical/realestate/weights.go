package realestate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/vertical"
)

// Roles recognized by the real-estate vertical.
const (
	RoleBuyer    vertical.Role = "buyer"
	RoleSeller   vertical.Role = "seller"
	RoleInvestor vertical.Role = "investor"
)

// RoleRule binds a role to its identifying tag and the events it cares about.
type RoleRule struct {
	Tag        string
	EventTypes []string
}

// Weights is the complete real-estate scoring configuration.
// Every value is explicit; there are no fallbacks at scoring time.
type Weights struct {
	BuyerBase       float64
	LocationBonus   float64
	MustHaveBonus   float64
	SubtypeBonus    float64
	SemanticWeight  float64
	SemanticFloor   float64
	SellerBase      float64
	ComparableBonus float64
	Roles           map[vertical.Role]RoleRule
}

// DefaultWeights returns the stock real-estate configuration.
func DefaultWeights() Weights {
	return Weights{
		BuyerBase:       25,
		LocationBonus:   20,
		MustHaveBonus:   15,
		SubtypeBonus:    10,
		SemanticWeight:  30,
		SemanticFloor:   0.45,
		SellerBase:      25,
		ComparableBonus: 20,
		Roles: map[vertical.Role]RoleRule{
			RoleBuyer: {
				Tag:        "buyer",
				EventTypes: []string{"new_listing", "price_drop", "back_on_market"},
			},
			RoleInvestor: {
				Tag:        "investor",
				EventTypes: []string{"new_listing", "price_drop", "back_on_market", "off_market"},
			},
			RoleSeller: {
				Tag:        "seller",
				EventTypes: []string{"comparable_sold", "comparable_listed", "market_update"},
			},
		},
	}
}

// Validate checks that every weight is usable.
func (w Weights) Validate() error {
	named := w.numeric()
	for _, k := range slices.Sorted(maps.Keys(named)) {
		if named[k] < 0 {
			return fmt.Errorf("weight %s must be non-negative: %w", k, domain.ErrInvalidConfig)
		}
	}
	if w.SemanticFloor > 1 {
		return fmt.Errorf("semantic_floor must be in [0,1]: %w", domain.ErrInvalidConfig)
	}
	if len(w.Roles) == 0 {
		return fmt.Errorf("role table is empty: %w", domain.ErrInvalidConfig)
	}
	for _, role := range []vertical.Role{RoleBuyer, RoleSeller, RoleInvestor} {
		rule, ok := w.Roles[role]
		if !ok {
			return fmt.Errorf("role %s is not configured: %w", role, domain.ErrInvalidConfig)
		}
		if rule.Tag == "" || len(rule.EventTypes) == 0 {
			return fmt.Errorf("role %s needs a tag and event types: %w", role, domain.ErrInvalidConfig)
		}
	}
	return nil
}

// Override returns a copy with the named numeric weights replaced.
// Keys use snake_case (e.g. "buyer_base"); unknown keys are rejected.
func (w Weights) Override(values map[string]float64) (Weights, error) {
	out := w
	out.Roles = maps.Clone(w.Roles)
	for k, v := range values {
		ptr := out.field(k)
		if ptr == nil {
			return Weights{}, fmt.Errorf("unknown weight %q: %w", k, domain.ErrInvalidConfig)
		}
		*ptr = v
	}
	return out, out.Validate()
}

func (w *Weights) field(name string) *float64 {
	switch name {
	case "buyer_base":
		return &w.BuyerBase
	case "location_bonus":
		return &w.LocationBonus
	case "must_have_bonus":
		return &w.MustHaveBonus
	case "subtype_bonus":
		return &w.SubtypeBonus
	case "semantic_weight":
		return &w.SemanticWeight
	case "semantic_floor":
		return &w.SemanticFloor
	case "seller_base":
		return &w.SellerBase
	case "comparable_bonus":
		return &w.ComparableBonus
	default:
		return nil
	}
}

func (w Weights) numeric() map[string]float64 {
	return map[string]float64{
		"buyer_base":       w.BuyerBase,
		"location_bonus":   w.LocationBonus,
		"must_have_bonus":  w.MustHaveBonus,
		"subtype_bonus":    w.SubtypeBonus,
		"semantic_weight":  w.SemanticWeight,
		"semantic_floor":   w.SemanticFloor,
		"seller_base":      w.SellerBase,
		"comparable_bonus": w.ComparableBonus,
	}
}
