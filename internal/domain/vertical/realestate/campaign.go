package realestate

import "github.com/kailas-cloud/matchdex/internal/domain/vertical"

var campaigns = map[string]vertical.Campaign{
	"new_listing":       {EventType: "new_listing", Title: "New Listing", Name: "buyer_new_listing"},
	"price_drop":        {EventType: "price_drop", Title: "Price Drop", Name: "buyer_price_drop"},
	"back_on_market":    {EventType: "back_on_market", Title: "Back on Market", Name: "buyer_back_on_market"},
	"off_market":        {EventType: "off_market", Title: "Off-Market Opportunity", Name: "investor_off_market"},
	"comparable_sold":   {EventType: "comparable_sold", Title: "Comparable Sold", Name: "seller_comparable_sold"},
	"comparable_listed": {EventType: "comparable_listed", Title: "Comparable Listed", Name: "seller_comparable_listed"},
	"market_update":     {EventType: "market_update", Title: "Market Update", Name: "seller_market_update"},
}

func title(eventType string) string {
	if c, ok := campaigns[eventType]; ok {
		return c.Title
	}
	return eventType
}
