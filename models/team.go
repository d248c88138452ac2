package models

import "time"

// Holding is a team's position in one stock. PurchasePrice is a single
// blended cost basis and is 0 whenever Owned is 0.
type Holding struct {
	Owned         int     `json:"owned" bson:"owned"`
	PurchasePrice float64 `json:"purchase_price" bson:"purchase_price"`
	YearPurchased int     `json:"year_purchased" bson:"year_purchased"`
}

// Team is the ledger aggregate for one player: cash, positions and the
// append-only log of completed sales.
type Team struct {
	Name           string          `json:"teamName" bson:"name"`
	Balance        float64         `json:"balance" bson:"balance"`
	Holdings       map[int]Holding `json:"holdings" bson:"holdings"`
	CompletedSales []SaleRecord    `json:"completed_sales" bson:"completed_sales"`
	Version        int64           `json:"version" bson:"version"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
}

// NewTeam returns an empty team with the given starting cash.
func NewTeam(name string, balance float64) *Team {
	return &Team{
		Name:           name,
		Balance:        balance,
		Holdings:       make(map[int]Holding),
		CompletedSales: []SaleRecord{},
		CreatedAt:      time.Now().UTC(),
	}
}

// Holding returns the position for stockID, or the zero holding if the team
// never bought it.
func (t *Team) Holding(stockID int) Holding {
	if t.Holdings == nil {
		return Holding{}
	}
	return t.Holdings[stockID]
}

// Clone returns a deep copy so snapshots never alias a stored aggregate.
func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	c := *t
	c.Holdings = make(map[int]Holding, len(t.Holdings))
	for id, h := range t.Holdings {
		c.Holdings[id] = h
	}
	c.CompletedSales = append([]SaleRecord{}, t.CompletedSales...)
	return &c
}
