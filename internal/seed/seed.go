// Package seed loads demo data for local development. It is keyed on the
// demo owner's email, so rerunning it against a seeded database is a no-op.
package seed

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
	creditdomain "github.com/colmadolabs/colmado/internal/credit/domain"
	orderdomain "github.com/colmadolabs/colmado/internal/order/domain"
	storedomain "github.com/colmadolabs/colmado/internal/store/domain"
	"gorm.io/gorm"
)

const (
	demoOwnerEmail    = "dona.rosa@colmado.local"
	demoCustomerEmail = "juan.perez@colmado.local"

	// argon2id hash of "colmado-demo", for logging into the seeded accounts.
	demoPasswordHash = "argon2id$kTh0beLlmGHjiFKIrpZF/g$1PScpTC+aUhHmUQwTkS/2B9dOUZ0up8Gd9M29f1pbaM"
)

// EnsureDemoData creates a demo owner, store, catalog, customer, and an
// approved credit line with an outstanding balance.
func EnsureDemoData(conn *gorm.DB, genID *snowflake.Node) error {
	var existing authdomain.User
	err := conn.First(&existing, "email = ?", demoOwnerEmail).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash := demoPasswordHash
	owner := &authdomain.User{
		ID:           genID.Generate(),
		Email:        demoOwnerEmail,
		PasswordHash: &hash,
		FullName:     "Doña Rosa",
		Role:         authdomain.RoleOwner,
	}
	customer := &authdomain.User{
		ID:           genID.Generate(),
		Email:        demoCustomerEmail,
		PasswordHash: &hash,
		FullName:     "Juan Pérez",
		Role:         authdomain.RoleCustomer,
	}

	store := &storedomain.Store{
		ID:       genID.Generate(),
		OwnerID:  owner.ID,
		Name:     "Colmado Doña Rosa",
		Location: "Calle Duarte 42, Santo Domingo",
		IsOpen:   true,
	}

	products := []storedomain.StoreProduct{
		{ID: genID.Generate(), StoreID: store.ID, Name: "Arroz", Category: "granos", Price: 85_00, InStock: true},
		{ID: genID.Generate(), StoreID: store.ID, Name: "Habichuelas", Category: "granos", Price: 95_00, InStock: true},
		{ID: genID.Generate(), StoreID: store.ID, Name: "Aceite", Category: "despensa", Price: 310_00, InStock: true},
		{ID: genID.Generate(), StoreID: store.ID, Name: "Salami", Category: "embutidos", Price: 180_00, InStock: true},
		{ID: genID.Generate(), StoreID: store.ID, Name: "Malta", Category: "bebidas", Price: 60_00, InStock: false},
	}

	// One past fiado purchase: 10 arroz + 2 habichuelas + 2 salami.
	const outstanding = 10*85_00 + 2*95_00 + 2*180_00

	relationship := &creditdomain.CreditRelationship{
		ID:             genID.Generate(),
		StoreID:        store.ID,
		CustomerID:     customer.ID,
		IsApproved:     true,
		CreditLimit:    5000_00,
		CurrentBalance: outstanding,
		Version:        1,
	}
	history := &creditdomain.BalanceHistoryEntry{
		ID:             genID.Generate(),
		RelationshipID: relationship.ID,
		Amount:         outstanding,
		Type:           creditdomain.EntryCredit,
	}
	order := &orderdomain.Order{
		ID:            genID.Generate(),
		StoreID:       store.ID,
		CustomerID:    customer.ID,
		Status:        orderdomain.StatusDelivered,
		PaymentMethod: orderdomain.PaymentFiado,
		Total:         outstanding,
		Items: []orderdomain.OrderItem{
			{ID: genID.Generate(), StoreProductID: products[0].ID, Quantity: 10, UnitPrice: 85_00},
			{ID: genID.Generate(), StoreProductID: products[1].ID, Quantity: 2, UnitPrice: 95_00},
			{ID: genID.Generate(), StoreProductID: products[3].ID, Quantity: 2, UnitPrice: 180_00},
		},
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		for _, record := range []any{owner, customer, store} {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}
		if err := tx.Create(relationship).Error; err != nil {
			return err
		}
		if err := tx.Create(history).Error; err != nil {
			return err
		}
		return tx.Create(order).Error
	})
}
