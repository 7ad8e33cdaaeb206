// Package service holds the business rules above the record layer: who may
// touch which record, and the order placement workflow.
package service

import (
	"github.com/kahenya/sales-crm/apperr"
	"github.com/kahenya/sales-crm/auth"
	"github.com/kahenya/sales-crm/models"
)

// AuthorizeClient fails unless the client is owned by the acting seller.
func AuthorizeClient(client *models.Client, ident auth.Identity) error {
	if client.SellerID != ident.ID {
		return apperr.ErrUnauthorized
	}
	return nil
}

// AuthorizeOrder fails unless the order was placed by the acting seller.
func AuthorizeOrder(order *models.Order, ident auth.Identity) error {
	if order.SellerID != ident.ID {
		return apperr.ErrUnauthorized
	}
	return nil
}
