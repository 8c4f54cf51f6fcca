package payments

import (
	"log"
	"net/http"
	"time"

	"github.com/desainhub/desainhub-api/apperr"
	config "github.com/desainhub/desainhub-api/configs"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type SnapTransaction struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

func snapClient() snap.Client {
	var c snap.Client

	env := midtrans.Sandbox
	if config.Config("MIDTRANS_ENV") == "production" {
		env = midtrans.Production
	}

	c.New(config.Config("MIDTRANS_SERVER_KEY"), env)
	c.HttpClient = &midtrans.HttpClientImplementation{
		HttpClient: &http.Client{Timeout: 15 * time.Second},
	}
	return c
}

// CreateSnapTransaction asks Midtrans for a checkout token scoped to the given
// order reference. No local state is mutated; a timeout leaves nothing to
// roll back.
func CreateSnapTransaction(orderRef string, amount float64, itemID, itemName, customerName, customerEmail string) (*SnapTransaction, error) {
	c := snapClient()

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderRef,
			GrossAmt: int64(amount),
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    itemID,
				Price: int64(amount),
				Qty:   1,
				Name:  itemName,
			},
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customerName,
			Email: customerEmail,
		},
	}

	resp, merr := c.CreateTransaction(req)
	if merr != nil {
		log.Printf("🔥 Midtrans Snap transaction failed for %s: %v", orderRef, merr.Error())
		return nil, apperr.Wrap(apperr.ErrGateway, "failed to create payment transaction")
	}

	log.Printf("✅ Snap token created for order reference %s", orderRef)
	return &SnapTransaction{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// ClientKey is exposed to the frontend alongside the Snap token.
func ClientKey() string {
	return config.Config("MIDTRANS_CLIENT_KEY")
}
