package gateway

import (
	"context"
	"fmt"
	"math"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sirupsen/logrus"
)

// expiryTimeLayout is the start_time format Snap accepts.
const expiryTimeLayout = "2006-01-02 15:04:05 -0700"

type snapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// MidtransGateway requests Snap payment tokens.
type MidtransGateway struct {
	client snapClient
	log    logrus.FieldLogger
}

// NewMidtransGateway creates a Snap client for the sandbox or production environment.
func NewMidtransGateway(serverKey string, production bool, log logrus.FieldLogger) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client snap.Client
	client.New(serverKey, env)
	return &MidtransGateway{client: &client, log: log}
}

// CreateCharge registers the transaction with Snap and returns its token.
func (g *MidtransGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapReq := buildSnapRequest(req)
	resp, merr := g.client.CreateTransaction(snapReq)
	if merr != nil {
		g.log.WithFields(logrus.Fields{
			"order_ref":   req.OrderReference,
			"status_code": merr.StatusCode,
		}).Error("Snap transaction request failed")
		return nil, fmt.Errorf("snap create transaction: %s", merr.Message)
	}
	if resp == nil || resp.Token == "" {
		return nil, fmt.Errorf("snap create transaction: empty token for %s", req.OrderReference)
	}

	return &ChargeResult{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func buildSnapRequest(req ChargeRequest) *snap.Request {
	items := make([]midtrans.ItemDetails, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    it.ID,
			Name:  truncate(it.Name, 50),
			Price: it.Price.Round(0).IntPart(),
			Qty:   int32(it.Quantity),
		})
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderReference,
			GrossAmt: req.GrossAmount.Round(0).IntPart(),
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
	}

	if req.ExpiryDuration > 0 {
		snapReq.Expiry = &snap.ExpiryDetails{
			StartTime: req.ExpiryStart.Format(expiryTimeLayout),
			Unit:      "minute",
			Duration:  int64(math.Ceil(req.ExpiryDuration.Minutes())),
		}
	}
	return snapReq
}

// truncate caps s at n runes; Snap rejects longer item names.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
