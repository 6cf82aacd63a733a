package payment

import (
	"context"
	"fmt"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
)

// MercadoPagoProvider resolves payment status through the Mercado Pago
// payments API. The provider ref is the numeric payment id issued by the
// checkout flow.
type MercadoPagoProvider struct {
	payments mppayment.Client
}

func NewMercadoPagoProvider(accessToken string) (*MercadoPagoProvider, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPagoProvider{payments: mppayment.NewClient(cfg)}, nil
}

func (p *MercadoPagoProvider) Status(ctx context.Context, providerRef string) (Result, error) {
	id, err := strconv.Atoi(providerRef)
	if err != nil {
		return Result{}, fmt.Errorf("invalid provider ref %q: %w", providerRef, err)
	}

	resp, err := p.payments.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}

	res := Result{DetailCode: resp.StatusDetail}
	switch resp.Status {
	case "approved":
		res.Status = domain.PaymentApproved
	case "rejected", "cancelled", "charged_back":
		res.Status = domain.PaymentRejected
	default:
		// pending, in_process, authorized, in_mediation: keep polling.
		res.Status = domain.PaymentPending
	}
	return res, nil
}

var _ Provider = (*MercadoPagoProvider)(nil)
