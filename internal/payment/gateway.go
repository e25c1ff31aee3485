package payment

import (
	"context"
	"net/http"
	"sort"
)

const (
	GatewayVNPay   = "vnpay"
	GatewayMoMo    = "momo"
	GatewayZaloPay = "zalopay"
)

// SupportedGateways lists every gateway a payment may be created with.
var SupportedGateways = []string{GatewayVNPay, GatewayMoMo, GatewayZaloPay}

type Gateway interface {
	Name() string
	BuildQR(p *Payment) (string, error)
	QueryStatus(ctx context.Context, reference string) (*GatewayStatus, error)
	VerifySignature(r *http.Request) error
}

// Registry maps gateway names to drivers.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, gw := range gateways {
		r.Register(gw)
	}
	return r
}

func (r *Registry) Register(gw Gateway) {
	r.gateways[gw.Name()] = gw
}

func (r *Registry) Get(name string) (Gateway, error) {
	gw, ok := r.gateways[name]
	if !ok {
		return nil, ErrUnknownGateway
	}
	return gw, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
