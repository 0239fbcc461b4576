package rpc

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/rl1809/artisan-market/internal/core/domain"
)

const (
	ServiceName        = "artisan.market.v1.PurchaseService"
	PurchaseFullMethod = "/" + ServiceName + "/Purchase"

	// ErrorCodeTrailer carries the machine-readable outcome code on failed calls.
	ErrorCodeTrailer = "x-error-code"
)

type PurchaseRequest struct {
	ProductID       int64  `json:"product_id"`
	Quantity        int    `json:"quantity"`
	ShippingAddress string `json:"shipping_address"`
	IdempotencyKey  string `json:"idempotency_key,omitempty"`
}

type PurchaseReply struct {
	OrderID        int64        `json:"order_id"`
	TransactionID  int64        `json:"transaction_id"`
	ProductName    string       `json:"product_name"`
	Quantity       int          `json:"quantity"`
	TotalPrice     domain.Money `json:"total_price"`
	CommissionFee  domain.Money `json:"commission_fee"`
	ArtisanPayout  domain.Money `json:"artisan_payout"`
	RemainingStock int          `json:"remaining_stock"`
	CreatedAt      time.Time    `json:"created_at"`
}

type PurchaseServiceServer interface {
	Purchase(ctx context.Context, req *PurchaseRequest) (*PurchaseReply, error)
}

func RegisterPurchaseServiceServer(s grpc.ServiceRegistrar, srv PurchaseServiceServer) {
	s.RegisterService(&PurchaseServiceDesc, srv)
}

var PurchaseServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PurchaseServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Purchase", Handler: purchaseHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "artisan/market/v1/purchase",
}

func purchaseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PurchaseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PurchaseServiceServer).Purchase(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PurchaseFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PurchaseServiceServer).Purchase(ctx, req.(*PurchaseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type PurchaseServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPurchaseServiceClient(cc grpc.ClientConnInterface) *PurchaseServiceClient {
	return &PurchaseServiceClient{cc: cc}
}

func (c *PurchaseServiceClient) Purchase(ctx context.Context, in *PurchaseRequest, opts ...grpc.CallOption) (*PurchaseReply, error) {
	out := new(PurchaseReply)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, PurchaseFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
