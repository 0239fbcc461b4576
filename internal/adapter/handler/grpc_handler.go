package handler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/rl1809/artisan-market/internal/adapter/handler/rpc"
	"github.com/rl1809/artisan-market/internal/auth"
	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

// GRPCHandler serves the purchase RPC with the same semantics as
// POST /api/purchase/lock.
type GRPCHandler struct {
	purchases   Purchaser
	tokens      TokenParser
	idempotency port.CacheRepository
	logger      *zap.Logger
}

func NewGRPCHandler(purchases Purchaser, tokens TokenParser, idempotency port.CacheRepository, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{purchases: purchases, tokens: tokens, idempotency: idempotency, logger: logger}
}

func (h *GRPCHandler) Purchase(ctx context.Context, req *rpc.PurchaseRequest) (*rpc.PurchaseReply, error) {
	claims, err := h.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if claims.Role != domain.RoleBuyer {
		return nil, rpcError(ctx, codes.PermissionDenied, CodeForbidden, "Access denied. Required role: buyer")
	}
	if req.ProductID <= 0 || req.Quantity <= 0 || req.ShippingAddress == "" {
		return nil, rpcError(ctx, codes.InvalidArgument, CodeInvalidRequest, "product_id, a positive quantity and shipping_address are required")
	}

	idempotencyKey := ""
	if req.IdempotencyKey != "" && h.idempotency != nil {
		idempotencyKey = fmt.Sprintf("%d:%s", claims.UserID, req.IdempotencyKey)
		reserved, err := h.idempotency.ReserveIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			h.logger.Error("reserve idempotency key", zap.Error(err))
			return nil, rpcError(ctx, codes.Internal, CodeInternal, "Purchase failed. Please try again.")
		}
		if !reserved {
			return nil, rpcError(ctx, codes.AlreadyExists, CodeDuplicateRequest, "A purchase with this idempotency key was already submitted")
		}
	}

	result := h.purchases.Purchase(ctx, domain.PurchaseIntent{
		BuyerID:         claims.UserID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		ShippingAddress: req.ShippingAddress,
		ClientAddress:   peerAddress(ctx),
	})

	if result.Outcome != domain.OutcomeSuccess && idempotencyKey != "" {
		if err := h.idempotency.ReleaseIdempotencyKey(context.WithoutCancel(ctx), idempotencyKey); err != nil {
			h.logger.Warn("release idempotency key", zap.String("key", idempotencyKey), zap.Error(err))
		}
	}

	code := result.Outcome.Code()
	switch result.Outcome {
	case domain.OutcomeSuccess:
		r := result.Receipt
		return &rpc.PurchaseReply{
			OrderID:        r.OrderID,
			TransactionID:  r.PaymentSplitID,
			ProductName:    r.ProductName,
			Quantity:       r.Quantity,
			TotalPrice:     domain.Money(r.TotalPrice),
			CommissionFee:  domain.Money(r.CommissionFee),
			ArtisanPayout:  domain.Money(r.ArtisanPayout),
			RemainingStock: r.RemainingStock,
			CreatedAt:      r.CreatedAt,
		}, nil
	case domain.OutcomeNotFound:
		return nil, rpcError(ctx, codes.NotFound, code, "Product not found")
	case domain.OutcomeLockContention:
		return nil, rpcError(ctx, codes.Aborted, code, "Product is currently being purchased by another customer. Please try again.")
	case domain.OutcomeSoldOut:
		return nil, rpcError(ctx, codes.FailedPrecondition, code, "SOLD OUT: This item is no longer available")
	case domain.OutcomeInsufficientStock:
		return nil, rpcError(ctx, codes.FailedPrecondition, code, fmt.Sprintf("Insufficient stock. Only %d items available", result.Available))
	default:
		return nil, rpcError(ctx, codes.Internal, code, "Purchase failed. Please try again.")
	}
}

func (h *GRPCHandler) authenticate(ctx context.Context) (*auth.Claims, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, rpcError(ctx, codes.Unauthenticated, CodeUnauthorized, "Not authenticated")
	}
	token, ok := strings.CutPrefix(values[0], "Bearer ")
	if !ok || token == "" {
		return nil, rpcError(ctx, codes.Unauthenticated, CodeUnauthorized, "Not authenticated")
	}

	claims, err := h.tokens.Parse(token)
	if errors.Is(err, auth.ErrTokenExpired) {
		return nil, rpcError(ctx, codes.Unauthenticated, CodeUnauthorized, "Token has expired")
	}
	if err != nil {
		return nil, rpcError(ctx, codes.Unauthenticated, CodeUnauthorized, "Invalid token")
	}
	return claims, nil
}

// rpcError attaches the machine-readable code as a trailer next to the
// gRPC status.
func rpcError(ctx context.Context, c codes.Code, code, detail string) error {
	_ = grpc.SetTrailer(ctx, metadata.Pairs(rpc.ErrorCodeTrailer, code))
	return status.Error(c, detail)
}

func peerAddress(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}

// UnaryLogging logs every unary call with its status code and latency.
func UnaryLogging(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
			zap.String("peer", peerAddress(ctx)),
		}
		switch status.Code(err) {
		case codes.OK:
			logger.Info("rpc served", fields...)
		case codes.Internal, codes.Unknown:
			logger.Error("rpc failed", append(fields, zap.Error(err))...)
		default:
			logger.Warn("rpc rejected", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}
