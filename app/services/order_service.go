package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/motomart/app/invoice"
	"github.com/shashiranjanraj/motomart/app/jobs"
	"github.com/shashiranjanraj/motomart/app/models"
	"github.com/shashiranjanraj/motomart/config"
	"github.com/shashiranjanraj/motomart/pkg/logger"
	"github.com/shashiranjanraj/motomart/pkg/metrics"
	"github.com/shashiranjanraj/motomart/pkg/middleware"
	"github.com/shashiranjanraj/motomart/pkg/queue"
	"github.com/shashiranjanraj/motomart/pkg/storage"
)

// OrderStore is the persistence surface OrderService needs.
type OrderStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	FindByUser(ctx context.Context, user primitive.ObjectID) ([]models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	MarkPaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderService sequences the order lifecycle: create, list, mark paid
// (invoice render + async email), cancel, invoice download.
type OrderService struct {
	orders   OrderStore
	products ProductStore
}

func NewOrderService(orders OrderStore, products ProductStore) *OrderService {
	return &OrderService{orders: orders, products: products}
}

type OrderItemInput struct {
	Product string  `json:"product"`
	Qty     int     `json:"qty"`
	Price   float64 `json:"price"`
}

type OrderInput struct {
	Products   []OrderItemInput `json:"products"`
	TotalPrice float64          `json:"totalPrice"`
}

// ItemView is a line item with its listing expanded for the client.
type ItemView struct {
	Product models.Product `json:"product"`
	Qty     int            `json:"qty"`
	Price   float64        `json:"price"`
}

// OrderView is the wire shape of an order with expanded line items.
type OrderView struct {
	ID         string     `json:"id"`
	User       string     `json:"user"`
	Products   []ItemView `json:"products"`
	TotalPrice float64    `json:"totalPrice"`
	IsPaid     bool       `json:"isPaid"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Create persists an order under the caller exactly as submitted. The total
// is stored without checking it against the line items; unit prices are
// captured here and never track later listing repricing.
func (s *OrderService) Create(ctx context.Context, callerID string, in OrderInput) (OrderView, error) {
	user, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return OrderView{}, badRequest("Invalid order ID")
	}
	if len(in.Products) == 0 {
		return OrderView{}, badRequest("Missing required fields")
	}

	items := make([]models.LineItem, 0, len(in.Products))
	for _, p := range in.Products {
		id, err := primitive.ObjectIDFromHex(p.Product)
		if err != nil {
			return OrderView{}, badRequest("Invalid product ID")
		}
		qty := p.Qty
		if qty <= 0 {
			qty = 1
		}
		items = append(items, models.LineItem{Product: id, Qty: qty, Price: p.Price})
	}

	order := models.Order{User: user, Products: items, TotalPrice: in.TotalPrice}
	if err := s.orders.Create(ctx, &order); err != nil {
		return OrderView{}, err
	}
	return s.expand(ctx, order)
}

// List returns the caller's orders with line items expanded against the
// current catalog. A line item whose listing was deleted keeps its captured
// price and a bare product reference.
func (s *OrderService) List(ctx context.Context, callerID string) ([]OrderView, error) {
	user, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, badRequest("Invalid order ID")
	}
	orders, err := s.orders.FindByUser(ctx, user)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalogFor(ctx, orders)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, buildView(o, catalog))
	}
	return views, nil
}

// Pay marks an order paid and kicks off the invoice pipeline: render,
// optional archive, async email. The email is fire-and-forget; once the
// paid flag is durably set this method reports success regardless of
// rendering or delivery problems.
func (s *OrderService) Pay(ctx context.Context, caller middleware.Identity, idHex string) (OrderView, error) {
	order, err := s.loadOwned(ctx, caller.ID, idHex)
	if err != nil {
		return OrderView{}, err
	}

	paidAt := time.Now().UTC()
	if err := s.orders.MarkPaid(ctx, order.ID, paidAt); err != nil {
		return OrderView{}, err
	}
	order.IsPaid = true
	order.PaidAt = &paidAt

	catalog, err := s.catalogFor(ctx, []models.Order{order})
	if err != nil {
		return OrderView{}, err
	}
	view := buildView(order, catalog)

	s.sendInvoice(ctx, caller, order, catalog)
	return view, nil
}

// Cancel deletes the caller's order. Nothing blocks cancelling a paid
// order; the charge, if any, is not reconciled.
func (s *OrderService) Cancel(ctx context.Context, callerID, idHex string) error {
	order, err := s.loadOwned(ctx, callerID, idHex)
	if err != nil {
		return err
	}
	return s.orders.Delete(ctx, order.ID)
}

// InvoiceData resolves an order into renderer input, applying the same
// ownership checks as every other order-scoped operation.
func (s *OrderService) InvoiceData(ctx context.Context, caller middleware.Identity, idHex string) (invoice.Data, error) {
	order, err := s.loadOwned(ctx, caller.ID, idHex)
	if err != nil {
		return invoice.Data{}, err
	}
	catalog, err := s.catalogFor(ctx, []models.Order{order})
	if err != nil {
		return invoice.Data{}, err
	}
	return invoiceData(order, caller, catalog), nil
}

// loadOwned applies the uniform order access protocol: well-formed id,
// existing record, caller is the owner. The same statuses and messages are
// produced for pay, cancel and invoice download.
func (s *OrderService) loadOwned(ctx context.Context, callerID, idHex string) (models.Order, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return models.Order{}, badRequest("Invalid order ID")
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Order{}, notFound("Order not found")
		}
		return models.Order{}, err
	}
	if order.User.Hex() != callerID {
		return models.Order{}, forbidden("Forbidden: not your order")
	}
	return order, nil
}

// sendInvoice renders the PDF, optionally archives it, and queues the email.
// Every failure here is logged and swallowed.
func (s *OrderService) sendInvoice(ctx context.Context, caller middleware.Identity, order models.Order, catalog map[primitive.ObjectID]models.Product) {
	pdf, err := invoice.Bytes(invoiceData(order, caller, catalog))
	if err != nil {
		logger.WithCtx(ctx).Error("invoice render failed", "order", order.ID.Hex(), "error", err)
		return
	}
	metrics.InvoicesRendered.WithLabelValues("email").Inc()

	if config.InvoiceArchive() {
		path := "invoices/" + invoice.Filename(order.ID.Hex())
		if disk, err := storage.Default(); err != nil {
			// The configured disk never booted. The payment is already
			// confirmed, so skip the archive rather than surface a 500.
			logger.WithCtx(ctx).Error("invoice archive skipped", "order", order.ID.Hex(), "error", err)
		} else if err := disk.Put(path, pdf); err != nil {
			logger.WithCtx(ctx).Error("invoice archive failed", "order", order.ID.Hex(), "error", err)
		} else {
			metrics.InvoicesRendered.WithLabelValues("archive").Inc()
		}
	}

	job := &jobs.InvoiceEmailJob{
		To:      caller.Email,
		Subject: fmt.Sprintf("Your invoice for order %s", order.ID.Hex()),
		HTML: fmt.Sprintf("<p>Hi %s,</p><p>Thanks for your payment of $%.2f. Your invoice is attached.</p>",
			caller.Name, order.TotalPrice),
		Filename: invoice.Filename(order.ID.Hex()),
		PDF:      pdf,
	}
	if err := queue.Dispatch(job); err != nil {
		logger.WithCtx(ctx).Error("invoice email dispatch failed", "order", order.ID.Hex(), "error", err)
	}
}

// catalogFor loads every listing referenced by the given orders in one query.
func (s *OrderService) catalogFor(ctx context.Context, orders []models.Order) (map[primitive.ObjectID]models.Product, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, o := range orders {
		for _, item := range o.Products {
			if !seen[item.Product] {
				seen[item.Product] = true
				ids = append(ids, item.Product)
			}
		}
	}
	catalog := map[primitive.ObjectID]models.Product{}
	if len(ids) == 0 {
		return catalog, nil
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		catalog[p.ID] = p
	}
	return catalog, nil
}

func buildView(order models.Order, catalog map[primitive.ObjectID]models.Product) OrderView {
	items := make([]ItemView, 0, len(order.Products))
	for _, item := range order.Products {
		product, ok := catalog[item.Product]
		if !ok {
			product = models.Product{ID: item.Product}
		}
		items = append(items, ItemView{Product: product, Qty: item.Qty, Price: item.Price})
	}
	return OrderView{
		ID:         order.ID.Hex(),
		User:       order.User.Hex(),
		Products:   items,
		TotalPrice: order.TotalPrice,
		IsPaid:     order.IsPaid,
		PaidAt:     order.PaidAt,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

func invoiceData(order models.Order, caller middleware.Identity, catalog map[primitive.ObjectID]models.Product) invoice.Data {
	items := make([]invoice.Item, 0, len(order.Products))
	for _, item := range order.Products {
		name := catalog[item.Product].Name
		if name == "" {
			name = item.Product.Hex()
		}
		items = append(items, invoice.Item{Name: name, Qty: item.Qty, UnitPrice: item.Price})
	}
	return invoice.Data{
		OrderID:       order.ID.Hex(),
		Date:          order.CreatedAt,
		CustomerName:  caller.Name,
		CustomerEmail: caller.Email,
		Items:         items,
		Total:         order.TotalPrice,
	}
}

func (s *OrderService) expand(ctx context.Context, order models.Order) (OrderView, error) {
	catalog, err := s.catalogFor(ctx, []models.Order{order})
	if err != nil {
		return OrderView{}, err
	}
	return buildView(order, catalog), nil
}
