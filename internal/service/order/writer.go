package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/outbox"
	"github.com/vladislavdragonenkov/orders/internal/service/resolver"
)

// Writer — единственная точка входа write-path. Каждая операция выполняется
// в одной единице работы: резолюция клиента и адресов, проверка SKU, запись
// агрегата и outbox-вставка фиксируются вместе или не фиксируются вовсе.
// После коммита выполняется best-effort доставка события; её неудача не
// влияет на исход записи.
type Writer struct {
	uow        domain.UnitOfWork
	addresses  *resolver.AddressResolver
	customers  *resolver.CustomerResolver
	validator  *Validator
	recorder   *outbox.Recorder
	dispatcher *outbox.Dispatcher
	logger     *log.Entry
	metrics    *metrics.WriteMetrics
	now        func() time.Time
}

// NewWriter создаёт write service. dispatcher и writeMetrics могут быть nil.
func NewWriter(uow domain.UnitOfWork, dispatcher *outbox.Dispatcher, writeMetrics *metrics.WriteMetrics, logger *log.Entry) *Writer {
	if logger == nil {
		logger = log.WithField("component", "order-writer")
	}
	return &Writer{
		uow:        uow,
		addresses:  resolver.NewAddressResolver(),
		customers:  resolver.NewCustomerResolver(resolver.UpdatePolicyKeepExisting),
		validator:  NewValidator(),
		recorder:   outbox.NewRecorder(),
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    writeMetrics,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder создаёт заказ: резолвит клиента и оба адреса, фиксирует цены
// позиций из каталога и ставит событие order.created в outbox в той же
// транзакции.
func (w *Writer) CreateOrder(ctx context.Context, input CreateOrderInput) (OrderResult, error) {
	start := time.Now()
	result, msg, err := w.createOrder(ctx, input)
	w.metrics.ObserveWriteDuration("create", time.Since(start).Seconds())
	if err != nil {
		w.metrics.RecordWriteFailure("create", failureReason(err))
		return OrderResult{}, err
	}
	w.metrics.RecordOrderCreated()
	w.dispatch(ctx, msg)
	return result, nil
}

// createOrder резолвит клиента и адреса, затем валидирует уже отрезолвленные
// сущности: при first-write-wins name/created существующего клиента проверяются
// по хранимой записи, а не по запросу. Нарушение откатывает всю единицу работы,
// включая записи, созданные самой резолюцией.
func (w *Writer) createOrder(ctx context.Context, input CreateOrderInput) (OrderResult, domain.OutboxMessage, error) {
	var (
		result OrderResult
		msg    domain.OutboxMessage
	)
	err := w.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		customer, err := w.customers.Resolve(ctx, repos.Customers,
			input.Customer.Email, input.Customer.Name, input.Customer.Phone, input.Created)
		if err != nil {
			return err
		}

		billing, shipping, err := w.addresses.ResolvePair(ctx, repos.Addresses,
			addressCandidate(input.BillingAddress), addressCandidate(input.ShippingAddress))
		if err != nil {
			return err
		}

		if err := w.validator.ValidateCreate(customer, input); err != nil {
			return err
		}

		items, variantsByID, err := w.buildItems(ctx, repos.Variants, input.Items)
		if err != nil {
			return err
		}

		now := w.now()
		order := domain.Order{
			ID:                uuid.NewString(),
			Number:            domain.NewOrderNumber(),
			CustomerID:        customer.ID,
			BillingAddressID:  billing.ID,
			ShippingAddressID: shipping.ID,
			Items:             items,
			Version:           1,
			CreatedAt:         input.Created,
			UpdatedAt:         now,
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order %s: %w", order.Number, err)
		}

		result = mapOrder(order, customer, billing, shipping, variantsByID)
		msg, err = w.recorder.Record(ctx, repos.Outbox, outbox.EventTypeOrderCreated, order.Number, result)
		return err
	})
	if err != nil {
		return OrderResult{}, domain.OutboxMessage{}, err
	}

	w.logger.WithFields(log.Fields{
		"order_number": result.OrderNumber,
		"items":        len(result.OrderItems),
	}).Info("order created")
	return result, msg, nil
}

// UpdateOrder выполняет полную замену позиций и адреса доставки существующего
// заказа. Платёжный адрес и клиент не меняются.
func (w *Writer) UpdateOrder(ctx context.Context, input UpdateOrderInput) (OrderResult, error) {
	start := time.Now()
	result, msg, err := w.updateOrder(ctx, input)
	w.metrics.ObserveWriteDuration("update", time.Since(start).Seconds())
	if err != nil {
		w.metrics.RecordWriteFailure("update", failureReason(err))
		return OrderResult{}, err
	}
	w.metrics.RecordOrderUpdated()
	w.dispatch(ctx, msg)
	return result, nil
}

func (w *Writer) updateOrder(ctx context.Context, input UpdateOrderInput) (OrderResult, domain.OutboxMessage, error) {
	if err := w.validator.ValidateUpdate(input); err != nil {
		return OrderResult{}, domain.OutboxMessage{}, err
	}

	var (
		result OrderResult
		msg    domain.OutboxMessage
	)
	err := w.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		order, err := repos.Orders.GetByNumber(ctx, input.OrderNumber)
		if err != nil {
			return fmt.Errorf("load order %s: %w", input.OrderNumber, err)
		}

		shipping, err := w.addresses.Resolve(ctx, repos.Addresses, addressCandidate(input.ShippingAddress))
		if err != nil {
			return err
		}

		items, variantsByID, err := w.buildItems(ctx, repos.Variants, input.Items)
		if err != nil {
			return err
		}

		now := w.now()
		order.ReplaceItems(items, now)
		order.ReplaceShippingAddress(shipping.ID, now)
		if err := repos.Orders.Update(ctx, order); err != nil {
			return fmt.Errorf("update order %s: %w", order.Number, err)
		}

		customer, err := repos.Customers.GetByID(ctx, order.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer for order %s: %w", order.Number, err)
		}
		billingRows, err := repos.Addresses.FindByIDs(ctx, []string{order.BillingAddressID})
		if err != nil {
			return fmt.Errorf("load billing address for order %s: %w", order.Number, err)
		}
		if len(billingRows) == 0 {
			return fmt.Errorf("billing address %s is missing: %w", order.BillingAddressID, domain.ErrInfrastructure)
		}

		result = mapOrder(order, customer, billingRows[0], shipping, variantsByID)
		msg, err = w.recorder.Record(ctx, repos.Outbox, outbox.EventTypeOrderUpdated, order.Number, result)
		return err
	})
	if err != nil {
		return OrderResult{}, domain.OutboxMessage{}, err
	}

	w.logger.WithFields(log.Fields{
		"order_number": result.OrderNumber,
		"items":        len(result.OrderItems),
	}).Info("order updated")
	return result, msg, nil
}

// buildItems превращает запрошенные позиции в позиции заказа, фиксируя цену
// из каталога. Существование всех SKU проверяется одним батч-запросом;
// неизвестные SKU перечисляются в одной ошибке валидации, и запись целиком
// откатывается.
func (w *Writer) buildItems(ctx context.Context, catalog domain.VariantCatalog, inputs []ItemInput) ([]domain.OrderItem, map[string]domain.Variant, error) {
	skus := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, item := range inputs {
		sku := domain.NormalizeSKU(item.SKU)
		if _, ok := seen[sku]; !ok {
			seen[sku] = struct{}{}
			skus = append(skus, sku)
		}
	}

	variants, err := catalog.FindBySKUs(ctx, skus)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup variants by sku: %w", err)
	}
	bySKU := make(map[string]domain.Variant, len(variants))
	byID := make(map[string]domain.Variant, len(variants))
	for _, variant := range variants {
		bySKU[variant.SKU] = variant
		byID[variant.ID] = variant
	}

	var missing []string
	for _, sku := range skus {
		if _, ok := bySKU[sku]; !ok {
			missing = append(missing, sku)
		}
	}
	if len(missing) > 0 {
		verr := domain.NewValidationError()
		verr.Add("missingSkus", "unknown SKUs: "+strings.Join(missing, ", "))
		return nil, nil, verr
	}

	now := w.now()
	items := make([]domain.OrderItem, len(inputs))
	for i, item := range inputs {
		variant := bySKU[domain.NormalizeSKU(item.SKU)]
		items[i] = domain.OrderItem{
			ID:        uuid.NewString(),
			VariantID: variant.ID,
			SKU:       variant.SKU,
			Qty:       item.Qty,
			UnitPrice: variant.UnitPrice,
			CreatedAt: now,
		}
	}
	return items, byID, nil
}

// dispatch выполняет best-effort доставку после коммита. Неудача только
// логируется: сообщение уже durable и будет доставлено фоновым worker'ом.
func (w *Writer) dispatch(ctx context.Context, msg domain.OutboxMessage) {
	if err := w.dispatcher.Dispatch(ctx, msg); err != nil {
		w.logger.WithError(err).WithField("outbox_id", msg.ID).Warn("post-commit dispatch failed, message stays pending")
	}
}

func failureReason(err error) string {
	if _, ok := domain.AsValidationError(err); ok {
		return "validation"
	}
	switch {
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsConflict(err):
		return "conflict"
	case domain.IsCancelled(err):
		return "cancelled"
	default:
		return "infrastructure"
	}
}
