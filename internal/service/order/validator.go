package order

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// createdSkewTolerance — допустимое рассогласование часов клиента и сервера:
// timestamp в пределах этого окна в будущем не считается ошибкой.
const createdSkewTolerance = 5 * time.Minute

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// Почтовые индексы Великобритании, включая особый случай GIR 0AA.
	postCodePattern = regexp.MustCompile(`(?i)^(GIR ?0AA|[A-Z]{1,2}[0-9][0-9A-Z]? ?[0-9][A-Z]{2})$`)
)

// Validator проверяет форму запроса и собирает все нарушения разом:
// вызывающая сторона получает полный список, а не первое попавшееся.
// Валидатор чистый — ни хранилища, ни логирования.
type Validator struct {
	now func() time.Time
}

// NewValidator создаёт валидатор запросов.
func NewValidator() *Validator {
	return &Validator{now: func() time.Time { return time.Now().UTC() }}
}

// ValidateCreate проверяет запрос на создание заказа против отрезолвленного
// клиента. Name и created берутся из хранимой записи: при first-write-wins
// запрос для существующего клиента может их опускать, проверяются сохранённые
// значения. Вызывается внутри единицы работы — нарушение откатывает и только
// что созданные резолюцией записи.
func (v *Validator) ValidateCreate(customer domain.Customer, input CreateOrderInput) error {
	verr := domain.NewValidationError()

	if strings.TrimSpace(customer.Name) == "" {
		verr.Add("name", "name is required")
	}
	switch {
	case strings.TrimSpace(input.Customer.Email) == "":
		verr.Add("email", "email is required")
	case !emailPattern.MatchString(strings.TrimSpace(input.Customer.Email)):
		verr.Add("email", "email format is invalid")
	}

	switch {
	case customer.CreatedAt.IsZero():
		verr.Add("created", "created timestamp is required")
	case customer.CreatedAt.After(v.now().Add(createdSkewTolerance)):
		verr.Add("created", "created timestamp must not be in the future")
	}

	v.validateAddress(verr, "billingAddress", input.BillingAddress)
	v.validateAddress(verr, "shippingAddress", input.ShippingAddress)
	v.validateItems(verr, input.Items)

	if verr.Empty() {
		return nil
	}
	return verr
}

// ValidateUpdate проверяет запрос на обновление заказа.
func (v *Validator) ValidateUpdate(input UpdateOrderInput) error {
	verr := domain.NewValidationError()

	if strings.TrimSpace(input.OrderNumber) == "" {
		verr.Add("orderNumber", "order number is required")
	}
	v.validateAddress(verr, "shippingAddress", input.ShippingAddress)
	v.validateItems(verr, input.Items)

	if verr.Empty() {
		return nil
	}
	return verr
}

func (v *Validator) validateAddress(verr *domain.ValidationError, prefix string, address AddressInput) {
	if strings.TrimSpace(address.LineOne) == "" {
		verr.Add(prefix+".lineOne", "address line one is required")
	}
	postCode := strings.TrimSpace(address.PostCode)
	switch {
	case postCode == "":
		verr.Add(prefix+".postCode", "post code is required")
	case !postCodePattern.MatchString(postCode):
		verr.Add(prefix+".postCode", "post code format is invalid")
	}
}

func (v *Validator) validateItems(verr *domain.ValidationError, items []ItemInput) {
	if len(items) == 0 {
		verr.Add("orderItems", "at least one order item is required")
		return
	}
	for i, item := range items {
		if strings.TrimSpace(item.SKU) == "" {
			verr.Add(fmt.Sprintf("orderItems[%d].sku", i), "sku is required")
		}
		if item.Qty < 1 {
			verr.Add(fmt.Sprintf("orderItems[%d].quantity", i), "quantity must be at least 1")
		}
	}
}
