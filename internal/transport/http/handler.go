package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/service/inbox"
	"github.com/vladislavdragonenkov/orders/internal/service/order"
)

// Handler связывает HTTP-маршруты с write/read-сервисами заказов.
type Handler struct {
	writer *order.Writer
	reader *order.Reader
	inbox  *inbox.Handler
	logger *log.Entry
}

// NewHandler создаёт HTTP handler.
func NewHandler(writer *order.Writer, reader *order.Reader, inboxHandler *inbox.Handler, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-handler")
	}
	return &Handler{
		writer: writer,
		reader: reader,
		inbox:  inboxHandler,
		logger: logger,
	}
}

// Register вешает маршруты на router.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/orders", h.createOrder)
	router.GET("/orders/:orderNumber", h.getOrder)
	router.PUT("/orders/:orderNumber", h.updateOrder)
	router.POST("/inbox", h.acceptInbound)
}

func (h *Handler) createOrder(c *gin.Context) {
	var req CreateOrderRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is not valid JSON"})
		return
	}

	result, err := h.writer.CreateOrder(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getOrder(c *gin.Context) {
	result, err := h.reader.GetOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) updateOrder(c *gin.Context) {
	var req UpdateOrderRequestDto
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is not valid JSON"})
		return
	}

	result, err := h.writer.UpdateOrder(c.Request.Context(), req.toInput(c.Param("orderNumber")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// acceptInbound принимает событие каталога тем же конвертом, что и Kafka-канал.
func (h *Handler) acceptInbound(c *gin.Context) {
	var envelope kafka.InboundEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is not valid JSON"})
		return
	}

	if err := h.inbox.Handle(c.Request.Context(), envelope); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// writeError переводит доменные ошибки в HTTP-статусы. Это единственная
// точка трансляции: сервисы отдают типизированные исходы, не зная о HTTP.
func (h *Handler) writeError(c *gin.Context, err error) {
	if verr, ok := domain.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Map()})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case domain.IsCancelled(err):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "request cancelled"})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
