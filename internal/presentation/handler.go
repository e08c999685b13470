package presentation

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/application"
	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/JeterChan/miao-fruit-web/internal/logger"
	"github.com/JeterChan/miao-fruit-web/internal/presentation/helpers"
	"github.com/JeterChan/miao-fruit-web/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	svc     *application.OrdersService
	devMode bool
}

func NewOrdersHandler(svc *application.OrdersService, devMode bool) *OrdersHandler {
	return &OrdersHandler{svc: svc, devMode: devMode}
}

// Register mounts the public order routes plus the admin subtree behind
// the supplied auth middleware.
func (h *OrdersHandler) Register(r chi.Router, adminAuth func(http.Handler) http.Handler) {
	r.Post("/api/orders/submit", h.SubmitOrder)
	r.Get("/api/orders/status", h.GetOrderStatus)
	r.Get("/api/orders/{orderNumber}", h.GetOrderDetails)

	r.Route("/api/orders/admin", func(r chi.Router) {
		r.Use(adminAuth)
		r.Get("/all", h.ListOrders)
		r.Put("/{orderNumber}/status", h.UpdateStatus)
	})
}

type cartItemRequest struct {
	ID           string `json:"id"`
	CartQuantity int    `json:"cartQuantity"`
}

type submitOrderRequest struct {
	SenderName         string            `json:"senderName"`
	SenderPhone        string            `json:"senderPhone"`
	SenderAddress      string            `json:"senderAddress"`
	SenderPostalCode   string            `json:"senderPostalCode"`
	SenderEmail        string            `json:"senderEmail"`
	ReceiverName       string            `json:"receiverName"`
	ReceiverPhone      string            `json:"receiverPhone"`
	ReceiverAddress    string            `json:"receiverAddress"`
	ReceiverPostalCode string            `json:"receiverPostalCode"`
	Notes              string            `json:"notes"`
	LineUserID         string            `json:"lineUserId"`
	CartItems          []cartItemRequest `json:"cartItems"`
}

func (h *OrdersHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if len(req.CartItems) == 0 {
		helpers.HttpError(w, http.StatusBadRequest, "購物車是空的，無法建立訂單")
		return
	}

	in := application.SubmitOrderInput{
		Sender: domain.Contact{
			Name:       req.SenderName,
			Phone:      req.SenderPhone,
			Address:    req.SenderAddress,
			PostalCode: req.SenderPostalCode,
		},
		SenderEmail: req.SenderEmail,
		Receiver: domain.Contact{
			Name:       req.ReceiverName,
			Phone:      req.ReceiverPhone,
			Address:    req.ReceiverAddress,
			PostalCode: req.ReceiverPostalCode,
		},
		Notes:      req.Notes,
		LineUserID: req.LineUserID,
	}
	for _, item := range req.CartItems {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			helpers.HttpError(w, http.StatusBadRequest, "無效的產品編號: "+item.ID)
			return
		}
		in.Cart = append(in.Cart, application.CartLine{ProductID: id, Quantity: item.CartQuantity})
	}

	confirmation, err := h.svc.SubmitOrder(r.Context(), in)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"message": "訂單建立成功！",
		"data":    confirmation,
	})
}

func (h *OrdersHandler) writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		helpers.HttpError(w, http.StatusBadRequest, "購物車是空的，無法建立訂單")
	case errors.Is(err, domain.ErrMissingField):
		field := strings.TrimPrefix(err.Error(), domain.ErrMissingField.Error()+": ")
		helpers.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "請填寫所有必要欄位",
			"field":   field,
		})
	case errors.Is(err, domain.ErrInvalidQuantity):
		helpers.HttpError(w, http.StatusBadRequest, "訂購數量必須為正整數")
	case errors.Is(err, domain.ErrNotesTooLong):
		helpers.HttpError(w, http.StatusBadRequest, "備註不能超過500個字元")
	case errors.Is(err, domain.ErrProductNotFound):
		helpers.HttpError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("submit order failed", "err", err)
		if h.devMode {
			helpers.HttpErrorDetail(w, http.StatusInternalServerError, "建立訂單時發生錯誤", err.Error())
			return
		}
		helpers.HttpError(w, http.StatusInternalServerError, "建立訂單時發生錯誤")
	}
}

func (h *OrdersHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderNumber := r.URL.Query().Get("orderNumber")
	email := r.URL.Query().Get("email")
	if orderNumber == "" || email == "" {
		helpers.HttpError(w, http.StatusBadRequest, "請提供訂單編號和 Email")
		return
	}

	view, err := h.svc.GetOrderStatus(r.Context(), orderNumber, email)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			helpers.HttpError(w, http.StatusNotFound, "找不到此訂單或Email不符")
			return
		}
		logger.Warn("get order status failed", "order_number", orderNumber, "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "查詢訂單時發生錯誤")
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   view,
	})
}

func (h *OrdersHandler) GetOrderDetails(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	email := r.URL.Query().Get("email")
	if email == "" {
		helpers.HttpError(w, http.StatusBadRequest, "請提供 Email 進行驗證")
		return
	}

	order, err := h.svc.GetOrderDetails(r.Context(), orderNumber, email)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			helpers.HttpError(w, http.StatusNotFound, "找不到此訂單或Email不符")
			return
		}
		logger.Warn("get order details failed", "order_number", orderNumber, "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "無法取得訂單詳情")
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   order,
	})
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOrderFilter(r)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, pagination, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		logger.Warn("list orders failed", "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "取得訂單列表失敗")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"orders":     orders,
			"pagination": pagination,
		},
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	var req updateStatusRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Status == "" {
		helpers.HttpError(w, http.StatusBadRequest, "請提供新狀態")
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), orderNumber, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			helpers.HttpError(w, http.StatusBadRequest, "無效的訂單狀態")
		case errors.Is(err, domain.ErrOrderNotFound):
			helpers.HttpError(w, http.StatusNotFound, "找不到此訂單")
		default:
			logger.Warn("update order status failed", "order_number", orderNumber, "err", err)
			helpers.HttpError(w, http.StatusInternalServerError, "更新訂單狀態失敗")
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "訂單狀態已更新",
		"data": map[string]any{
			"orderNumber": order.OrderNumber,
			"newStatus":   order.Status,
		},
	})
}

func parseOrderFilter(r *http.Request) (repository.OrderFilter, error) {
	q := r.URL.Query()
	filter := repository.OrderFilter{
		Page:  1,
		Limit: 20,
		Sort:  q.Get("sort"),
	}

	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	if v := q.Get("status"); v != "" {
		status, err := domain.ParseStatus(v)
		if err != nil {
			return filter, errors.New("無效的訂單狀態")
		}
		filter.Status = &status
	}

	if v := q.Get("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, errors.New("無效的開始日期")
		}
		filter.StartDate = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, errors.New("無效的結束日期")
		}
		filter.EndDate = &t
	}

	return filter, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
