package presentation

import (
	"errors"
	"net/http"

	"github.com/JeterChan/miao-fruit-web/internal/application"
	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/JeterChan/miao-fruit-web/internal/logger"
	"github.com/JeterChan/miao-fruit-web/internal/presentation/helpers"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ProductsHandler struct {
	svc *application.CatalogService
}

func NewProductsHandler(svc *application.CatalogService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/{id}", h.GetProduct)
}

func (h *ProductsHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ListProducts(r.Context())
	if err != nil {
		logger.Warn("list products failed", "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "無法取得產品列表")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, view)
}

func (h *ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "無效的產品編號")
		return
	}

	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			helpers.HttpError(w, http.StatusNotFound, "找不到該產品")
			return
		}
		logger.Warn("get product failed", "id", id, "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "無法取得產品資訊")
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   product,
	})
}
