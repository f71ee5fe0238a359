package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/cafe-pos/internal/catalog"
	"github.com/MikeMC777/cafe-pos/internal/events"
	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/table"
)

// orderAPI is what the order routes need from order.Service.
type orderAPI interface {
	order.Backend
	Get(ctx context.Context, id string) (*order.Order, error)
	List(ctx context.Context, q order.Query) ([]order.Order, error)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, order.ErrNotFound), errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, table.ErrNotFound), errors.Is(err, order.ErrUnknownTable):
		status = http.StatusNotFound
	case errors.Is(err, order.ErrTerminal), errors.Is(err, order.ErrOpenExists),
		errors.Is(err, table.ErrNameTaken):
		status = http.StatusConflict
	case errors.Is(err, order.ErrInvalidLine), errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrTableRequired), errors.Is(err, order.ErrReasonRequired):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, catalog.HTTPError{Error: "internal error"})
		return
	}
	c.JSON(status, catalog.HTTPError{Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: msg})
}

// normalizePrice accepts "25000", "25000.5" or "25,000" and returns the
// canonical decimal text stored in NUMERIC columns.
func normalizePrice(v string) (string, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", ""))
	if err != nil || d.IsNegative() {
		return "", false
	}
	return d.StringFixed(2), true
}

// ---------- menu ----------

// listMenuHandler godoc
// @Summary  List menu items
// @Tags     menu
// @Produce  json
// @Param    all       query bool   false "include unavailable items"
// @Param    category  query string false "category filter"
// @Success  200 {array} catalog.Product
// @Router   /menu [get]
func listMenuHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := catalog.Query{
			All:      c.Query("all") == "true",
			Category: c.Query("category"),
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// createMenuItemHandler godoc
// @Summary  Create a menu item
// @Tags     menu
// @Accept   json
// @Produce  json
// @Param    body body catalog.CreateProductRequest true "menu item"
// @Success  201 {object} catalog.Product
// @Failure  400 {object} catalog.HTTPError
// @Router   /menu [post]
func createMenuItemHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.CreateProductRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid body")
			return
		}
		name := strings.TrimSpace(in.Name)
		price, ok := normalizePrice(in.Price)
		if name == "" || !ok {
			badRequest(c, "name and a non-negative price are required")
			return
		}
		p := &catalog.Product{
			ID:        uuid.NewString(),
			Name:      name,
			Price:     price,
			Category:  strings.TrimSpace(in.Category),
			Available: in.Available == nil || *in.Available,
			ImageURL:  strings.TrimSpace(in.ImageURL),
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updateMenuItemHandler godoc
// @Summary  Update a menu item (partial)
// @Tags     menu
// @Accept   json
// @Produce  json
// @Param    id   path string true "menu item id"
// @Param    body body catalog.UpdateProductRequest true "fields to change"
// @Success  200 {object} catalog.Product
// @Failure  400 {object} catalog.HTTPError
// @Failure  404 {object} catalog.HTTPError
// @Router   /menu/{id} [put]
func updateMenuItemHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var in catalog.UpdateProductRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid body")
			return
		}
		cur, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		p := &catalog.Product{
			ID:        id,
			Name:      strings.TrimSpace(in.Name),
			Category:  strings.TrimSpace(in.Category),
			Available: cur.Available,
			ImageURL:  strings.TrimSpace(in.ImageURL),
		}
		if strings.TrimSpace(in.Price) != "" {
			price, ok := normalizePrice(in.Price)
			if !ok {
				badRequest(c, "price must be a non-negative number")
				return
			}
			p.Price = price
		}
		if in.Available != nil {
			p.Available = *in.Available
		}
		if err := repo.Update(c.Request.Context(), p); err != nil {
			writeError(c, err)
			return
		}
		out, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// deleteMenuItemHandler godoc
// @Summary  Delete a menu item
// @Tags     menu
// @Param    id path string true "menu item id"
// @Success  204
// @Failure  404 {object} catalog.HTTPError
// @Router   /menu/{id} [delete]
func deleteMenuItemHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if !ok {
			writeError(c, catalog.ErrNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ---------- tables ----------

// listTablesHandler godoc
// @Summary  List tables
// @Tags     tables
// @Produce  json
// @Success  200 {array} table.Table
// @Router   /tables [get]
func listTablesHandler(repo table.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// createTableHandler godoc
// @Summary  Create a table
// @Tags     tables
// @Accept   json
// @Produce  json
// @Param    body body table.CreateTableRequest true "table"
// @Success  201 {object} table.Table
// @Failure  400 {object} catalog.HTTPError
// @Failure  409 {object} catalog.HTTPError
// @Router   /tables [post]
func createTableHandler(repo table.Repository, pub events.Publisher, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in table.CreateTableRequest
		if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
			badRequest(c, "name is required")
			return
		}
		t := &table.Table{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name), IsAvailable: true}
		if err := repo.Create(c.Request.Context(), t); err != nil {
			writeError(c, err)
			return
		}
		publishTable(c.Request.Context(), pub, log, *t)
		c.JSON(http.StatusCreated, t)
	}
}

// setTableAvailabilityHandler godoc
// @Summary  Set table availability
// @Tags     tables
// @Accept   json
// @Produce  json
// @Param    id   path string true "table id"
// @Param    body body table.AvailabilityRequest true "availability"
// @Success  200 {object} table.Table
// @Failure  400 {object} catalog.HTTPError
// @Failure  404 {object} catalog.HTTPError
// @Router   /tables/{id}/availability [patch]
func setTableAvailabilityHandler(repo table.Repository, pub events.Publisher, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in table.AvailabilityRequest
		if err := c.ShouldBindJSON(&in); err != nil || in.IsAvailable == nil {
			badRequest(c, "isAvailable is required")
			return
		}
		t, err := repo.SetAvailability(c.Request.Context(), c.Param("id"), *in.IsAvailable)
		if err != nil {
			writeError(c, err)
			return
		}
		publishTable(c.Request.Context(), pub, log, *t)
		c.JSON(http.StatusOK, t)
	}
}

func publishTable(ctx context.Context, pub events.Publisher, log *zap.Logger, t table.Table) {
	ch := events.TableChange{ID: t.ID, Name: t.Name, IsAvailable: t.IsAvailable}
	if err := pub.Publish(ctx, events.KeyTableUpdated, ch); err != nil {
		log.Warn("publish failed", zap.String("key", events.KeyTableUpdated), zap.Error(err))
	}
}

// ---------- orders ----------

// listOrdersHandler godoc
// @Summary  List orders
// @Tags     orders
// @Produce  json
// @Param    status  query string false "PENDING, PAID or CANCELLED"
// @Param    tableId query string false "table id"
// @Param    limit   query int    false "page size" default(50)
// @Param    offset  query int    false "offset"    default(0)
// @Success  200 {array} order.Order
// @Failure  400 {object} catalog.HTTPError
// @Router   /orders [get]
func listOrdersHandler(svc orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := order.Query{TableID: c.Query("tableId")}
		if v := c.Query("status"); v != "" {
			st, err := order.ParseStatus(v)
			if err != nil {
				writeError(c, err)
				return
			}
			q.Status = st
		}
		q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
		q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
		if q.Limit <= 0 || q.Limit > 200 {
			q.Limit = 50
		}
		if q.Offset < 0 {
			q.Offset = 0
		}
		list, err := svc.List(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// createOrderHandler godoc
// @Summary  Open an order for a table
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body body order.CreateOrderRequest true "order"
// @Success  201 {object} order.Order
// @Failure  400 {object} catalog.HTTPError
// @Failure  409 {object} catalog.HTTPError "table already has an open order"
// @Router   /orders [post]
func createOrderHandler(svc orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.CreateOrderRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid body")
			return
		}
		o, err := svc.CreateOrder(c.Request.Context(), in.TableID, order.ToLines(in.Items))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// getOrderHandler godoc
// @Summary  Get an order
// @Tags     orders
// @Produce  json
// @Param    id path string true "order id"
// @Success  200 {object} order.Order
// @Failure  404 {object} catalog.HTTPError
// @Router   /orders/{id} [get]
func getOrderHandler(svc orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateOrderHandler godoc
// @Summary  Replace the lines of an open order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id   path string true "order id"
// @Param    body body order.UpdateOrderRequest true "lines"
// @Success  200 {object} order.Order
// @Failure  400 {object} catalog.HTTPError
// @Failure  404 {object} catalog.HTTPError
// @Failure  409 {object} catalog.HTTPError "order is paid or cancelled"
// @Router   /orders/{id} [patch]
func updateOrderHandler(svc orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.UpdateOrderRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid body")
			return
		}
		o, err := svc.UpdateOrderLines(c.Request.Context(), c.Param("id"), order.ToLines(in.Items))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// activeOrderHandler godoc
// @Summary  Get the open order of a table
// @Tags     orders
// @Produce  json
// @Param    tableId path string true "table id"
// @Success  200 {object} order.Order
// @Failure  404 {object} catalog.HTTPError "no open order"
// @Router   /orders/table/{tableId}/active [get]
func activeOrderHandler(svc orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.GetOpenOrderForTable(c.Request.Context(), c.Param("tableId"))
		if err != nil {
			writeError(c, err)
			return
		}
		if o == nil {
			c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "no active order"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// payOrderHandler godoc
// @Summary  Mark an order paid
// @Tags     orders
// @Produce  json
// @Param    id path string true "order id"
// @Success  200 {object} order.Order
// @Failure  404 {object} catalog.HTTPError
// @Failure  409 {object} catalog.HTTPError
// @Router   /orders/{id}/pay [patch]
func payOrderHandler(svc orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.SetOrderStatus(c.Request.Context(), c.Param("id"), order.StatusPaid, "")
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// cancelOrderHandler godoc
// @Summary  Cancel an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id   path string true "order id"
// @Param    body body order.CancelOrderRequest true "reason"
// @Success  200 {object} order.Order
// @Failure  400 {object} catalog.HTTPError
// @Failure  404 {object} catalog.HTTPError
// @Failure  409 {object} catalog.HTTPError
// @Router   /orders/{id}/cancel [post]
func cancelOrderHandler(svc orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.CancelOrderRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid body")
			return
		}
		o, err := svc.SetOrderStatus(c.Request.Context(), c.Param("id"), order.StatusCancelled, in.Reason)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
