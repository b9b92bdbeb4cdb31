package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	ordersvc "storefront/internal/service/order"
)

type orderResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

type orderListResponse struct {
	Data []domain.Order `json:"data"`
}

func placeOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ordersvc.PlaceInput
		if !bindJSON(c, &req) {
			return
		}
		o, err := svc.Place(c.Request.Context(), currentUser(c).ID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, orderResponse{Message: "Order placed", Order: o})
	}
}

// listOrdersHandler wraps the list in {data}; the admin listing is a bare
// array. Clients accept both.
func listOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListForUser(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, orderListResponse{Data: nonNil(orders)})
	}
}

func adminListOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListAll(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(orders))
	}
}

func confirmOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		o, err := svc.Confirm(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, orderResponse{Message: "Payment confirmed", Order: o})
	}
}

func nonNil(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}
