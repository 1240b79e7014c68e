// Item HTTP handlers.
//
//   - GET  /api/items       (list)
//   - GET  /api/items/{id}  (get)
//   - POST /api/items       (create, Idempotency-Key aware)
//
// The group runs under PolicyEnvelope.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crud-backend/internal/http/middleware"
	"github.com/tbourn/go-crud-backend/internal/services"
)

const msgItemCreated = "Item created successfully"

// CreateItemRequest documents the POST /items payload.
type CreateItemRequest struct {
	Name string `json:"name" example:"My Item"`
	// Data is any JSON value; omitted or null stores null.
	Data any `json:"data,omitempty" swaggertype:"object"`
}

// ListItems godoc
// @ID          listItems
// @Summary     List items
// @Description Returns all items, newest first.
// @Tags        Items
// @Produce     json
// @Success     200  {object}  handlers.SuccessResponse{data=[]domain.Item}
// @Failure     500  {object}  handlers.ErrorResponse  "Database operation failed"
// @Router      /api/items [get]
func (h *Handlers) ListItems(c *gin.Context) {
	items, err := h.items.List(c.Request.Context())
	if err != nil {
		Abort(c, err)
		return
	}
	okList(c, http.StatusOK, items)
}

// GetItem godoc
// @ID          getItem
// @Summary     Get an item
// @Tags        Items
// @Produce     json
//
// @Param       id  path  int  true  "Item id"  minimum(0)
//
// @Success     200  {object}  handlers.SuccessResponse{data=domain.Item}
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid item ID"
// @Failure     404  {object}  handlers.ErrorResponse  "Item not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Database operation failed"
// @Router      /api/items/{id} [get]
func (h *Handlers) GetItem(c *gin.Context) {
	id, err := services.ParseItemID(c.Param("id"))
	if err != nil {
		Abort(c, err)
		return
	}
	it, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		Abort(c, err)
		return
	}
	ok(c, http.StatusOK, it)
}

// CreateItem godoc
// @ID          createItem
// @Summary     Create an item
// @Description Creates an item. With Idempotency-Key, a retry within the TTL returns the original item and sets Idempotent-Replayed.
// @Tags        Items
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false  "Idempotency key"  example(6f1c2a8e-create-1)
// @Param       body             body    handlers.CreateItemRequest  true  "Item"
//
// @Success     201  {object}  handlers.SuccessResponse{data=domain.Item}
// @Header      201  {string}  Idempotent-Replayed  "true when served from a previous request"
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed body or invalid name"
// @Failure     429  {object}  handlers.ErrorResponse  "Too many requests"
// @Failure     500  {object}  handlers.ErrorResponse  "Database operation failed"
// @Router      /api/items [post]
func (h *Handlers) CreateItem(c *gin.Context) {
	in, err := services.ValidateItem(middleware.BodyFrom(c))
	if err != nil {
		Abort(c, err)
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)
	it, replayed, err := h.items.Create(c.Request.Context(), in, key)
	if err != nil {
		Abort(c, err)
		return
	}
	if replayed {
		c.Header(middleware.HeaderIdempotentReplayed, "true")
	}
	middleware.LoggerFrom(c).Info().Uint("item_id", it.ID).Bool("replayed", replayed).Msg("item created")
	created(c, http.StatusCreated, it, msgItemCreated)
}
