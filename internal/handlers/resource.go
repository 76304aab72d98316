package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/yourorg/salesdash/internal/events"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/models"
	"github.com/yourorg/salesdash/internal/store"
	"github.com/yourorg/salesdash/internal/validation"
)

// Payload is a decoded create or update request.
type Payload interface {
	Fields() map[string]any
}

// Resource describes one CRUD collection.
type Resource[T any] struct {
	// Kind prefixes change events, e.g. "product" gives "product.created".
	Kind string
	// Label is used in messages such as "Product not found".
	Label     string
	Table     store.Table[T]
	ID        func(T) string
	NewCreate func() Payload
	NewUpdate func() Payload
}

// ResourceHandler serves list/get/create/update/delete for a Resource.
// Authentication is applied by the router.
type ResourceHandler[T any] struct {
	res      Resource[T]
	gw       *store.Gateway
	validate *validation.Validator
	notify   events.Notifier
	log      logging.Logger
	now      func() time.Time
}

func NewResourceHandler[T any](res Resource[T], gw *store.Gateway, v *validation.Validator, notify events.Notifier, log logging.Logger) *ResourceHandler[T] {
	if notify == nil {
		notify = events.Fanout{}
	}
	return &ResourceHandler[T]{
		res:      res,
		gw:       gw,
		validate: v,
		notify:   notify,
		log:      log,
		now:      time.Now,
	}
}

// List handles GET /api/<resource>?page=&limit=.
func (h *ResourceHandler[T]) List(c *fiber.Ctx) error {
	page := models.NewPageRequest(c.QueryInt("page", models.DefaultPage), c.QueryInt("limit", models.DefaultLimit))

	items, total, err := store.List(c.UserContext(), h.gw, h.res.Table, page.Limit, page.Offset())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(models.ListResponse[T]{
		Data:       items,
		Pagination: page.Paginate(total),
	})
}

// Get handles GET /api/<resource>/:id.
func (h *ResourceHandler[T]) Get(c *fiber.Ctx) error {
	id, ok := h.id(c)
	if !ok {
		return h.notFound(c)
	}

	rec, err := store.FindOne(c.UserContext(), h.gw, h.res.Table, "id", id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(models.ItemResponse[T]{Data: rec})
}

// Create handles POST /api/<resource>.
func (h *ResourceHandler[T]) Create(c *fiber.Ctx) error {
	req := h.res.NewCreate()
	if err := h.validate.Bind(c.Body(), req); err != nil {
		return writeError(c, h.log, err)
	}

	rec, err := store.Insert(c.UserContext(), h.gw, h.res.Table, req.Fields())
	if err != nil {
		return h.fail(c, err)
	}

	h.publish(c, events.ActionCreated, h.res.ID(rec))
	return c.Status(fiber.StatusCreated).JSON(models.ItemResponse[T]{Data: rec})
}

// Update handles PUT /api/<resource>/:id. Absent fields keep their value.
func (h *ResourceHandler[T]) Update(c *fiber.Ctx) error {
	id, ok := h.id(c)
	if !ok {
		return h.notFound(c)
	}

	req := h.res.NewUpdate()
	if err := h.validate.Bind(c.Body(), req); err != nil {
		return writeError(c, h.log, err)
	}

	fields := req.Fields()
	rec, err := store.Update(c.UserContext(), h.gw, h.res.Table, id, fields)
	if err != nil {
		return h.fail(c, err)
	}

	if len(fields) > 0 {
		h.publish(c, events.ActionUpdated, id)
	}
	return c.JSON(models.ItemResponse[T]{Data: rec})
}

// Delete handles DELETE /api/<resource>/:id.
func (h *ResourceHandler[T]) Delete(c *fiber.Ctx) error {
	id, ok := h.id(c)
	if !ok {
		return h.notFound(c)
	}

	if err := store.Delete(c.UserContext(), h.gw, h.res.Table, id); err != nil {
		return h.fail(c, err)
	}

	h.publish(c, events.ActionDeleted, id)
	return c.SendStatus(fiber.StatusNoContent)
}

// id returns the :id param; ids are UUIDs so anything else cannot exist.
func (h *ResourceHandler[T]) id(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if uuid.Validate(id) != nil {
		return "", false
	}
	return id, true
}

func (h *ResourceHandler[T]) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return h.notFound(c)
	}
	return writeError(c, h.log, err)
}

func (h *ResourceHandler[T]) notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: h.res.Label + " not found"})
}

func (h *ResourceHandler[T]) publish(c *fiber.Ctx, action, id string) {
	h.notify.Notify(c.UserContext(), events.NewEvent(h.res.Kind, action, id, h.now()))
}
