package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ovibet/cashier/internal/adapter/registry"
	"github.com/ovibet/cashier/internal/core/domain"
	"github.com/ovibet/cashier/internal/core/workflow"
)

// CashierHandler exposes one workflow session per open cashier modal. The
// web UI forwards user events here and renders the returned snapshot.
type CashierHandler struct {
	Sessions *workflow.Manager
	Registry registry.Registry
	Validate *validator.Validate
}

func NewCashierHandler(sessions *workflow.Manager, reg registry.Registry) *CashierHandler {
	return &CashierHandler{
		Sessions: sessions,
		Registry: reg,
		Validate: validator.New(),
	}
}

// OpenSession starts a new workflow in SelectingMethod.
func (h *CashierHandler) OpenSession(c *fiber.Ctx) error {
	var req OpenSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	balance := decimal.Zero
	if req.Balance != "" {
		parsed, err := decimal.NewFromString(req.Balance)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid balance"})
		}
		balance = parsed
	}

	session, err := h.Sessions.Open(c.Context(), userID(c), domain.TransactionKind(req.Kind), balance)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not open cashier session"})
	}
	return c.Status(fiber.StatusCreated).JSON(toSessionResponse(session.Snapshot()))
}

// ListMethods returns the active catalog, independent of any session.
func (h *CashierHandler) ListMethods(c *fiber.Ctx) error {
	methods, err := h.Registry.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch payment methods"})
	}
	items := make([]MethodItem, 0, len(methods))
	for _, m := range methods {
		items = append(items, toMethodItem(m))
	}
	return c.JSON(fiber.Map{"methods": items})
}

// GetMethod resolves a single method, inactive ones included, so the UI can
// render a disabled entry.
func (h *CashierHandler) GetMethod(c *fiber.Ctx) error {
	method, err := h.Registry.Get(c.Context(), c.Params("id"))
	if errors.Is(err, domain.ErrMethodNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown payment method"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch payment method"})
	}
	return c.JSON(toMethodItem(method))
}

func (h *CashierHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(toSessionResponse(session.Snapshot()))
}

func (h *CashierHandler) SelectMethod(c *fiber.Ctx) error {
	var req SelectMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	snap, err := session.SelectMethod(req.MethodID)
	if err != nil {
		return h.eventError(c, snap, err)
	}
	return c.JSON(toSessionResponse(snap))
}

// SubmitForm runs the validator over the latest amount/fields snapshot. An
// invalid verdict is a 200 with the verdict attached: the step does not
// change and the draft stays editable.
func (h *CashierHandler) SubmitForm(c *fiber.Ctx) error {
	var req SubmitFormRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	snap, err := session.SubmitForm(req.Amount, req.Fields)
	if err != nil {
		return h.eventError(c, snap, err)
	}
	return c.JSON(toSessionResponse(snap))
}

func (h *CashierHandler) Back(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	snap, err := session.Back()
	if err != nil {
		return h.eventError(c, snap, err)
	}
	return c.JSON(toSessionResponse(snap))
}

// Confirm triggers the one-shot submission. Safe to call twice: a duplicate
// confirm while the call is in flight is a no-op, and the idempotency
// middleware replays the first response for repeated request keys.
func (h *CashierHandler) Confirm(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	snap, err := session.Confirm(c.Context())
	if err != nil {
		return h.eventError(c, snap, err)
	}
	return c.JSON(toSessionResponse(snap))
}

func (h *CashierHandler) Retry(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	snap, err := session.Retry()
	if err != nil {
		return h.eventError(c, snap, err)
	}
	return c.JSON(toSessionResponse(snap))
}

// CloseSession discards the draft, or defers the close if a submission is
// in flight.
func (h *CashierHandler) CloseSession(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return h.sessionError(c, err)
	}
	outcome, err := h.Sessions.Close(session.ID)
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(fiber.Map{"status": string(outcome)})
}

func (h *CashierHandler) session(c *fiber.Ctx) (*workflow.Session, error) {
	session, err := h.Sessions.Get(c.Params("id"))
	if err != nil {
		return nil, err
	}
	// Sessions are private to the key that opened them.
	if owner := userID(c); owner != "" && session.UserID != owner {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (h *CashierHandler) sessionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrSessionNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func (h *CashierHandler) eventError(c *fiber.Ctx, snap workflow.Snapshot, err error) error {
	var transitionErr *domain.InvalidTransitionError
	switch {
	case errors.As(err, &transitionErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   transitionErr.Error(),
			"session": toSessionResponse(snap),
		})
	case errors.Is(err, domain.ErrMethodNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown payment method"})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
}

func userID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}
