package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/repository"
    "github.com/iliyamo/airline-reservation/internal/service"
)

type Purchaser interface {
    Purchase(ctx context.Context, req service.PurchaseRequest) (service.Receipt, error)
}

type CustomerTickets interface {
    ListByCustomer(ctx context.Context, q repository.CustomerTicketQuery) ([]repository.CustomerTicketRow, error)
    GetForCustomer(ctx context.Context, id, email string) (repository.CustomerTicketRow, error)
}

// TicketHandler serves the customer ticket endpoints.
type TicketHandler struct {
    Purchases Purchaser
    Tickets   CustomerTickets
}

func NewTicketHandler(p Purchaser, t CustomerTickets) *TicketHandler {
    return &TicketHandler{Purchases: p, Tickets: t}
}

// ticketResp is the receipt returned by a purchase.
type ticketResp struct {
    TicketID      string          `json:"ticket_id"`
    Flight        model.FlightKey `json:"flight"`
    CustomerEmail string          `json:"customer_email"`
    PurchasedAt   time.Time       `json:"purchased_at"`
    CardType      string          `json:"card_type"`
    CardNumber    string          `json:"card_number"`
}

// Purchase handles POST /v1/flights/:airline/:number/:departure/tickets.
// A replay of an Idempotency-Key answers 200 with the original ticket.
func (h *TicketHandler) Purchase(c echo.Context) error {
    key, err := flightKeyParam(c)
    if err != nil {
        return fail(c, err)
    }
    var pay service.PaymentInput
    if err := c.Bind(&pay); err != nil {
        return badRequest(c, "body", "invalid body")
    }

    ctx, cancel := timeout(c)
    defer cancel()
    r, err := h.Purchases.Purchase(ctx, service.PurchaseRequest{
        Customer:       principal(c).Subject,
        Flight:         key,
        Payment:        pay,
        IdempotencyKey: strings.TrimSpace(c.Request().Header.Get("Idempotency-Key")),
    })
    if err != nil {
        return fail(c, err)
    }

    status := http.StatusCreated
    if r.Replayed {
        status = http.StatusOK
    }
    return c.JSON(status, ticketResp{
        TicketID:      r.Ticket.ID,
        Flight:        r.Ticket.Flight,
        CustomerEmail: r.Ticket.CustomerEmail,
        PurchasedAt:   r.Ticket.PurchasedAt,
        CardType:      r.Ticket.CardType,
        CardNumber:    r.Ticket.CardNumber,
    })
}

// MyTickets handles GET /v1/my/tickets?from&to, bounds on departure date.
func (h *TicketHandler) MyTickets(c echo.Context) error {
    from, _, err := dateParam(c, "from")
    if err != nil {
        return fail(c, err)
    }
    to, hasTo, err := dateParam(c, "to")
    if err != nil {
        return fail(c, err)
    }
    if hasTo {
        // inclusive of the whole day
        to = to.Add(24*time.Hour - time.Second)
    }
    if !from.IsZero() && hasTo && to.Before(from) {
        return badRequest(c, "to", "must not be before from")
    }

    ctx, cancel := timeout(c)
    defer cancel()
    rows, err := h.Tickets.ListByCustomer(ctx, repository.CustomerTicketQuery{
        Email: principal(c).Subject, From: from, To: to,
    })
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// MyTicket handles GET /v1/my/tickets/:id.  Tickets of other customers
// are reported as not found.
func (h *TicketHandler) MyTicket(c echo.Context) error {
    id := strings.TrimSpace(c.Param("id"))
    if id == "" {
        return badRequest(c, "id", "ticket id required")
    }
    ctx, cancel := timeout(c)
    defer cancel()
    row, err := h.Tickets.GetForCustomer(ctx, id, principal(c).Subject)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, row)
}
