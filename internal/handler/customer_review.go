package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/repository"
    "github.com/iliyamo/airline-reservation/internal/service"
)

type ReviewSubmitter interface {
    Submit(ctx context.Context, customer string, key model.FlightKey, in service.ReviewInput) (model.Review, error)
}

type ReviewLister interface {
    ListByCustomer(ctx context.Context, email string) ([]repository.ReviewRow, error)
}

type ReviewHandler struct {
    Reviews ReviewSubmitter
    List    ReviewLister
}

func NewReviewHandler(s ReviewSubmitter, l ReviewLister) *ReviewHandler {
    return &ReviewHandler{Reviews: s, List: l}
}

// Create handles POST /v1/flights/:airline/:number/:departure/reviews.
func (h *ReviewHandler) Create(c echo.Context) error {
    key, err := flightKeyParam(c)
    if err != nil {
        return fail(c, err)
    }
    var in service.ReviewInput
    if err := c.Bind(&in); err != nil {
        return badRequest(c, "body", "invalid body")
    }
    ctx, cancel := timeout(c)
    defer cancel()
    rv, err := h.Reviews.Submit(ctx, principal(c).Subject, key, in)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":         rv.ID,
        "flight":     rv.Flight,
        "rating":     rv.Rating,
        "comment":    rv.Comment,
        "created_at": rv.CreatedAt,
    })
}

// Mine handles GET /v1/my/reviews.
func (h *ReviewHandler) Mine(c echo.Context) error {
    ctx, cancel := timeout(c)
    defer cancel()
    rows, err := h.List.ListByCustomer(ctx, principal(c).Subject)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows})
}
