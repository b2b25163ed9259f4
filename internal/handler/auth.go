package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/config"
    "github.com/iliyamo/airline-reservation/internal/middleware"
    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/repository"
    "github.com/iliyamo/airline-reservation/internal/service"
    "github.com/iliyamo/airline-reservation/internal/utils"
)

type CustomerStore interface {
    Create(ctx context.Context, c model.Customer) error
    GetByEmail(ctx context.Context, email string) (model.Customer, error)
}

type StaffStore interface {
    Create(ctx context.Context, s model.Staff) error
    GetByUsername(ctx context.Context, username string) (model.Staff, error)
}

type TokenStore interface {
    StoreRefresh(ctx context.Context, role, subject, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (role, subject string, err error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAll(ctx context.Context, role, subject string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg       config.Config
    Customers CustomerStore
    Staff     StaffStore
    Tokens    TokenStore
    now       func() time.Time
}

func NewAuthHandler(cfg config.Config, customers CustomerStore, staff StaffStore, tokens TokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Customers: customers, Staff: staff, Tokens: tokens, now: time.Now}
}

// ----- DTOs -----

type loginReq struct {
    Login    string `json:"login"` // customer email or staff username
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type authResp struct {
    User    middleware.Principal `json:"user"`
    Access  tokenPart            `json:"access"`
    Refresh tokenPart            `json:"refresh"`
}

// RegisterCustomer creates a customer account and signs it in.
func (h *AuthHandler) RegisterCustomer(c echo.Context) error {
    var req service.CustomerRegistration
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "body", "invalid body")
    }
    cust, err := service.ValidateCustomer(req, h.now())
    if err != nil {
        return fail(c, err)
    }
    if cust.PasswordHash, err = utils.HashPassword(req.Password, h.Cfg.BcryptCost); err != nil {
        return fail(c, err)
    }

    ctx, cancel := timeout(c)
    defer cancel()
    if err := h.Customers.Create(ctx, cust); err != nil {
        return fail(c, err)
    }
    return h.signIn(ctx, c, http.StatusCreated, middleware.Principal{Subject: cust.Email, Role: model.RoleCustomer})
}

// RegisterStaff creates a staff account, adding the airline if it is new.
func (h *AuthHandler) RegisterStaff(c echo.Context) error {
    var req service.StaffRegistration
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "body", "invalid body")
    }
    st, err := service.ValidateStaff(req, h.now())
    if err != nil {
        return fail(c, err)
    }
    if st.PasswordHash, err = utils.HashPassword(req.Password, h.Cfg.BcryptCost); err != nil {
        return fail(c, err)
    }

    ctx, cancel := timeout(c)
    defer cancel()
    if err := h.Staff.Create(ctx, st); err != nil {
        return fail(c, err)
    }
    return h.signIn(ctx, c, http.StatusCreated,
        middleware.Principal{Subject: st.Username, Role: model.RoleStaff, Airline: st.Airline})
}

// Login checks customers by email first, then staff by username.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "body", "invalid body")
    }
    login := strings.TrimSpace(req.Login)
    if login == "" || req.Password == "" {
        return badRequest(c, "login", "login/password required")
    }

    ctx, cancel := timeout(c)
    defer cancel()

    cust, err := h.Customers.GetByEmail(ctx, login)
    switch {
    case err == nil && utils.VerifyPassword(cust.PasswordHash, req.Password):
        return h.signIn(ctx, c, http.StatusOK, middleware.Principal{Subject: cust.Email, Role: model.RoleCustomer})
    case err != nil && !errors.Is(err, sql.ErrNoRows):
        return fail(c, err)
    }

    st, err := h.Staff.GetByUsername(ctx, login)
    switch {
    case err == nil && utils.VerifyPassword(st.PasswordHash, req.Password):
        return h.signIn(ctx, c, http.StatusOK,
            middleware.Principal{Subject: st.Username, Role: model.RoleStaff, Airline: st.Airline})
    case err != nil && !errors.Is(err, sql.ErrNoRows):
        return fail(c, err)
    }
    return unauthorized(c, "invalid credentials")
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    raw, ok := refreshToken(c)
    if !ok {
        return badRequest(c, "refresh_token", "refresh_token required")
    }
    hash := utils.HashRefreshRaw(raw)

    ctx, cancel := timeout(c)
    defer cancel()

    p, err := h.resolve(ctx, hash)
    if errors.Is(err, repository.ErrRefreshInvalid) {
        return unauthorized(c, "invalid refresh")
    }
    if err != nil {
        return fail(c, err)
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return fail(c, err)
    }
    return h.signIn(ctx, c, http.StatusOK, p)
}

// RefreshAccess returns a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
    raw, ok := refreshToken(c)
    if !ok {
        return badRequest(c, "refresh_token", "refresh_token required")
    }

    ctx, cancel := timeout(c)
    defer cancel()

    p, err := h.resolve(ctx, utils.HashRefreshRaw(raw))
    if errors.Is(err, repository.ErrRefreshInvalid) {
        return unauthorized(c, "invalid refresh")
    }
    if err != nil {
        return fail(c, err)
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p.Subject, p.Role, p.Airline, h.Cfg.AccessTTLMin)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access": tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Logout revokes the refresh_token from the body, or with only a bearer
// token every refresh token of the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
    var bearer *utils.Claims
    if raw, ok := middleware.BearerToken(c); ok {
        if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw); err == nil {
            bearer = claims
        }
    }
    refresh, hasRefresh := refreshToken(c)

    ctx, cancel := timeout(c)
    defer cancel()

    switch {
    case hasRefresh:
        hash := utils.HashRefreshRaw(refresh)
        if _, _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return unauthorized(c, "invalid refresh token")
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return fail(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    case bearer != nil:
        if err := h.Tokens.RevokeAll(ctx, bearer.Role, bearer.Subject); err != nil {
            return fail(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    }
    return badRequest(c, "refresh_token", "provide Authorization header or refresh_token")
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c echo.Context) error {
    return c.JSON(http.StatusOK, principal(c))
}

// signIn issues an access/refresh pair for p and writes it with status.
func (h *AuthHandler) signIn(ctx context.Context, c echo.Context, status int, p middleware.Principal) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p.Subject, p.Role, p.Airline, h.Cfg.AccessTTLMin)
    if err != nil {
        return fail(c, err)
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return fail(c, err)
    }
    if err := h.Tokens.StoreRefresh(ctx, p.Role, p.Subject, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return fail(c, err)
    }
    return c.JSON(status, authResp{
        User:    p,
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    })
}

// resolve maps an active refresh token to its principal.  A principal that
// no longer exists makes the token invalid.
func (h *AuthHandler) resolve(ctx context.Context, hash string) (middleware.Principal, error) {
    role, subject, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return middleware.Principal{}, err
    }
    switch role {
    case model.RoleCustomer:
        cust, err := h.Customers.GetByEmail(ctx, subject)
        if errors.Is(err, sql.ErrNoRows) {
            return middleware.Principal{}, repository.ErrRefreshInvalid
        }
        if err != nil {
            return middleware.Principal{}, err
        }
        return middleware.Principal{Subject: cust.Email, Role: role}, nil
    case model.RoleStaff:
        st, err := h.Staff.GetByUsername(ctx, subject)
        if errors.Is(err, sql.ErrNoRows) {
            return middleware.Principal{}, repository.ErrRefreshInvalid
        }
        if err != nil {
            return middleware.Principal{}, err
        }
        return middleware.Principal{Subject: st.Username, Role: role, Airline: st.Airline}, nil
    }
    return middleware.Principal{}, repository.ErrRefreshInvalid
}

func refreshToken(c echo.Context) (string, bool) {
    var req refreshReq
    _ = c.Bind(&req)
    raw := strings.TrimSpace(req.RefreshToken)
    return raw, raw != ""
}
