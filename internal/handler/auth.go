package handler

import (
    "database/sql"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/config"
    "github.com/iliyamo/fleet-booking/internal/repository"
    "github.com/iliyamo/fleet-booking/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.  Accounts
// are provisioned by administrators together with the employee profile,
// so there is no self-registration route; employees log in with their
// employee code.
type AuthHandler struct {
    Cfg       config.Config
    Users     *repository.UserRepo
    Tokens    *repository.TokenRepo
    Employees *repository.EmployeeRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, e *repository.EmployeeRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Employees: e}
}

// ----- DTOs -----

type loginReq struct {
    EmployeeCode string `json:"employee_code"`
    Password     string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID           uint64 `json:"id"`
    EmployeeCode string `json:"employee_code"`
    Role         string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// Login verifies the employee code and password and returns a fresh
// token pair.  Deactivated accounts are rejected the same way as bad
// credentials so the response does not leak account state.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.EmployeeCode = strings.TrimSpace(req.EmployeeCode)
    if req.EmployeeCode == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_code/password required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByUsername(ctx, req.EmployeeCode)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    return h.issuePair(c, http.StatusOK, u.ID, u.Username, u.Role)
}

// Refresh validates a refresh token by hash, revokes it and issues a
// new pair (rotation: each refresh token is single-use).
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := reqCtx(c)
    defer cancel()

    uid, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    u, err := h.Users.GetByID(ctx, uid)
    if err != nil || !u.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
    }

    return h.issuePair(c, http.StatusOK, u.ID, u.Username, u.Role)
}

// Logout revokes the presented refresh token.  The access token stays
// valid until its short expiry; clients discard it.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the caller's account and employee profile.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    p, err := h.Employees.GetByUserID(ctx, uid)
    if err != nil && err != sql.ErrNoRows {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    resp := echo.Map{"user": userPart{ID: u.ID, EmployeeCode: u.Username, Role: u.Role}}
    if p != nil {
        resp["profile"] = employeeResp(p)
    }
    return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) issuePair(c echo.Context, status int, uid uint64, code, role string) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }

    return c.JSON(status, authResp{
        User:    userPart{ID: uid, EmployeeCode: code, Role: role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw goes back to the client
    })
}
