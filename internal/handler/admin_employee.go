package handler

import (
    "database/sql"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/config"
    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/repository"
)

// AdminEmployeeHandler manages employee accounts and profiles.  A new
// employee gets a user row and a profile row in one transaction; the
// initial password equals the employee code and the account policy
// keeps them in sync when the code changes.
type AdminEmployeeHandler struct {
    Cfg       config.Config
    Users     *repository.UserRepo
    Employees *repository.EmployeeRepo
    Tokens    *repository.TokenRepo
}

func NewAdminEmployeeHandler(cfg config.Config, u *repository.UserRepo, e *repository.EmployeeRepo, t *repository.TokenRepo) *AdminEmployeeHandler {
    return &AdminEmployeeHandler{Cfg: cfg, Users: u, Employees: e, Tokens: t}
}

type employeeReq struct {
    EmployeeCode string `json:"employee_code"`
    FirstName    string `json:"first_name"`
    LastName     string `json:"last_name"`
    Division     string `json:"division"`
    Department   string `json:"department"`
    Position     string `json:"position"`
    Role         string `json:"role"`
}

type employeeRespBody struct {
    ID           uint64 `json:"id"`
    UserID       uint64 `json:"user_id"`
    EmployeeCode string `json:"employee_code"`
    FirstName    string `json:"first_name"`
    LastName     string `json:"last_name"`
    FullName     string `json:"full_name"`
    Division     string `json:"division"`
    Department   string `json:"department"`
    Position     string `json:"position"`
    Role         string `json:"role"`
    WorkStatus   string `json:"work_status"`
}

func employeeResp(p *model.EmployeeProfile) employeeRespBody {
    return employeeRespBody{
        ID:           p.ID,
        UserID:       p.UserID,
        EmployeeCode: p.EmployeeCode,
        FirstName:    p.FirstName,
        LastName:     p.LastName,
        FullName:     p.FullName(),
        Division:     p.Division,
        Department:   p.Department,
        Position:     p.Position,
        Role:         p.Role,
        WorkStatus:   p.WorkStatus,
    }
}

// normalizeEmployeeReq trims and defaults the request fields and
// returns a non-empty problem description when validation fails.
func normalizeEmployeeReq(req *employeeReq) string {
    req.EmployeeCode = strings.TrimSpace(req.EmployeeCode)
    if req.EmployeeCode == "" {
        return "employee_code required"
    }
    req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
    if req.Role == "" {
        req.Role = model.RoleEmployee
    }
    if req.Role != model.RoleEmployee && req.Role != model.RoleAdmin {
        return "role must be EMPLOYEE or ADMIN"
    }
    return ""
}

// Create handles POST /v1/admin/employees.  The login name and initial
// password are both the employee code.
func (h *AdminEmployeeHandler) Create(c echo.Context) error {
    var req employeeReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := normalizeEmployeeReq(&req); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    tx, err := h.Users.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    uid, err := h.Users.CreateTx(ctx, tx, req.EmployeeCode, req.EmployeeCode, req.Role, h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrUsernameExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "employee code already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    p := &model.EmployeeProfile{
        UserID:       uid,
        EmployeeCode: req.EmployeeCode,
        FirstName:    req.FirstName,
        LastName:     req.LastName,
        Division:     req.Division,
        Department:   req.Department,
        Position:     req.Position,
        Role:         req.Role,
        WorkStatus:   model.WorkActive,
    }
    if err := h.Employees.CreateTx(ctx, tx, p); err != nil {
        if err == repository.ErrUsernameExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "employee code already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.JSON(http.StatusCreated, employeeResp(p))
}

// List handles GET /v1/admin/employees: the full roster, active first.
func (h *AdminEmployeeHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    profiles, err := h.Employees.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]employeeRespBody, 0, len(profiles))
    for i := range profiles {
        out = append(out, employeeResp(&profiles[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"employees": out})
}

// Detail handles GET /v1/admin/employees/:id.
func (h *AdminEmployeeHandler) Detail(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    p, err := h.Employees.GetByID(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, employeeResp(p))
}

// Update handles PUT /v1/admin/employees/:id.  A changed employee code
// renames the login and resets the password to the new code; a changed
// role is mirrored into the user row so the next issued token carries
// it.
func (h *AdminEmployeeHandler) Update(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
    }
    var req employeeReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := normalizeEmployeeReq(&req); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    p, err := h.Employees.GetByID(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    codeChanged := p.EmployeeCode != req.EmployeeCode

    tx, err := h.Users.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    p.EmployeeCode = req.EmployeeCode
    p.FirstName = req.FirstName
    p.LastName = req.LastName
    p.Division = req.Division
    p.Department = req.Department
    p.Position = req.Position
    p.Role = req.Role
    if err := h.Employees.UpdateTx(ctx, tx, p); err != nil {
        if err == repository.ErrUsernameExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "employee code already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
    }

    password := ""
    if codeChanged {
        password = req.EmployeeCode
    }
    if err := h.Users.UpdateCredentialsTx(ctx, tx, p.UserID, req.EmployeeCode, password, h.Cfg.BcryptCost); err != nil {
        if err == repository.ErrUsernameExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "employee code already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
    }
    if err := h.Users.SetRoleTx(ctx, tx, p.UserID, req.Role); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    return c.JSON(http.StatusOK, employeeResp(p))
}

// Deactivate handles DELETE /v1/admin/employees/:id.  The profile goes
// INACTIVE, the account loses login and every refresh token is revoked;
// nothing is removed from the database.
func (h *AdminEmployeeHandler) Deactivate(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    p, err := h.Employees.GetByID(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    tx, err := h.Users.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := h.Employees.SetWorkStatusTx(ctx, tx, p.ID, model.WorkInactive); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
    }
    if err := h.Users.SetActiveTx(ctx, tx, p.UserID, false); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    if err := h.Tokens.RevokeAllForUser(ctx, p.UserID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke tokens failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "employee deactivated"})
}
