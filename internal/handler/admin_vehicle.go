package handler

import (
    "database/sql"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/repository"
)

// AdminVehicleHandler manages the fleet roster.  Vehicles are retired,
// never deleted, because bookings and refills keep foreign keys to them.
type AdminVehicleHandler struct {
    Vehicles *repository.VehicleRepo
}

func NewAdminVehicleHandler(v *repository.VehicleRepo) *AdminVehicleHandler {
    return &AdminVehicleHandler{Vehicles: v}
}

type vehicleReq struct {
    PlatePrefix     string `json:"plate_prefix"`
    PlateNumber     string `json:"plate_number"`
    Province        string `json:"province"`
    BrandName       string `json:"brand_name"`
    ModelName       string `json:"model_name"`
    ColorCode       string `json:"color_code"`
    SeatCount       uint32 `json:"seat_count"`
    GearType        string `json:"gear_type"`
    UsageType       string `json:"usage_type"`
    Status          string `json:"status"`
    CurrentOdometer int64  `json:"current_odometer"`
}

var vehicleStatuses = map[string]bool{
    model.VehicleReady:        true,
    model.VehicleMaintenance:  true,
    model.VehicleOutOfService: true,
    model.VehicleRetired:      true,
}

// validateVehicleReq trims and defaults the request fields and returns
// a non-empty problem description when validation fails.
func validateVehicleReq(req *vehicleReq) string {
    req.PlatePrefix = strings.TrimSpace(req.PlatePrefix)
    req.PlateNumber = strings.TrimSpace(req.PlateNumber)
    if req.PlatePrefix == "" || req.PlateNumber == "" {
        return "plate_prefix and plate_number required"
    }
    req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
    if req.Status == "" {
        req.Status = model.VehicleReady
    }
    if !vehicleStatuses[req.Status] {
        return "unknown vehicle status"
    }
    if req.CurrentOdometer < 0 {
        return "current_odometer must not be negative"
    }
    return ""
}

// Create handles POST /v1/admin/vehicles.
func (h *AdminVehicleHandler) Create(c echo.Context) error {
    var req vehicleReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := validateVehicleReq(&req); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    v := &model.Vehicle{
        PlatePrefix:     req.PlatePrefix,
        PlateNumber:     req.PlateNumber,
        Province:        req.Province,
        BrandName:       req.BrandName,
        ModelName:       req.ModelName,
        ColorCode:       req.ColorCode,
        SeatCount:       req.SeatCount,
        GearType:        req.GearType,
        UsageType:       req.UsageType,
        Status:          req.Status,
        CurrentOdometer: req.CurrentOdometer,
    }
    if err := h.Vehicles.Create(ctx, v); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create vehicle failed"})
    }
    return c.JSON(http.StatusCreated, toVehicleResp(*v))
}

// List handles GET /v1/admin/vehicles: the whole fleet, retired last.
func (h *AdminVehicleHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    vehicles, err := h.Vehicles.List(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]vehicleResp, 0, len(vehicles))
    for _, v := range vehicles {
        out = append(out, toVehicleResp(v))
    }
    return c.JSON(http.StatusOK, echo.Map{"vehicles": out})
}

// Detail handles GET /v1/admin/vehicles/:id.
func (h *AdminVehicleHandler) Detail(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    v, err := h.Vehicles.GetByID(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, toVehicleResp(*v))
}

// Update handles PUT /v1/admin/vehicles/:id.  The resting odometer is
// deliberately left alone: it only advances through confirmed returns.
func (h *AdminVehicleHandler) Update(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
    }
    var req vehicleReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := validateVehicleReq(&req); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    v, err := h.Vehicles.GetByID(ctx, id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    v.PlatePrefix = req.PlatePrefix
    v.PlateNumber = req.PlateNumber
    v.Province = req.Province
    v.BrandName = req.BrandName
    v.ModelName = req.ModelName
    v.ColorCode = req.ColorCode
    v.SeatCount = req.SeatCount
    v.GearType = req.GearType
    v.UsageType = req.UsageType
    v.Status = req.Status
    if err := h.Vehicles.Update(ctx, v); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update vehicle failed"})
    }
    return c.JSON(http.StatusOK, toVehicleResp(*v))
}

// Retire handles DELETE /v1/admin/vehicles/:id by moving the vehicle to
// RETIRED.
func (h *AdminVehicleHandler) Retire(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if _, err := h.Vehicles.GetByID(ctx, id); err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if err := h.Vehicles.Retire(ctx, id); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "retire vehicle failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "vehicle retired"})
}
